// Package inventory models the symmetric link relation between ticket types
// as an explicit undirected graph and computes the connected pools that share
// inventory.
package inventory

// Edge links two ticket types into the same pool. Edges are stored once and
// treated as bidirectional; A-B and B-A are the same edge.
type Edge struct {
	A string
	B string
}

// Graph is an adjacency view over a set of edges. The graph owns the edges;
// nodes carry no references of their own.
type Graph struct {
	adjacent map[string][]string
}

// NewGraph builds the adjacency structure from stored edges. Self-loops and
// empty endpoints are ignored.
func NewGraph(edges []Edge) *Graph {
	g := &Graph{adjacent: make(map[string][]string, len(edges)*2)}
	for _, e := range edges {
		if e.A == "" || e.B == "" || e.A == e.B {
			continue
		}
		g.adjacent[e.A] = append(g.adjacent[e.A], e.B)
		g.adjacent[e.B] = append(g.adjacent[e.B], e.A)
	}
	return g
}

// Cluster returns every ticket type reachable from start by following links,
// including start itself. Membership is deterministic for a given edge set;
// order is not. A node with no links forms a singleton cluster.
func (g *Graph) Cluster(start string) []string {
	visited := map[string]bool{start: true}
	queue := []string{start}
	members := make([]string, 0, 1)

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		members = append(members, current)

		for _, neighbor := range g.adjacent[current] {
			if visited[neighbor] {
				continue
			}
			visited[neighbor] = true
			queue = append(queue, neighbor)
		}
	}
	return members
}
