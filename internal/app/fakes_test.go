package app

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/YukiSuter/NovaKelvin/internal/domain"
	"github.com/YukiSuter/NovaKelvin/internal/inventory"
	"github.com/YukiSuter/NovaKelvin/internal/payment"
)

// fakeStore backs every repository interface with in-memory state so the
// ledger, ticket, checkout and reconciler services can be exercised
// together the way they run in production: a ticket issuance flows through
// the ledger and lands in the same store the checkout validated against.
type fakeStore struct {
	types    map[string]*domain.TicketType
	edges    []inventory.Edge
	tickets  map[string]*domain.Ticket
	orders   map[string]*domain.Order // keyed by session ref
	concerts map[string]*domain.Concert

	propagateCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		types:    make(map[string]*domain.TicketType),
		tickets:  make(map[string]*domain.Ticket),
		orders:   make(map[string]*domain.Order),
		concerts: make(map[string]*domain.Concert),
	}
}

func (f *fakeStore) addType(tt domain.TicketType) {
	cp := tt
	f.types[tt.ID] = &cp
}

func (f *fakeStore) addTicket(t domain.Ticket) {
	cp := t
	f.tickets[t.ID] = &cp
}

func (f *fakeStore) addOrder(o domain.Order) {
	cp := o
	f.orders[o.SessionRef] = &cp
}

func (f *fakeStore) validTicketCount(typeID string) int {
	count := 0
	for _, t := range f.tickets {
		if t.Valid && t.TicketTypeID == typeID {
			count++
		}
	}
	return count
}

func (f *fakeStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeStore) ListLinks(_ context.Context) ([]inventory.Edge, error) {
	return append([]inventory.Edge{}, f.edges...), nil
}

func (f *fakeStore) LockCluster(_ context.Context, ids []string) ([]domain.TicketType, error) {
	sorted := append([]string{}, ids...)
	sort.Strings(sorted)

	var members []domain.TicketType
	for _, id := range sorted {
		if tt, ok := f.types[id]; ok {
			members = append(members, *tt)
		}
	}
	return members, nil
}

func (f *fakeStore) CountValidTickets(_ context.Context, ticketTypeIDs []string) (int, error) {
	inCluster := make(map[string]bool, len(ticketTypeIDs))
	for _, id := range ticketTypeIDs {
		inCluster[id] = true
	}
	count := 0
	for _, t := range f.tickets {
		if t.Valid && inCluster[t.TicketTypeID] {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) UpdateClusterCounts(_ context.Context, ids []string, sold int) error {
	for _, id := range ids {
		tt, ok := f.types[id]
		if !ok {
			continue
		}
		tt.QtySold = sold
		tt.QtyAvailable = tt.QtyTotal - sold
		if tt.QtyAvailable < 0 {
			tt.QtyAvailable = 0
		}
	}
	return nil
}

func (f *fakeStore) PropagateTotal(_ context.Context, ids []string, total int) error {
	f.propagateCalls++
	for _, id := range ids {
		if tt, ok := f.types[id]; ok {
			tt.QtyTotal = total
		}
	}
	return nil
}

func (f *fakeStore) CreateTicketType(_ context.Context, tt domain.TicketType) error {
	cp := tt
	f.types[tt.ID] = &cp
	return nil
}

func (f *fakeStore) CreateLink(_ context.Context, a, b string) error {
	if _, ok := f.types[a]; !ok {
		return domain.ErrTicketTypeNotFound
	}
	if _, ok := f.types[b]; !ok {
		return domain.ErrTicketTypeNotFound
	}
	f.edges = append(f.edges, inventory.Edge{A: a, B: b})
	return nil
}

func (f *fakeStore) GetTicketTypeForUpdate(_ context.Context, id string) (domain.TicketType, error) {
	tt, ok := f.types[id]
	if !ok {
		return domain.TicketType{}, domain.ErrTicketTypeNotFound
	}
	return *tt, nil
}

func (f *fakeStore) GetTicketTypeByPriceRef(_ context.Context, priceRef string) (domain.TicketType, error) {
	for _, tt := range f.types {
		if tt.PriceRef != "" && tt.PriceRef == priceRef {
			return *tt, nil
		}
	}
	return domain.TicketType{}, domain.ErrTicketTypeNotFound
}

func (f *fakeStore) CreateTicket(_ context.Context, t domain.Ticket) error {
	cp := t
	f.tickets[t.ID] = &cp
	return nil
}

func (f *fakeStore) GetTicket(_ context.Context, id string) (domain.Ticket, error) {
	t, ok := f.tickets[id]
	if !ok {
		return domain.Ticket{}, domain.ErrTicketNotFound
	}
	return *t, nil
}

func (f *fakeStore) SetTicketValidity(_ context.Context, id string, valid bool, auditLine string) error {
	t, ok := f.tickets[id]
	if !ok {
		return domain.ErrTicketNotFound
	}
	t.Valid = valid
	t.AuditLog += auditLine
	return nil
}

func (f *fakeStore) DeleteTicket(_ context.Context, id string) error {
	if _, ok := f.tickets[id]; !ok {
		return domain.ErrTicketNotFound
	}
	delete(f.tickets, id)
	return nil
}

func (f *fakeStore) CreateOrder(_ context.Context, order domain.Order) error {
	if _, exists := f.orders[order.SessionRef]; exists {
		return errors.New("duplicate session ref")
	}
	cp := order
	f.orders[order.SessionRef] = &cp
	return nil
}

func (f *fakeStore) GetOrderBySessionRef(_ context.Context, sessionRef string) (*domain.Order, error) {
	o, ok := f.orders[sessionRef]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (f *fakeStore) GetOrderBySessionRefForUpdate(_ context.Context, sessionRef string) (domain.Order, error) {
	o, ok := f.orders[sessionRef]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return *o, nil
}

func (f *fakeStore) MarkOrderConfirmed(_ context.Context, id, customerName, customerEmail string, at time.Time) error {
	for _, o := range f.orders {
		if o.ID == id {
			o.Status = domain.OrderStatusConfirmed
			o.CustomerName = customerName
			o.CustomerEmail = customerEmail
			o.UpdatedAt = at
			confirmedAt := at
			o.ConfirmedAt = &confirmedAt
			return nil
		}
	}
	return domain.ErrOrderNotFound
}

func (f *fakeStore) MarkOrderFailed(_ context.Context, id string, at time.Time) error {
	for _, o := range f.orders {
		if o.ID == id {
			o.Status = domain.OrderStatusFailed
			o.UpdatedAt = at
			return nil
		}
	}
	return domain.ErrOrderNotFound
}

func (f *fakeStore) CreateConcert(_ context.Context, c domain.Concert) error {
	cp := c
	f.concerts[c.ID] = &cp
	return nil
}

func (f *fakeStore) ListConcerts(_ context.Context) ([]domain.Concert, error) {
	var out []domain.Concert
	for _, c := range f.concerts {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (f *fakeStore) GetConcert(_ context.Context, id string) (domain.Concert, error) {
	c, ok := f.concerts[id]
	if !ok {
		return domain.Concert{}, domain.ErrConcertNotFound
	}
	return *c, nil
}

func (f *fakeStore) ListTicketTypesByConcert(_ context.Context, concertID string) ([]domain.TicketType, error) {
	var out []domain.TicketType
	for _, tt := range f.types {
		if tt.ConcertID == concertID {
			out = append(out, *tt)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// fakeProvider scripts payment provider responses and records calls.
type fakeProvider struct {
	session   payment.Session
	createErr error
	items     []payment.LineItem
	listErr   error

	createCalls [][]payment.LineItem
	listCalls   int
}

func (f *fakeProvider) CreateSession(_ context.Context, items []payment.LineItem) (payment.Session, error) {
	f.createCalls = append(f.createCalls, append([]payment.LineItem{}, items...))
	if f.createErr != nil {
		return payment.Session{}, f.createErr
	}
	return f.session, nil
}

func (f *fakeProvider) ListLineItems(_ context.Context, _ string) ([]payment.LineItem, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]payment.LineItem{}, f.items...), nil
}
