package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/YukiSuter/NovaKelvin/internal/domain"
	"github.com/YukiSuter/NovaKelvin/internal/inventory"
)

const ticketTypeColumns = `id, concert_id, position, label, description, price, price_ref, qty_total, qty_sold, qty_available, display`

type InventoryRepository struct {
	pool *pgxpool.Pool
}

func NewInventoryRepository(pool *pgxpool.Pool) *InventoryRepository {
	return &InventoryRepository{pool: pool}
}

func (r *InventoryRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *InventoryRepository) GetTicketTypeForUpdate(ctx context.Context, id string) (domain.TicketType, error) {
	query := `SELECT ` + ticketTypeColumns + ` FROM ticket_types WHERE id = $1 FOR UPDATE`

	tt, err := scanTicketType(r.queryRow(ctx, query, id))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.TicketType{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.TicketType{}, domain.ErrTicketTypeNotFound
		}
		return domain.TicketType{}, fmt.Errorf("get ticket type: %w", err)
	}
	return tt, nil
}

func (r *InventoryRepository) GetTicketTypeByPriceRef(ctx context.Context, priceRef string) (domain.TicketType, error) {
	query := `SELECT ` + ticketTypeColumns + ` FROM ticket_types WHERE price_ref = $1 AND price_ref <> ''`

	tt, err := scanTicketType(r.queryRow(ctx, query, priceRef))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.TicketType{}, domain.ErrTicketTypeNotFound
		}
		return domain.TicketType{}, fmt.Errorf("get ticket type by price ref: %w", err)
	}
	return tt, nil
}

// ListLinks returns every stored link edge. Each edge is stored once with
// normalized endpoint order and read back as bidirectional.
func (r *InventoryRepository) ListLinks(ctx context.Context) ([]inventory.Edge, error) {
	const query = `SELECT a, b FROM ticket_type_links`

	rows, err := r.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	defer rows.Close()

	var edges []inventory.Edge
	for rows.Next() {
		var e inventory.Edge
		if err := rows.Scan(&e.A, &e.B); err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	return edges, nil
}

// LockCluster locks the given ticket type rows in id order and returns them.
// Ordered locking keeps two transactions touching the same pool from
// deadlocking against each other.
func (r *InventoryRepository) LockCluster(ctx context.Context, ids []string) ([]domain.TicketType, error) {
	query := `SELECT ` + ticketTypeColumns + ` FROM ticket_types WHERE id = ANY($1) ORDER BY id FOR UPDATE`

	rows, err := r.query(ctx, query, ids)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("lock cluster: %w", err)
	}
	defer rows.Close()

	var members []domain.TicketType
	for rows.Next() {
		tt, err := scanTicketType(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ticket type: %w", err)
		}
		members = append(members, tt)
	}
	if err := rows.Err(); err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("lock cluster: %w", err)
	}
	return members, nil
}

func (r *InventoryRepository) CountValidTickets(ctx context.Context, ticketTypeIDs []string) (int, error) {
	const query = `SELECT COUNT(*) FROM tickets WHERE ticket_type_id = ANY($1) AND valid`

	var count int
	if err := r.queryRow(ctx, query, ticketTypeIDs).Scan(&count); err != nil {
		return 0, fmt.Errorf("count valid tickets: %w", err)
	}
	return count, nil
}

// UpdateClusterCounts writes the recomputed sold count to every member and
// derives availability from each row's own total, floored at zero.
func (r *InventoryRepository) UpdateClusterCounts(ctx context.Context, ids []string, sold int) error {
	const stmt = `
UPDATE ticket_types
SET qty_sold = $2, qty_available = GREATEST(qty_total - $2, 0)
WHERE id = ANY($1)`

	if _, err := r.exec(ctx, stmt, ids, sold); err != nil {
		return fmt.Errorf("update cluster counts: %w", err)
	}
	return nil
}

func (r *InventoryRepository) PropagateTotal(ctx context.Context, ids []string, total int) error {
	const stmt = `UPDATE ticket_types SET qty_total = $2 WHERE id = ANY($1)`

	if _, err := r.exec(ctx, stmt, ids, total); err != nil {
		return fmt.Errorf("propagate total: %w", err)
	}
	return nil
}

func (r *InventoryRepository) CreateTicketType(ctx context.Context, tt domain.TicketType) error {
	const stmt = `
INSERT INTO ticket_types (id, concert_id, position, label, description, price, price_ref, qty_total, qty_sold, qty_available, display)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.exec(ctx, stmt,
		tt.ID,
		tt.ConcertID,
		tt.Position,
		tt.Label,
		tt.Description,
		tt.Price,
		tt.PriceRef,
		tt.QtyTotal,
		tt.QtySold,
		tt.QtyAvailable,
		tt.Display,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrConcertNotFound
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create ticket type: %w", err)
	}
	return nil
}

// CreateLink stores one edge with normalized endpoint order. Re-linking an
// already linked pair is a no-op.
func (r *InventoryRepository) CreateLink(ctx context.Context, a, b string) error {
	const stmt = `
INSERT INTO ticket_type_links (a, b)
VALUES (LEAST($1::uuid, $2::uuid), GREATEST($1::uuid, $2::uuid))
ON CONFLICT DO NOTHING`

	if _, err := r.exec(ctx, stmt, a, b); err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrTicketTypeNotFound
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create link: %w", err)
	}
	return nil
}

func scanTicketType(row pgx.Row) (domain.TicketType, error) {
	var tt domain.TicketType
	err := row.Scan(
		&tt.ID,
		&tt.ConcertID,
		&tt.Position,
		&tt.Label,
		&tt.Description,
		&tt.Price,
		&tt.PriceRef,
		&tt.QtyTotal,
		&tt.QtySold,
		&tt.QtyAvailable,
		&tt.Display,
	)
	return tt, err
}

func (r *InventoryRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *InventoryRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *InventoryRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
