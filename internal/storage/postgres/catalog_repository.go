package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/YukiSuter/NovaKelvin/internal/domain"
)

// CatalogRepository serves the concert catalog: concert records, ticket type
// availability listings and order status lookups.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

func (r *CatalogRepository) CreateConcert(ctx context.Context, c domain.Concert) error {
	const stmt = `
INSERT INTO concerts (id, name, date, location, description, conductor)
VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.exec(ctx, stmt, c.ID, c.Name, c.Date, c.Location, c.Description, c.Conductor)
	if err != nil {
		return fmt.Errorf("create concert: %w", err)
	}
	return nil
}

func (r *CatalogRepository) ListConcerts(ctx context.Context) ([]domain.Concert, error) {
	const query = `
SELECT id, name, date, location, description, conductor
FROM concerts
ORDER BY date`

	rows, err := r.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list concerts: %w", err)
	}
	defer rows.Close()

	var concerts []domain.Concert
	for rows.Next() {
		var c domain.Concert
		if err := rows.Scan(&c.ID, &c.Name, &c.Date, &c.Location, &c.Description, &c.Conductor); err != nil {
			return nil, fmt.Errorf("scan concert: %w", err)
		}
		concerts = append(concerts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list concerts: %w", err)
	}
	return concerts, nil
}

func (r *CatalogRepository) GetConcert(ctx context.Context, id string) (domain.Concert, error) {
	const query = `SELECT id, name, date, location, description, conductor FROM concerts WHERE id = $1`

	var c domain.Concert
	err := r.queryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.Date, &c.Location, &c.Description, &c.Conductor)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Concert{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Concert{}, domain.ErrConcertNotFound
		}
		return domain.Concert{}, fmt.Errorf("get concert: %w", err)
	}
	return c, nil
}

// ListTicketTypesByConcert returns the concert's ticket types in display
// order.
func (r *CatalogRepository) ListTicketTypesByConcert(ctx context.Context, concertID string) ([]domain.TicketType, error) {
	query := `SELECT ` + ticketTypeColumns + ` FROM ticket_types WHERE concert_id = $1 ORDER BY position, id`

	rows, err := r.query(ctx, query, concertID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list ticket types: %w", err)
	}
	defer rows.Close()

	var types []domain.TicketType
	for rows.Next() {
		tt, err := scanTicketType(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ticket type: %w", err)
		}
		types = append(types, tt)
	}
	if err := rows.Err(); err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list ticket types: %w", err)
	}
	return types, nil
}

func (r *CatalogRepository) GetOrderBySessionRef(ctx context.Context, sessionRef string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE session_ref = $1`

	order, err := scanOrder(r.queryRow(ctx, query, sessionRef))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get order by session ref: %w", err)
	}
	return &order, nil
}

func (r *CatalogRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *CatalogRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}

func (r *CatalogRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
