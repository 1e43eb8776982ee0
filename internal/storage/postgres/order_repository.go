package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/YukiSuter/NovaKelvin/internal/domain"
)

const orderColumns = `id, session_ref, status, customer_name, customer_email, total_amount, currency, created_at, updated_at, confirmed_at`

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *OrderRepository) CreateOrder(ctx context.Context, order domain.Order) error {
	const stmt = `
INSERT INTO orders (id, session_ref, status, customer_name, customer_email, total_amount, currency, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.exec(ctx, stmt,
		order.ID,
		order.SessionRef,
		order.Status,
		order.CustomerName,
		order.CustomerEmail,
		order.TotalAmount,
		order.Currency,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create order: duplicate session ref %s: %w", order.SessionRef, err)
		}
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

// GetOrderBySessionRef returns nil when no order exists for the session.
func (r *OrderRepository) GetOrderBySessionRef(ctx context.Context, sessionRef string) (*domain.Order, error) {
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

// GetOrderBySessionRefForUpdate locks the order row so concurrent webhook
// deliveries for the same session serialize on the status check.
func (r *OrderRepository) GetOrderBySessionRefForUpdate(ctx context.Context, sessionRef string) (domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE session_ref = $1 FOR UPDATE`

	order, err := scanOrder(r.queryRow(ctx, query, sessionRef))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("get order for update: %w", err)
	}
	return order, nil
}

func (r *OrderRepository) MarkOrderConfirmed(ctx context.Context, id, customerName, customerEmail string, at time.Time) error {
	const stmt = `
UPDATE orders
SET status = $2, customer_name = $3, customer_email = $4, updated_at = $5, confirmed_at = $5
WHERE id = $1`

	tag, err := r.exec(ctx, stmt, id, domain.OrderStatusConfirmed, customerName, customerEmail, at)
	if err != nil {
		return fmt.Errorf("mark order confirmed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *OrderRepository) MarkOrderFailed(ctx context.Context, id string, at time.Time) error {
	const stmt = `UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, id, domain.OrderStatusFailed, at)
	if err != nil {
		return fmt.Errorf("mark order failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// GetTicketTypeForUpdate locks the ticket type row for the duration of the
// surrounding transaction.
func (r *OrderRepository) GetTicketTypeForUpdate(ctx context.Context, id string) (domain.TicketType, error) {
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

func (r *OrderRepository) GetTicketTypeByPriceRef(ctx context.Context, priceRef string) (domain.TicketType, error) {
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

func scanOrder(row pgx.Row) (domain.Order, error) {
	var o domain.Order
	var status string
	err := row.Scan(
		&o.ID,
		&o.SessionRef,
		&status,
		&o.CustomerName,
		&o.CustomerEmail,
		&o.TotalAmount,
		&o.Currency,
		&o.CreatedAt,
		&o.UpdatedAt,
		&o.ConfirmedAt,
	)
	if err != nil {
		return domain.Order{}, err
	}
	o.Status = domain.OrderStatus(status)
	return o, nil
}

func (r *OrderRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *OrderRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
