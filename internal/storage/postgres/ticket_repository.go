package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/YukiSuter/NovaKelvin/internal/domain"
)

type TicketRepository struct {
	pool *pgxpool.Pool
}

func NewTicketRepository(pool *pgxpool.Pool) *TicketRepository {
	return &TicketRepository{pool: pool}
}

func (r *TicketRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *TicketRepository) CreateTicket(ctx context.Context, t domain.Ticket) error {
	const stmt = `
INSERT INTO tickets (id, ticket_type_id, concert_id, holder_name, holder_email, transaction_ref, valid, audit_log, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.exec(ctx, stmt,
		t.ID,
		t.TicketTypeID,
		t.ConcertID,
		t.HolderName,
		t.HolderEmail,
		t.TransactionRef,
		t.Valid,
		t.AuditLog,
		t.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrTicketTypeNotFound
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create ticket: %w", err)
	}
	return nil
}

func (r *TicketRepository) GetTicket(ctx context.Context, id string) (domain.Ticket, error) {
	const query = `
SELECT id, ticket_type_id, concert_id, holder_name, holder_email, transaction_ref, valid, audit_log, created_at
FROM tickets
WHERE id = $1
FOR UPDATE`

	var t domain.Ticket
	err := r.queryRow(ctx, query, id).Scan(
		&t.ID,
		&t.TicketTypeID,
		&t.ConcertID,
		&t.HolderName,
		&t.HolderEmail,
		&t.TransactionRef,
		&t.Valid,
		&t.AuditLog,
		&t.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Ticket{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Ticket{}, domain.ErrTicketNotFound
		}
		return domain.Ticket{}, fmt.Errorf("get ticket: %w", err)
	}
	return t, nil
}

// SetTicketValidity flips the validity flag and appends an audit line in the
// same statement.
func (r *TicketRepository) SetTicketValidity(ctx context.Context, id string, valid bool, auditLine string) error {
	const stmt = `UPDATE tickets SET valid = $2, audit_log = audit_log || $3 WHERE id = $1`

	tag, err := r.exec(ctx, stmt, id, valid, auditLine)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("set ticket validity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTicketNotFound
	}
	return nil
}

func (r *TicketRepository) DeleteTicket(ctx context.Context, id string) error {
	const stmt = `DELETE FROM tickets WHERE id = $1`

	tag, err := r.exec(ctx, stmt, id)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("delete ticket: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTicketNotFound
	}
	return nil
}

func (r *TicketRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *TicketRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}
