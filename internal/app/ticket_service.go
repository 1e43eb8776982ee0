package app

import (
	"context"
	"fmt"

	"github.com/YukiSuter/NovaKelvin/internal/clock"
	"github.com/YukiSuter/NovaKelvin/internal/domain"
)

type TicketRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	CreateTicket(ctx context.Context, t domain.Ticket) error
	GetTicket(ctx context.Context, id string) (domain.Ticket, error)
	SetTicketValidity(ctx context.Context, id string, valid bool, auditLine string) error
	DeleteTicket(ctx context.Context, id string) error
}

// ClusterRecalculator recomputes pool counts after a ticket mutation. The
// ledger service satisfies this; its recalculation joins the transaction the
// ticket mutation opened.
type ClusterRecalculator interface {
	Recalculate(ctx context.Context, ticketTypeID string) error
}

// TicketService is the durable store of issued tickets. Every mutation
// recalculates the affected pool inside the same transaction, so callers
// never observe a ticket write without the ledger update that follows it.
type TicketService struct {
	repo   TicketRepository
	ledger ClusterRecalculator
	clock  clock.Clock
}

func NewTicketService(repo TicketRepository, ledger ClusterRecalculator, clk clock.Clock) *TicketService {
	return &TicketService{
		repo:   repo,
		ledger: ledger,
		clock:  clk,
	}
}

type IssueTicketInput struct {
	TicketTypeID   string
	ConcertID      string
	HolderName     string
	HolderEmail    string
	TransactionRef string
}

// Issue creates a valid ticket with an initial audit entry and recalculates
// the ticket type's pool as part of the same transaction.
func (s *TicketService) Issue(ctx context.Context, in IssueTicketInput) (domain.Ticket, error) {
	if in.TicketTypeID == "" {
		return domain.Ticket{}, domain.ErrInvalidID
	}

	now := s.clock.Now()
	ticket := domain.Ticket{
		ID:             newID(),
		TicketTypeID:   in.TicketTypeID,
		ConcertID:      in.ConcertID,
		HolderName:     in.HolderName,
		HolderEmail:    in.HolderEmail,
		TransactionRef: in.TransactionRef,
		Valid:          true,
		AuditLog:       auditLine(s.clock, fmt.Sprintf("ticket issued for transaction %s", in.TransactionRef)),
		CreatedAt:      now,
	}

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.CreateTicket(txCtx, ticket); err != nil {
			return err
		}
		return s.ledger.Recalculate(txCtx, in.TicketTypeID)
	})
	if err != nil {
		return domain.Ticket{}, err
	}
	return ticket, nil
}

// Invalidate marks a ticket invalid so it no longer counts toward its pool's
// sold total, then recalculates the pool.
func (s *TicketService) Invalidate(ctx context.Context, ticketID string) error {
	if ticketID == "" {
		return domain.ErrInvalidID
	}
	return s.repo.WithTx(ctx, func(txCtx context.Context) error {
		ticket, err := s.repo.GetTicket(txCtx, ticketID)
		if err != nil {
			return err
		}
		if err := s.repo.SetTicketValidity(txCtx, ticketID, false, auditLine(s.clock, "ticket invalidated")); err != nil {
			return err
		}
		return s.ledger.Recalculate(txCtx, ticket.TicketTypeID)
	})
}

// Delete removes a ticket entirely and recalculates its pool.
func (s *TicketService) Delete(ctx context.Context, ticketID string) error {
	if ticketID == "" {
		return domain.ErrInvalidID
	}
	return s.repo.WithTx(ctx, func(txCtx context.Context) error {
		ticket, err := s.repo.GetTicket(txCtx, ticketID)
		if err != nil {
			return err
		}
		if err := s.repo.DeleteTicket(txCtx, ticketID); err != nil {
			return err
		}
		return s.ledger.Recalculate(txCtx, ticket.TicketTypeID)
	})
}

func auditLine(clk clock.Clock, message string) string {
	return fmt.Sprintf("[%s] - %s.\n", clk.Now().Format("2006-01-02 15:04:05"), message)
}
