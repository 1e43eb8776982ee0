package app

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/YukiSuter/NovaKelvin/internal/clock"
	"github.com/YukiSuter/NovaKelvin/internal/domain"
	"github.com/YukiSuter/NovaKelvin/internal/payment"
)

type ReconcilerRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetOrderBySessionRefForUpdate(ctx context.Context, sessionRef string) (domain.Order, error)
	MarkOrderConfirmed(ctx context.Context, id, customerName, customerEmail string, at time.Time) error
	MarkOrderFailed(ctx context.Context, id string, at time.Time) error
	GetTicketTypeByPriceRef(ctx context.Context, priceRef string) (domain.TicketType, error)
}

type TicketIssuer interface {
	Issue(ctx context.Context, in IssueTicketInput) (domain.Ticket, error)
}

// ReconcilerService drives an order's state machine from payment provider
// notifications. Orders move from pending to exactly one terminal state;
// duplicate notifications for a terminal order are no-ops, which is what
// makes webhook redelivery safe.
type ReconcilerService struct {
	repo     ReconcilerRepository
	tickets  TicketIssuer
	provider payment.Provider
	clock    clock.Clock
	logger   *logrus.Logger
}

func NewReconcilerService(repo ReconcilerRepository, tickets TicketIssuer, provider payment.Provider, clk clock.Clock, logger *logrus.Logger) *ReconcilerService {
	return &ReconcilerService{
		repo:     repo,
		tickets:  tickets,
		provider: provider,
		clock:    clk,
		logger:   logger,
	}
}

// HandleSessionCompleted confirms the pending order for the session and
// issues its tickets. The confirmation commits before issuance begins, and
// each ticket is issued in its own transaction with its own pool
// recalculation, so availability tightens incrementally as tickets land.
// Issuance failures leave the order confirmed: a confirmed order with
// missing tickets is flagged for operators rather than silently undone.
func (s *ReconcilerService) HandleSessionCompleted(ctx context.Context, sessionRef string, customer payment.CustomerDetails) error {
	var order domain.Order
	confirmed := false

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		o, err := s.repo.GetOrderBySessionRefForUpdate(txCtx, sessionRef)
		if err != nil {
			return err
		}
		if o.Status != domain.OrderStatusPending {
			s.logger.WithFields(logrus.Fields{
				"order_id":    o.ID,
				"session_ref": sessionRef,
				"status":      o.Status,
			}).Info("ignoring completed notification for terminal order")
			return nil
		}
		if err := s.repo.MarkOrderConfirmed(txCtx, o.ID, customer.Name, customer.Email, s.clock.Now()); err != nil {
			return err
		}
		order = o
		confirmed = true
		return nil
	})
	if err != nil {
		return err
	}
	if !confirmed {
		return nil
	}

	// The provider's line items are the authoritative record of what was
	// paid, decoupled from whatever the checkout request asked for.
	items, err := s.provider.ListLineItems(ctx, sessionRef)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"order_id":    order.ID,
			"session_ref": sessionRef,
		}).Error("order confirmed but line items unavailable; no tickets issued")
		return nil
	}

	for _, item := range items {
		tt, err := s.repo.GetTicketTypeByPriceRef(ctx, item.PriceRef)
		if err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"order_id":  order.ID,
				"price_ref": item.PriceRef,
			}).Error("cannot resolve ticket type for paid line item")
			continue
		}
		for i := 0; i < item.Quantity; i++ {
			_, err := s.tickets.Issue(ctx, IssueTicketInput{
				TicketTypeID:   tt.ID,
				ConcertID:      tt.ConcertID,
				HolderName:     customer.Name,
				HolderEmail:    customer.Email,
				TransactionRef: sessionRef,
			})
			if err != nil {
				s.logger.WithError(err).WithFields(logrus.Fields{
					"order_id":       order.ID,
					"ticket_type_id": tt.ID,
					"session_ref":    sessionRef,
				}).Error("ticket issuance failed on confirmed order")
			}
		}
	}
	return nil
}

// HandlePaymentFailed moves a pending order to failed. A missing order is a
// silent no-op since the failure notification can race with other cleanup;
// terminal orders are left untouched.
func (s *ReconcilerService) HandlePaymentFailed(ctx context.Context, sessionRef string) error {
	return s.repo.WithTx(ctx, func(txCtx context.Context) error {
		o, err := s.repo.GetOrderBySessionRefForUpdate(txCtx, sessionRef)
		if err != nil {
			if err == domain.ErrOrderNotFound {
				return nil
			}
			return err
		}
		if o.Status != domain.OrderStatusPending {
			return nil
		}
		return s.repo.MarkOrderFailed(txCtx, o.ID, s.clock.Now())
	})
}
