package app

import (
	"context"

	"github.com/YukiSuter/NovaKelvin/internal/clock"
	"github.com/YukiSuter/NovaKelvin/internal/domain"
	"github.com/YukiSuter/NovaKelvin/internal/payment"
)

type CheckoutRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetTicketTypeForUpdate(ctx context.Context, id string) (domain.TicketType, error)
	CreateOrder(ctx context.Context, order domain.Order) error
}

// CheckoutService validates a purchase request against current availability,
// opens a payment session and records a pending order keyed by the session.
// Availability here is a point-in-time check, not a reservation: the window
// between validation and payment confirmation is accepted.
type CheckoutService struct {
	repo     CheckoutRepository
	provider payment.Provider
	clock    clock.Clock
	currency string
}

func NewCheckoutService(repo CheckoutRepository, provider payment.Provider, clk clock.Clock, currency string) *CheckoutService {
	return &CheckoutService{
		repo:     repo,
		provider: provider,
		clock:    clk,
		currency: currency,
	}
}

type CheckoutLine struct {
	TicketTypeID string
	Quantity     int
}

type CreateCheckoutInput struct {
	Lines []CheckoutLine
}

type CreateCheckoutResult struct {
	Order        domain.Order
	SessionID    string
	ClientSecret string
}

// CreateCheckout validates each requested line in order: zero or negative
// quantities are skipped, unknown ticket types fail the request, and a
// quantity above current availability fails it. The provider session is
// opened before anything is persisted; if session creation fails no order
// exists.
func (s *CheckoutService) CreateCheckout(ctx context.Context, in CreateCheckoutInput) (CreateCheckoutResult, error) {
	if len(in.Lines) == 0 {
		return CreateCheckoutResult{}, domain.ErrNoLineItems
	}

	var items []payment.LineItem
	var total int64

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		for _, line := range in.Lines {
			if line.Quantity <= 0 {
				continue
			}
			tt, err := s.repo.GetTicketTypeForUpdate(txCtx, line.TicketTypeID)
			if err != nil {
				return err
			}
			if line.Quantity > tt.QtyAvailable {
				return domain.ErrInsufficientAvailability
			}
			total += tt.Price * int64(line.Quantity)
			items = append(items, payment.LineItem{PriceRef: tt.PriceRef, Quantity: line.Quantity})
		}
		return nil
	})
	if err != nil {
		return CreateCheckoutResult{}, err
	}
	if len(items) == 0 {
		return CreateCheckoutResult{}, domain.ErrNoValidLineItems
	}

	session, err := s.provider.CreateSession(ctx, items)
	if err != nil {
		return CreateCheckoutResult{}, err
	}

	now := s.clock.Now()
	order := domain.Order{
		ID:          newID(),
		SessionRef:  session.ID,
		Status:      domain.OrderStatusPending,
		TotalAmount: total,
		Currency:    s.currency,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateOrder(ctx, order); err != nil {
		return CreateCheckoutResult{}, err
	}

	return CreateCheckoutResult{
		Order:        order,
		SessionID:    session.ID,
		ClientSecret: session.ClientSecret,
	}, nil
}
