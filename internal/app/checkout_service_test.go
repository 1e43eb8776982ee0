package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/YukiSuter/NovaKelvin/internal/clock"
	"github.com/YukiSuter/NovaKelvin/internal/domain"
	"github.com/YukiSuter/NovaKelvin/internal/payment"
)

func TestCheckoutService_CreateCheckout(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	makeSvc := func(store *fakeStore, provider *fakeProvider) *CheckoutService {
		return NewCheckoutService(store, provider, clock.NewFixed(now), "GBP")
	}

	t.Run("opens a session and records a pending order", func(t *testing.T) {
		store := newFakeStore()
		store.addType(domain.TicketType{ID: "a", Price: 1500, PriceRef: "price_a", QtyTotal: 10, QtyAvailable: 10})
		store.addType(domain.TicketType{ID: "b", Price: 2500, PriceRef: "price_b", QtyTotal: 10, QtyAvailable: 10})
		provider := &fakeProvider{session: payment.Session{ID: "cs_1", ClientSecret: "cs_1_secret"}}

		res, err := makeSvc(store, provider).CreateCheckout(context.Background(), CreateCheckoutInput{
			Lines: []CheckoutLine{
				{TicketTypeID: "a", Quantity: 2},
				{TicketTypeID: "b", Quantity: 1},
			},
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if res.SessionID != "cs_1" || res.ClientSecret != "cs_1_secret" {
			t.Fatalf("unexpected session in result: %+v", res)
		}
		if res.Order.Status != domain.OrderStatusPending {
			t.Fatalf("expected pending order, got %s", res.Order.Status)
		}
		if res.Order.TotalAmount != 2*1500+2500 {
			t.Fatalf("unexpected total %d", res.Order.TotalAmount)
		}
		if res.Order.Currency != "GBP" {
			t.Fatalf("unexpected currency %q", res.Order.Currency)
		}
		if res.Order.CustomerEmail != "" || res.Order.CustomerName != "" {
			t.Fatalf("customer identity must stay empty until confirmation")
		}

		stored, ok := store.orders["cs_1"]
		if !ok {
			t.Fatalf("expected order persisted under session ref")
		}
		if stored.Status != domain.OrderStatusPending {
			t.Fatalf("expected stored order pending, got %s", stored.Status)
		}

		if len(provider.createCalls) != 1 {
			t.Fatalf("expected one session creation, got %d", len(provider.createCalls))
		}
		sent := provider.createCalls[0]
		if len(sent) != 2 || sent[0] != (payment.LineItem{PriceRef: "price_a", Quantity: 2}) || sent[1] != (payment.LineItem{PriceRef: "price_b", Quantity: 1}) {
			t.Fatalf("unexpected session line items %+v", sent)
		}
	})

	t.Run("empty request is rejected", func(t *testing.T) {
		_, err := makeSvc(newFakeStore(), &fakeProvider{}).CreateCheckout(context.Background(), CreateCheckoutInput{})
		if err != domain.ErrNoLineItems {
			t.Fatalf("expected ErrNoLineItems, got %v", err)
		}
	})

	t.Run("non-positive quantities are skipped, not rejected", func(t *testing.T) {
		store := newFakeStore()
		store.addType(domain.TicketType{ID: "a", Price: 1000, PriceRef: "price_a", QtyTotal: 5, QtyAvailable: 5})
		provider := &fakeProvider{session: payment.Session{ID: "cs_2"}}

		res, err := makeSvc(store, provider).CreateCheckout(context.Background(), CreateCheckoutInput{
			Lines: []CheckoutLine{
				{TicketTypeID: "ignored", Quantity: 0},
				{TicketTypeID: "also-ignored", Quantity: -3},
				{TicketTypeID: "a", Quantity: 1},
			},
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if res.Order.TotalAmount != 1000 {
			t.Fatalf("unexpected total %d", res.Order.TotalAmount)
		}
		if len(provider.createCalls[0]) != 1 {
			t.Fatalf("expected one session line, got %d", len(provider.createCalls[0]))
		}
	})

	t.Run("all lines skipped leaves nothing to sell", func(t *testing.T) {
		store := newFakeStore()
		_, err := makeSvc(store, &fakeProvider{}).CreateCheckout(context.Background(), CreateCheckoutInput{
			Lines: []CheckoutLine{{TicketTypeID: "a", Quantity: 0}},
		})
		if err != domain.ErrNoValidLineItems {
			t.Fatalf("expected ErrNoValidLineItems, got %v", err)
		}
	})

	t.Run("unknown ticket type fails the request", func(t *testing.T) {
		store := newFakeStore()
		provider := &fakeProvider{}
		_, err := makeSvc(store, provider).CreateCheckout(context.Background(), CreateCheckoutInput{
			Lines: []CheckoutLine{{TicketTypeID: "missing", Quantity: 1}},
		})
		if err != domain.ErrTicketTypeNotFound {
			t.Fatalf("expected ErrTicketTypeNotFound, got %v", err)
		}
		if len(provider.createCalls) != 0 {
			t.Fatalf("expected no session creation")
		}
	})

	t.Run("quantity above availability fails and persists nothing", func(t *testing.T) {
		// Scenario: requesting 5 against available=3 must fail with
		// insufficient availability and create no order.
		store := newFakeStore()
		store.addType(domain.TicketType{ID: "a", Price: 1000, QtyTotal: 10, QtySold: 7, QtyAvailable: 3})
		provider := &fakeProvider{}

		_, err := makeSvc(store, provider).CreateCheckout(context.Background(), CreateCheckoutInput{
			Lines: []CheckoutLine{{TicketTypeID: "a", Quantity: 5}},
		})
		if err != domain.ErrInsufficientAvailability {
			t.Fatalf("expected ErrInsufficientAvailability, got %v", err)
		}
		if len(store.orders) != 0 {
			t.Fatalf("expected no order persisted, got %d", len(store.orders))
		}
		if len(provider.createCalls) != 0 {
			t.Fatalf("expected no session creation")
		}
	})

	t.Run("provider failure surfaces and persists no order", func(t *testing.T) {
		store := newFakeStore()
		store.addType(domain.TicketType{ID: "a", Price: 1000, PriceRef: "price_a", QtyTotal: 5, QtyAvailable: 5})
		provErr := &payment.Error{Op: "create session", Err: errors.New("rail down")}
		provider := &fakeProvider{createErr: provErr}

		_, err := makeSvc(store, provider).CreateCheckout(context.Background(), CreateCheckoutInput{
			Lines: []CheckoutLine{{TicketTypeID: "a", Quantity: 1}},
		})
		var pe *payment.Error
		if !errors.As(err, &pe) {
			t.Fatalf("expected payment.Error, got %v", err)
		}
		if len(store.orders) != 0 {
			t.Fatalf("expected no order persisted after provider failure")
		}
	})
}
