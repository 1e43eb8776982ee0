// Package payment talks to the external payment provider. The core consumes
// it through the Provider interface; the concrete client speaks the Stripe
// checkout session API over HTTP.
package payment

import (
	"context"
	"fmt"
)

// LineItem pairs a provider-side price reference with a quantity.
type LineItem struct {
	PriceRef string
	Quantity int
}

// Session identifies an opened checkout session. ClientSecret is the
// client-facing handle the frontend uses to render the embedded checkout.
type Session struct {
	ID           string
	ClientSecret string
}

// CustomerDetails carries the customer identity reported by the provider on
// completion.
type CustomerDetails struct {
	Name  string
	Email string
}

// Provider is the payment rail as seen by the core. CreateSession opens a
// checkout session priced from the given line items; ListLineItems returns
// the authoritative record of what was actually paid for a session.
type Provider interface {
	CreateSession(ctx context.Context, items []LineItem) (Session, error)
	ListLineItems(ctx context.Context, sessionID string) ([]LineItem, error)
}

// Error marks a failure of the payment rail itself, as opposed to a bad
// request from the caller.
type Error struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("payment provider: %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("payment provider: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
