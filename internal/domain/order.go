package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusFailed    OrderStatus = "failed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Terminal reports whether the status permits no further transitions.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusConfirmed || s == OrderStatusFailed || s == OrderStatusCancelled
}

// Order tracks a checkout attempt from pending through its terminal state.
// Customer identity is only populated once the payment provider confirms.
type Order struct {
	ID            string
	SessionRef    string
	Status        OrderStatus
	CustomerName  string
	CustomerEmail string
	// TotalAmount in minor currency units (pence).
	TotalAmount int64
	Currency    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ConfirmedAt *time.Time
}
