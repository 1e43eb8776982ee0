package http

import (
	"context"
	"net/http"
	"time"

	"github.com/YukiSuter/NovaKelvin/internal/app"
)

// OrderStatusReader is the minimal interface needed for status polls.
type OrderStatusReader interface {
	OrderStatus(ctx context.Context, sessionRef string) (app.OrderStatusView, error)
}

// HandleOrderStatus returns an HTTP handler the frontend polls while waiting
// for the payment confirmation webhook to land.
func HandleOrderStatus(svc OrderStatusReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		sessionID := r.URL.Query().Get("session_id")
		if sessionID == "" {
			writeError(w, http.StatusBadRequest, codeInvalidID, "session_id query parameter is required")
			return
		}

		view, err := svc.OrderStatus(r.Context(), sessionID)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		resp := orderStatusResponse{
			OrderID: view.OrderID,
			Status:  string(view.Status),
		}
		if view.CustomerEmail != "" || view.CustomerName != "" {
			resp.CustomerName = view.CustomerName
			resp.CustomerEmail = view.CustomerEmail
			resp.TotalAmount = view.TotalAmount
			resp.Currency = view.Currency
			resp.ConfirmedAt = view.ConfirmedAt
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

type orderStatusResponse struct {
	OrderID       string     `json:"order_id"`
	Status        string     `json:"status"`
	CustomerName  string     `json:"customer_name,omitempty"`
	CustomerEmail string     `json:"customer_email,omitempty"`
	TotalAmount   int64      `json:"total_amount,omitempty"`
	Currency      string     `json:"currency,omitempty"`
	ConfirmedAt   *time.Time `json:"confirmed_at,omitempty"`
}
