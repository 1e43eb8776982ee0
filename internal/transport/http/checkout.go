package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/YukiSuter/NovaKelvin/internal/app"
)

// CheckoutCreator is the minimal interface needed to open a checkout.
type CheckoutCreator interface {
	CreateCheckout(ctx context.Context, in app.CreateCheckoutInput) (app.CreateCheckoutResult, error)
}

// HandleCreateCheckout returns an HTTP handler for opening payment sessions.
func HandleCreateCheckout(svc CheckoutCreator, validate *validator.Validate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req createCheckoutRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, err.Error())
			return
		}

		lines := make([]app.CheckoutLine, 0, len(req.LineItems))
		for _, item := range req.LineItems {
			lines = append(lines, app.CheckoutLine{
				TicketTypeID: item.TicketTypeID,
				Quantity:     item.Quantity,
			})
		}

		res, err := svc.CreateCheckout(r.Context(), app.CreateCheckoutInput{Lines: lines})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, createCheckoutResponse{
			OrderID:      res.Order.ID,
			SessionID:    res.SessionID,
			ClientSecret: res.ClientSecret,
		})
	}
}

type createCheckoutRequest struct {
	LineItems []checkoutLineRequest `json:"line_items" validate:"dive"`
}

type checkoutLineRequest struct {
	TicketTypeID string `json:"ticket_type_id" validate:"required"`
	Quantity     int    `json:"quantity"`
}

type createCheckoutResponse struct {
	OrderID      string `json:"order_id"`
	SessionID    string `json:"checkout_session_id"`
	ClientSecret string `json:"client_secret"`
}
