package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/YukiSuter/NovaKelvin/internal/domain"
	"github.com/YukiSuter/NovaKelvin/internal/payment"
)

const (
	codeMethodNotAllowed         = "method_not_allowed"
	codeNotFound                 = "not_found"
	codeInvalidRequestBody       = "invalid_request_body"
	codeInvalidID                = "invalid_id"
	codeConcertNotFound          = "concert_not_found"
	codeTicketTypeNotFound       = "ticket_type_not_found"
	codeTicketNotFound           = "ticket_not_found"
	codeOrderNotFound            = "order_not_found"
	codeInsufficientAvailability = "insufficient_availability"
	codeNoLineItems              = "no_line_items"
	codeNoValidLineItems         = "no_valid_line_items"
	codeConcertNameRequired      = "concert_name_required"
	codeLabelRequired            = "ticket_label_required"
	codeInvalidQuantity          = "invalid_quantity"
	codeInvalidTotal             = "invalid_total"
	codeLinkToSelf               = "link_to_self"
	codeInvalidSignature         = "invalid_signature"
	codeProviderError            = "provider_error"
	codeInternalError            = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeDomainError maps core errors onto the JSON error envelope. Provider
// failures get their own code so clients can tell a bad request from a
// broken payment rail.
func writeDomainError(w http.ResponseWriter, err error) {
	var provErr *payment.Error
	if errors.As(err, &provErr) {
		writeError(w, http.StatusBadGateway, codeProviderError, "payment provider error")
		return
	}

	switch err {
	case domain.ErrInvalidID:
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	case domain.ErrConcertNameRequired:
		writeError(w, http.StatusBadRequest, codeConcertNameRequired, err.Error())
	case domain.ErrLabelRequired:
		writeError(w, http.StatusBadRequest, codeLabelRequired, err.Error())
	case domain.ErrInvalidQuantity:
		writeError(w, http.StatusBadRequest, codeInvalidQuantity, err.Error())
	case domain.ErrInvalidTotal:
		writeError(w, http.StatusBadRequest, codeInvalidTotal, err.Error())
	case domain.ErrNoLineItems:
		writeError(w, http.StatusBadRequest, codeNoLineItems, err.Error())
	case domain.ErrNoValidLineItems:
		writeError(w, http.StatusBadRequest, codeNoValidLineItems, err.Error())
	case domain.ErrLinkToSelf:
		writeError(w, http.StatusBadRequest, codeLinkToSelf, err.Error())
	case domain.ErrConcertNotFound:
		writeError(w, http.StatusNotFound, codeConcertNotFound, err.Error())
	case domain.ErrTicketTypeNotFound:
		writeError(w, http.StatusNotFound, codeTicketTypeNotFound, err.Error())
	case domain.ErrTicketNotFound:
		writeError(w, http.StatusNotFound, codeTicketNotFound, err.Error())
	case domain.ErrOrderNotFound:
		writeError(w, http.StatusNotFound, codeOrderNotFound, err.Error())
	case domain.ErrInsufficientAvailability:
		writeError(w, http.StatusConflict, codeInsufficientAvailability, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
