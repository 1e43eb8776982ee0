package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/YukiSuter/NovaKelvin/internal/app"
	"github.com/YukiSuter/NovaKelvin/internal/domain"
)

// ConcertCreator is the minimal interface for creating concerts.
type ConcertCreator interface {
	CreateConcert(ctx context.Context, in app.CreateConcertInput) (domain.Concert, error)
}

// HandleAdminConcerts returns an HTTP handler for concert creation.
func HandleAdminConcerts(svc ConcertCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req createConcertRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		in := app.CreateConcertInput{
			Name:        req.Name,
			Location:    req.Location,
			Description: req.Description,
			Conductor:   req.Conductor,
		}
		if req.Date != "" {
			date, err := time.Parse(time.RFC3339, req.Date)
			if err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "date must be RFC 3339")
				return
			}
			in.Date = &date
		}

		concert, err := svc.CreateConcert(r.Context(), in)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, concertResponse{
			ID:          concert.ID,
			Name:        concert.Name,
			Date:        concert.Date.Format(concertDateFormat),
			Time:        concert.Date.Format("15:04"),
			Location:    concert.Location,
			Description: concert.Description,
			Conductor:   concert.Conductor,
		})
	}
}

type createConcertRequest struct {
	Name        string `json:"name"`
	Date        string `json:"date"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Conductor   string `json:"conductor"`
}

// InventoryAdmin is the minimal interface for managing ticket types and
// their shared pools.
type InventoryAdmin interface {
	CreateTicketType(ctx context.Context, in app.CreateTicketTypeInput) (domain.TicketType, error)
	LinkTicketTypes(ctx context.Context, ticketTypeID, otherID string) error
	SetTotal(ctx context.Context, ticketTypeID string, newTotal int) error
}

// HandleAdminTicketTypes returns an HTTP handler for ticket type creation.
func HandleAdminTicketTypes(svc InventoryAdmin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req createTicketTypeRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		tt, err := svc.CreateTicketType(r.Context(), app.CreateTicketTypeInput{
			ConcertID:   req.ConcertID,
			Position:    req.Position,
			Label:       req.Label,
			Description: req.Description,
			Price:       req.Price,
			PriceRef:    req.PriceRef,
			QtyTotal:    req.QtyTotal,
			Display:     req.Display,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, ticketTypeResponse{
			ID:           tt.ID,
			Label:        tt.Label,
			Description:  tt.Description,
			Price:        tt.Price,
			QtyTotal:     tt.QtyTotal,
			QtySold:      tt.QtySold,
			QtyAvailable: tt.QtyAvailable,
			Display:      tt.Display,
		})
	}
}

type createTicketTypeRequest struct {
	ConcertID   string `json:"concert_id"`
	Position    int    `json:"position"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	PriceRef    string `json:"price_ref"`
	QtyTotal    int    `json:"qty_total"`
	Display     bool   `json:"display_ticket"`
}

// HandleAdminTicketTypeOps routes /admin/ticket-types/{id}/links and
// /admin/ticket-types/{id}/total.
func HandleAdminTicketTypeOps(svc InventoryAdmin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		ticketTypeID, op, ok := parseTicketTypeOpPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()

		switch op {
		case "links":
			var req linkTicketTypeRequest
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}
			if err := svc.LinkTicketTypes(r.Context(), ticketTypeID, req.OtherTicketTypeID); err != nil {
				writeDomainError(w, err)
				return
			}
		case "total":
			var req setTotalRequest
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}
			if err := svc.SetTotal(r.Context(), ticketTypeID, req.QtyTotal); err != nil {
				writeDomainError(w, err)
				return
			}
		default:
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

type linkTicketTypeRequest struct {
	OtherTicketTypeID string `json:"other_ticket_type_id"`
}

type setTotalRequest struct {
	QtyTotal int `json:"qty_total"`
}

func parseTicketTypeOpPath(path string) (id, op string, ok bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 4 {
		return "", "", false
	}
	if parts[0] != "admin" || parts[1] != "ticket-types" || parts[2] == "" {
		return "", "", false
	}
	return parts[2], parts[3], true
}

// TicketInvalidator is the minimal interface for pulling a ticket back out
// of circulation.
type TicketInvalidator interface {
	Invalidate(ctx context.Context, ticketID string) error
}

// HandleAdminInvalidateTicket returns an HTTP handler for
// /admin/tickets/{id}/invalidate.
func HandleAdminInvalidateTicket(svc TicketInvalidator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		ticketID, ok := parseInvalidateTicketPath(r.URL.Path)
		if !ok {
			writeError(w, http.StatusNotFound, codeNotFound, "not found")
			return
		}

		if err := svc.Invalidate(r.Context(), ticketID); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func parseInvalidateTicketPath(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) != 4 {
		return "", false
	}
	if parts[0] != "admin" || parts[1] != "tickets" || parts[2] == "" || parts[3] != "invalidate" {
		return "", false
	}
	return parts[2], true
}
