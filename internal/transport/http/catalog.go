package http

import (
	"context"
	"net/http"

	"github.com/YukiSuter/NovaKelvin/internal/domain"
)

// concertDateFormat matches what the booking frontend renders.
const concertDateFormat = "02/01/2006"

// ConcertLister is the minimal interface needed to list concerts.
type ConcertLister interface {
	ListConcerts(ctx context.Context) ([]domain.Concert, error)
}

// HandleListConcerts returns an HTTP handler for the concert listing.
func HandleListConcerts(svc ConcertLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		concerts, err := svc.ListConcerts(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}

		resp := make([]concertResponse, 0, len(concerts))
		for _, c := range concerts {
			resp = append(resp, concertResponse{
				ID:          c.ID,
				Name:        c.Name,
				Date:        c.Date.Format(concertDateFormat),
				Time:        c.Date.Format("15:04"),
				Location:    c.Location,
				Description: c.Description,
				Conductor:   c.Conductor,
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

type concertResponse struct {
	ID          string `json:"id"`
	Name        string `json:"concert_name"`
	Date        string `json:"concert_date"`
	Time        string `json:"concert_time"`
	Location    string `json:"concert_location"`
	Description string `json:"concert_description"`
	Conductor   string `json:"conductor,omitempty"`
}

// TicketTypeLister is the minimal interface needed to list a concert's
// ticket types.
type TicketTypeLister interface {
	ListTicketTypes(ctx context.Context, concertID string) ([]domain.TicketType, error)
}

// HandleListTicketTypes returns an HTTP handler for per-concert ticket type
// availability.
func HandleListTicketTypes(svc TicketTypeLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		concertID := r.URL.Query().Get("concert_id")
		if concertID == "" {
			writeError(w, http.StatusBadRequest, codeInvalidID, "concert_id query parameter is required")
			return
		}

		types, err := svc.ListTicketTypes(r.Context(), concertID)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		resp := make([]ticketTypeResponse, 0, len(types))
		for _, tt := range types {
			resp = append(resp, ticketTypeResponse{
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
		writeJSON(w, http.StatusOK, resp)
	}
}

type ticketTypeResponse struct {
	ID          string `json:"id"`
	Label       string `json:"ticket_label"`
	Description string `json:"description,omitempty"`
	// Price in minor currency units.
	Price        int64 `json:"price"`
	QtyTotal     int   `json:"qty_total"`
	QtySold      int   `json:"qty_sold"`
	QtyAvailable int   `json:"qty_available"`
	Display      bool  `json:"display_ticket"`
}
