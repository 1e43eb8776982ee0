package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/YukiSuter/NovaKelvin/internal/app"
	"github.com/YukiSuter/NovaKelvin/internal/domain"
)

func TestHandleOrderStatus(t *testing.T) {
	t.Parallel()

	confirmedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		method         string
		target         string
		view           app.OrderStatusView
		serviceErr     error
		expectedStatus int
		expectedSubstr string
		absentSubstr   string
	}{
		{
			name:   "pending hides customer identity",
			method: http.MethodGet,
			target: "/api/tickets/order-status/?session_id=cs_1",
			view: app.OrderStatusView{
				OrderID: "order-1",
				Status:  domain.OrderStatusPending,
			},
			expectedStatus: http.StatusOK,
			expectedSubstr: `"status":"pending"`,
			absentSubstr:   `"customer_email"`,
		},
		{
			name:   "confirmed exposes identity and total",
			method: http.MethodGet,
			target: "/api/tickets/order-status/?session_id=cs_1",
			view: app.OrderStatusView{
				OrderID:       "order-1",
				Status:        domain.OrderStatusConfirmed,
				CustomerName:  "Ada",
				CustomerEmail: "ada@example.com",
				TotalAmount:   4500,
				Currency:      "gbp",
				ConfirmedAt:   &confirmedAt,
			},
			expectedStatus: http.StatusOK,
			expectedSubstr: `"total_amount":4500`,
		},
		{
			name:           "missing session id",
			method:         http.MethodGet,
			target:         "/api/tickets/order-status/",
			expectedStatus: http.StatusBadRequest,
			expectedSubstr: `"code":"invalid_id"`,
		},
		{
			name:           "order not found",
			method:         http.MethodGet,
			target:         "/api/tickets/order-status/?session_id=cs_x",
			serviceErr:     domain.ErrOrderNotFound,
			expectedStatus: http.StatusNotFound,
			expectedSubstr: `"code":"order_not_found"`,
		},
		{
			name:           "method not allowed",
			method:         http.MethodPost,
			target:         "/api/tickets/order-status/?session_id=cs_1",
			expectedStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := &stubOrderStatusReader{view: tt.view, err: tt.serviceErr}

			req := httptest.NewRequest(tt.method, tt.target, nil)
			rec := httptest.NewRecorder()

			HandleOrderStatus(svc).ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, rec.Code)
			}
			body := rec.Body.String()
			if tt.expectedSubstr != "" && !strings.Contains(body, tt.expectedSubstr) {
				t.Fatalf("expected response to contain %q, got %q", tt.expectedSubstr, body)
			}
			if tt.absentSubstr != "" && strings.Contains(body, tt.absentSubstr) {
				t.Fatalf("expected response to omit %q, got %q", tt.absentSubstr, body)
			}
		})
	}
}

type stubOrderStatusReader struct {
	view app.OrderStatusView
	err  error
}

func (s *stubOrderStatusReader) OrderStatus(_ context.Context, _ string) (app.OrderStatusView, error) {
	return s.view, s.err
}
