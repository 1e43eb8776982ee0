package http

import (
	"context"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/YukiSuter/NovaKelvin/internal/clock"
	"github.com/YukiSuter/NovaKelvin/internal/payment"
)

const (
	signatureHeader = "Stripe-Signature"
	maxWebhookBody  = 1 << 16
)

// OrderReconciler is the minimal interface the webhook boundary drives.
type OrderReconciler interface {
	HandleSessionCompleted(ctx context.Context, sessionRef string, customer payment.CustomerDetails) error
	HandlePaymentFailed(ctx context.Context, sessionRef string) error
}

// HandleWebhook returns the payment provider webhook endpoint. The signature
// is verified and the payload parsed before the reconciler is invoked;
// nothing unverified reaches the core.
func HandleWebhook(rec OrderReconciler, secret string, clk clock.Clock, logger *logrus.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		if err := payment.VerifySignature(body, r.Header.Get(signatureHeader), secret, clk.Now()); err != nil {
			logger.WithError(err).Warn("rejected webhook with bad signature")
			writeError(w, http.StatusBadRequest, codeInvalidSignature, "invalid signature")
			return
		}

		event, err := payment.ParseEvent(body)
		if err != nil {
			logger.WithError(err).Warn("rejected malformed webhook payload")
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "malformed event")
			return
		}

		switch event.Type {
		case payment.EventCheckoutCompleted:
			if err := rec.HandleSessionCompleted(r.Context(), event.SessionID, event.Customer); err != nil {
				writeDomainError(w, err)
				return
			}
		case payment.EventPaymentFailed:
			if err := rec.HandlePaymentFailed(r.Context(), event.SessionID); err != nil {
				writeDomainError(w, err)
				return
			}
		default:
			logger.WithField("type", event.Type).Debug("ignoring unhandled webhook event type")
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
	}
}
