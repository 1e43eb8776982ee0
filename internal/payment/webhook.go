package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventPaymentFailed     = "checkout.session.async_payment_failed"

	// signatureTolerance bounds how stale a signed timestamp may be before
	// the event is rejected as a possible replay.
	signatureTolerance = 5 * time.Minute
)

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrMalformedEvent   = errors.New("malformed webhook event")
)

// Event is an inbound webhook notification after signature verification.
type Event struct {
	Type      string
	SessionID string
	Customer  CustomerDetails
}

// VerifySignature checks a Stripe-style signature header ("t=...,v1=...")
// against the raw payload: HMAC-SHA256 over "<t>.<payload>" keyed with the
// endpoint secret, with a bounded timestamp to reject replays.
func VerifySignature(payload []byte, header, secret string, now time.Time) error {
	var timestamp string
	var signatures [][]byte

	for _, part := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch key {
		case "t":
			timestamp = value
		case "v1":
			sig, err := hex.DecodeString(value)
			if err == nil {
				signatures = append(signatures, sig)
			}
		}
	}

	if timestamp == "" || len(signatures) == 0 {
		return ErrInvalidSignature
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrInvalidSignature
	}
	age := now.Sub(time.Unix(ts, 0))
	if age > signatureTolerance || age < -signatureTolerance {
		return ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := mac.Sum(nil)

	for _, sig := range signatures {
		if hmac.Equal(expected, sig) {
			return nil
		}
	}
	return ErrInvalidSignature
}

// ParseEvent decodes a verified webhook payload. Events without a session id
// are malformed; unknown event types parse fine and are for the caller to
// ignore.
func ParseEvent(payload []byte) (Event, error) {
	var raw struct {
		Type string `json:"type"`
		Data struct {
			Object struct {
				ID              string `json:"id"`
				CustomerDetails struct {
					Name  string `json:"name"`
					Email string `json:"email"`
				} `json:"customer_details"`
			} `json:"object"`
		} `json:"data"`
	}

	if err := json.Unmarshal(payload, &raw); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if raw.Type == "" || raw.Data.Object.ID == "" {
		return Event{}, ErrMalformedEvent
	}

	return Event{
		Type:      raw.Type,
		SessionID: raw.Data.Object.ID,
		Customer: CustomerDetails{
			Name:  raw.Data.Object.CustomerDetails.Name,
			Email: raw.Data.Object.CustomerDetails.Email,
		},
	}, nil
}
