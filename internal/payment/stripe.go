package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// StripeClient implements Provider against the Stripe checkout sessions API.
type StripeClient struct {
	baseURL   string
	secretKey string
	returnURL string
	logger    *logrus.Logger
	hc        *http.Client
}

func NewStripeClient(baseURL, secretKey, returnURL string, logger *logrus.Logger, hc *http.Client) *StripeClient {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &StripeClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		secretKey: secretKey,
		returnURL: returnURL,
		logger:    logger,
		hc:        hc,
	}
}

// CreateSession opens an embedded checkout session with one line per price.
func (c *StripeClient) CreateSession(ctx context.Context, items []LineItem) (Session, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("ui_mode", "embedded")
	form.Set("return_url", c.returnURL)
	for i, item := range items {
		form.Set(fmt.Sprintf("line_items[%d][price]", i), item.PriceRef)
		form.Set(fmt.Sprintf("line_items[%d][quantity]", i), strconv.Itoa(item.Quantity))
	}

	var resp struct {
		ID           string `json:"id"`
		ClientSecret string `json:"client_secret"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/checkout/sessions", form, &resp, "create session"); err != nil {
		return Session{}, err
	}
	return Session{ID: resp.ID, ClientSecret: resp.ClientSecret}, nil
}

// ListLineItems fetches the line items the provider recorded for the session.
func (c *StripeClient) ListLineItems(ctx context.Context, sessionID string) ([]LineItem, error) {
	path := "/v1/checkout/sessions/" + url.PathEscape(sessionID) + "/line_items"

	var resp struct {
		Data []struct {
			Price struct {
				ID string `json:"id"`
			} `json:"price"`
			Quantity int `json:"quantity"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp, "list line items"); err != nil {
		return nil, err
	}

	items := make([]LineItem, 0, len(resp.Data))
	for _, d := range resp.Data {
		items = append(items, LineItem{PriceRef: d.Price.ID, Quantity: d.Quantity})
	}
	return items, nil
}

func (c *StripeClient) do(ctx context.Context, method, path string, form url.Values, out any, op string) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.hc.Do(req)
	if err != nil {
		c.logger.WithError(err).WithField("op", op).Error("payment provider request failed")
		return &Error{Op: op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &Error{Op: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := errors.New(strings.TrimSpace(string(respBody)))
		c.logger.WithError(err).WithFields(logrus.Fields{
			"op":     op,
			"status": resp.StatusCode,
		}).Error("payment provider returned error status")
		return &Error{Op: op, StatusCode: resp.StatusCode, Err: err}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return &Error{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
