package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Gateway is the external payment provider contract. Both operations are safe
// to retry: checkout sessions are resolved by stored session id, refunds by
// idempotency key.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, p CheckoutSessionParams) (*CheckoutSession, error)
	CreateRefund(ctx context.Context, p CreateRefundParams) (*GatewayRefund, error)
}

type CheckoutSessionParams struct {
	AmountCents int64
	Currency    string
	Description string
	SuccessURL  string
	CancelURL   string
	Metadata    map[string]string
}

type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type CreateRefundParams struct {
	PaymentIntentID string
	AmountCents     int64
	Currency        string
	IdempotencyKey  string
	Metadata        map[string]string
}

type GatewayRefund struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// HTTPGateway talks to the gateway's REST API. Constructed once at process
// start and passed into the services that need it, so tests can substitute a
// double.
type HTTPGateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPGateway(baseURL, apiKey string) *HTTPGateway {
	return &HTTPGateway{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (g *HTTPGateway) CreateCheckoutSession(ctx context.Context, p CheckoutSessionParams) (*CheckoutSession, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(p.AmountCents, 10))
	form.Set("currency", p.Currency)
	form.Set("description", p.Description)
	form.Set("success_url", p.SuccessURL)
	form.Set("cancel_url", p.CancelURL)
	for k, v := range p.Metadata {
		form.Set("metadata["+k+"]", v)
	}

	var out CheckoutSession
	if err := g.post(ctx, "/v1/checkout/sessions", form, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *HTTPGateway) CreateRefund(ctx context.Context, p CreateRefundParams) (*GatewayRefund, error) {
	form := url.Values{}
	form.Set("payment_intent", p.PaymentIntentID)
	form.Set("amount", strconv.FormatInt(p.AmountCents, 10))
	for k, v := range p.Metadata {
		form.Set("metadata["+k+"]", v)
	}

	var out GatewayRefund
	if err := g.post(ctx, "/v1/refunds", form, p.IdempotencyKey, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *HTTPGateway) post(ctx context.Context, path string, form url.Values, idempotencyKey string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return fmt.Errorf("gateway returned %d: %s", resp.StatusCode, apiErr.Error.Message)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
