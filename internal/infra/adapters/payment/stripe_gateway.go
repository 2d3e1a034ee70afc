// File: internal/infra/adapters/payment/stripe_gateway.go
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
	"time"

	"fideliza/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*StripeGateway)(nil)

// StripeGateway implements adapter.PaymentGateway against the Stripe REST
// API (form-encoded requests, basic auth with the secret key).
type StripeGateway struct {
	secretKey     string
	webhookSecret string
	baseURL       string
	client        *http.Client
	tolerance     time.Duration
	now           func() time.Time
}

func NewStripeGateway(secretKey, webhookSecret, baseURL string) (*StripeGateway, error) {
	if secretKey == "" {
		return nil, errors.New("stripe secret key empty")
	}
	if webhookSecret == "" {
		return nil, errors.New("stripe webhook secret empty")
	}
	if baseURL == "" {
		baseURL = "https://api.stripe.com"
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid stripe base url: %w", err)
	}
	return &StripeGateway{
		secretKey:     secretKey,
		webhookSecret: webhookSecret,
		baseURL:       strings.TrimRight(baseURL, "/"),
		client:        &http.Client{Timeout: 15 * time.Second},
		tolerance:     DefaultSignatureTolerance,
		now:           time.Now,
	}, nil
}

func (s *StripeGateway) Name() string { return "stripe" }

// CreateCheckout opens a one-off payment checkout session for a plan.
func (s *StripeGateway) CreateCheckout(ctx context.Context, req adapter.CheckoutRequest) (*adapter.CheckoutSession, error) {
	if !req.Amount.IsPositive() {
		return nil, errors.New("stripe: amount must be positive")
	}
	cents := req.Amount.Shift(2).Round(0).IntPart()

	data := url.Values{}
	data.Set("mode", "payment")
	data.Set("success_url", req.SuccessURL)
	data.Set("cancel_url", req.CancelURL)
	data.Set("line_items[0][quantity]", "1")
	data.Set("line_items[0][price_data][currency]", strings.ToLower(req.Currency))
	data.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(cents, 10))
	data.Set("line_items[0][price_data][product_data][name]", req.PlanName)
	if req.Email != "" {
		data.Set("customer_email", req.Email)
	}
	for k, v := range req.Metadata {
		data.Set("metadata["+k+"]", v)
	}

	var out adapter.CheckoutSession
	if err := s.post(ctx, "/v1/checkout/sessions", data, &out); err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	if out.ID == "" {
		return nil, errors.New("create checkout session: missing session id in response")
	}
	return &out, nil
}

// ParseWebhook verifies the Stripe-Signature header and extracts a completed
// checkout. Other event types are acknowledged with ok=false.
func (s *StripeGateway) ParseWebhook(payload []byte, signatureHeader string) (*adapter.PaymentCompleted, bool, error) {
	if err := VerifyStripeSignature(payload, signatureHeader, s.webhookSecret, s.tolerance, s.now()); err != nil {
		return nil, false, err
	}
	return ParseCheckoutCompleted(payload)
}

type stripeError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (s *StripeGateway) post(ctx context.Context, path string, data url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, strings.NewReader(data.Encode()))
	if err != nil {
		return err
	}
	req.SetBasicAuth(s.secretKey, "")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		var se stripeError
		if json.Unmarshal(body, &se) == nil && se.Error.Message != "" {
			return fmt.Errorf("stripe: %s (%s, http %d)", se.Error.Message, se.Error.Type, resp.StatusCode)
		}
		return fmt.Errorf("stripe: http %d", resp.StatusCode)
	}
	return json.Unmarshal(body, out)
}
