package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"fideliza/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*NoopPaymentGateway)(nil)

// NoopPaymentGateway is an in-memory gateway for local development and tests.
// Webhooks are accepted unsigned and parsed as Stripe checkout events.
type NoopPaymentGateway struct {
	mu       sync.Mutex
	seq      int64
	sessions map[string]adapter.CheckoutRequest
}

func NewNoopPaymentGateway() *NoopPaymentGateway {
	return &NoopPaymentGateway{
		sessions: make(map[string]adapter.CheckoutRequest),
	}
}

func (g *NoopPaymentGateway) Name() string { return "noop" }

func (g *NoopPaymentGateway) CreateCheckout(ctx context.Context, req adapter.CheckoutRequest) (*adapter.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	id := fmt.Sprintf("cs_noop_%d", g.seq)
	g.sessions[id] = req
	return &adapter.CheckoutSession{ID: id, URL: "https://example.test/checkout/" + id}, nil
}

// Session returns a previously created checkout request.
func (g *NoopPaymentGateway) Session(id string) (adapter.CheckoutRequest, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	req, ok := g.sessions[id]
	return req, ok
}

func (g *NoopPaymentGateway) ParseWebhook(payload []byte, _ string) (*adapter.PaymentCompleted, bool, error) {
	if !json.Valid(payload) {
		return nil, false, ErrInvalidPayload
	}
	return ParseCheckoutCompleted(payload)
}
