package adapter

import (
	"context"

	"github.com/shopspring/decimal"
)

// CheckoutRequest describes a hosted checkout for one plan purchase.
// Metadata travels with the session and comes back on the completion event.
type CheckoutRequest struct {
	PlanName   string
	Amount     decimal.Decimal
	Currency   string
	Email      string
	SuccessURL string
	CancelURL  string
	Metadata   map[string]string
}

// CheckoutSession is the processor-side session the customer is redirected to.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// PaymentCompleted is the provider-agnostic form of a "checkout completed"
// notification. AmountTotal is in minor units.
type PaymentCompleted struct {
	EventID        string
	TransactionID  string
	UserID         string
	SubscriptionID string
	PlaceID        string
	AmountTotal    int64
	Currency       string
	CustomerEmail  string
}

// PaymentGateway is the hex port for payment providers.
type PaymentGateway interface {
	Name() string

	// CreateCheckout opens a hosted checkout session.
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	// ParseWebhook authenticates a webhook delivery and extracts the completed
	// payment. ok is false for event types that carry no completed payment.
	ParseWebhook(payload []byte, signatureHeader string) (evt *PaymentCompleted, ok bool, err error)
}
