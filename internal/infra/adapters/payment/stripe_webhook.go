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

	"fideliza/internal/domain/ports/adapter"
)

// DefaultSignatureTolerance bounds the age of a signed webhook delivery.
const DefaultSignatureTolerance = 5 * time.Minute

var (
	ErrMissingSignature = errors.New("webhook signature missing")
	ErrInvalidSignature = errors.New("webhook signature invalid")
	ErrStaleSignature   = errors.New("webhook timestamp outside tolerance")
	ErrInvalidPayload   = errors.New("webhook payload invalid")
)

// VerifyStripeSignature checks a "t=<unix>,v1=<hex>" header: v1 is
// HMAC-SHA256 over "<t>.<payload>" keyed by the endpoint secret.
func VerifyStripeSignature(payload []byte, header, secret string, tolerance time.Duration, now time.Time) error {
	if header == "" {
		return ErrMissingSignature
	}
	var ts int64
	var sigs []string
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			v, err := strconv.ParseInt(kv[1], 10, 64)
			if err != nil {
				return ErrInvalidSignature
			}
			ts = v
		case "v1":
			sigs = append(sigs, kv[1])
		}
	}
	if ts == 0 || len(sigs) == 0 {
		return ErrMissingSignature
	}
	if tolerance > 0 {
		age := now.Sub(time.Unix(ts, 0))
		if age > tolerance || age < -tolerance {
			return ErrStaleSignature
		}
	}
	expected := SignStripePayload(payload, secret, ts)
	for _, sig := range sigs {
		if hmac.Equal([]byte(expected), []byte(strings.ToLower(sig))) {
			return nil
		}
	}
	return ErrInvalidSignature
}

// SignStripePayload computes the v1 signature for a payload at ts.
func SignStripePayload(payload []byte, secret string, ts int64) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(strconv.FormatInt(ts, 10)))
	h.Write([]byte("."))
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}

type stripeEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object checkoutSessionObject `json:"object"`
	} `json:"data"`
}

type checkoutSessionObject struct {
	ID              string            `json:"id"`
	PaymentIntent   string            `json:"payment_intent"`
	PaymentStatus   string            `json:"payment_status"`
	AmountTotal     int64             `json:"amount_total"`
	Currency        string            `json:"currency"`
	CustomerEmail   string            `json:"customer_email"`
	Metadata        map[string]string `json:"metadata"`
	CustomerDetails struct {
		Email string `json:"email"`
	} `json:"customer_details"`
}

// ParseCheckoutCompleted extracts the completed payment from a
// checkout.session.completed event. The checkout session id is the
// transaction id used for idempotency.
func ParseCheckoutCompleted(payload []byte) (*adapter.PaymentCompleted, bool, error) {
	var evt stripeEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if evt.Type != "checkout.session.completed" {
		return nil, false, nil
	}
	obj := evt.Data.Object
	if obj.PaymentStatus != "" && obj.PaymentStatus != "paid" {
		return nil, false, nil
	}
	out := &adapter.PaymentCompleted{
		EventID:        evt.ID,
		TransactionID:  obj.ID,
		UserID:         obj.Metadata["userId"],
		SubscriptionID: obj.Metadata["subscriptionId"],
		PlaceID:        obj.Metadata["placeId"],
		AmountTotal:    obj.AmountTotal,
		Currency:       obj.Currency,
		CustomerEmail:  obj.CustomerEmail,
	}
	if out.CustomerEmail == "" {
		out.CustomerEmail = obj.CustomerDetails.Email
	}
	if out.TransactionID == "" || out.UserID == "" || out.SubscriptionID == "" {
		return nil, false, fmt.Errorf("%w: missing session id or metadata", ErrInvalidPayload)
	}
	return out, true, nil
}
