//go:build !integration

package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fideliza/internal/domain/ports/adapter"
)

const completedEvent = `{
  "id": "evt_1",
  "type": "checkout.session.completed",
  "data": {"object": {
    "id": "cs_test_1",
    "payment_status": "paid",
    "amount_total": 2500,
    "currency": "usd",
    "customer_details": {"email": "ana@example.com"},
    "metadata": {"userId": "user-1", "subscriptionId": "plan-1", "placeId": "place-1"}
  }}
}`

func TestVerifyStripeSignature(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	payload := []byte(completedEvent)
	sig := SignStripePayload(payload, "whsec_test", now.Unix())

	t.Run("valid signature", func(t *testing.T) {
		header := fmt.Sprintf("t=%d,v1=%s", now.Unix(), sig)
		if err := VerifyStripeSignature(payload, header, "whsec_test", DefaultSignatureTolerance, now); err != nil {
			t.Fatalf("expected valid signature, got %v", err)
		}
	})

	t.Run("any of several v1 signatures may match", func(t *testing.T) {
		header := fmt.Sprintf("t=%d,v1=deadbeef,v1=%s", now.Unix(), sig)
		if err := VerifyStripeSignature(payload, header, "whsec_test", DefaultSignatureTolerance, now); err != nil {
			t.Fatalf("expected valid signature, got %v", err)
		}
	})

	cases := []struct {
		name   string
		header string
		now    time.Time
		want   error
	}{
		{"missing header", "", now, ErrMissingSignature},
		{"no v1", fmt.Sprintf("t=%d", now.Unix()), now, ErrMissingSignature},
		{"wrong secret", fmt.Sprintf("t=%d,v1=%s", now.Unix(), SignStripePayload(payload, "other", now.Unix())), now, ErrInvalidSignature},
		{"stale", fmt.Sprintf("t=%d,v1=%s", now.Unix(), sig), now.Add(6 * time.Minute), ErrStaleSignature},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := VerifyStripeSignature(payload, tc.header, "whsec_test", DefaultSignatureTolerance, tc.now)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestParseCheckoutCompleted(t *testing.T) {
	evt, ok, err := ParseCheckoutCompleted([]byte(completedEvent))
	if err != nil || !ok {
		t.Fatalf("expected completed payment, got ok=%v err=%v", ok, err)
	}
	if evt.TransactionID != "cs_test_1" || evt.AmountTotal != 2500 || evt.UserID != "user-1" ||
		evt.SubscriptionID != "plan-1" || evt.PlaceID != "place-1" || evt.CustomerEmail != "ana@example.com" {
		t.Errorf("unexpected event: %+v", evt)
	}

	_, ok, err = ParseCheckoutCompleted([]byte(`{"id":"evt_2","type":"invoice.paid","data":{"object":{}}}`))
	if err != nil || ok {
		t.Errorf("expected other event types to be ignored, got ok=%v err=%v", ok, err)
	}

	_, _, err = ParseCheckoutCompleted([]byte(`{"id":"evt_3","type":"checkout.session.completed","data":{"object":{"id":"cs_x"}}}`))
	if !errors.Is(err, ErrInvalidPayload) {
		t.Errorf("expected ErrInvalidPayload for missing metadata, got %v", err)
	}
}

func TestStripeGateway_CreateCheckout(t *testing.T) {
	var form map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/checkout/sessions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if user, _, ok := r.BasicAuth(); !ok || user != "sk_test" {
			t.Errorf("expected basic auth with secret key")
		}
		_ = r.ParseForm()
		form = map[string]string{}
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}
		_, _ = w.Write([]byte(`{"id":"cs_test_9","url":"https://checkout.stripe.com/c/cs_test_9"}`))
	}))
	defer srv.Close()

	gw, err := NewStripeGateway("sk_test", "whsec_test", srv.URL)
	if err != nil {
		t.Fatalf("new gateway: %v", err)
	}
	sess, err := gw.CreateCheckout(context.Background(), adapter.CheckoutRequest{
		PlanName: "Lunch Club", Amount: decimal.RequireFromString("25.00"), Currency: "USD",
		SuccessURL: "https://app/ok", CancelURL: "https://app/cancel",
		Metadata: map[string]string{"userId": "user-1", "subscriptionId": "plan-1", "placeId": "place-1"},
	})
	if err != nil {
		t.Fatalf("create checkout: %v", err)
	}
	if sess.ID != "cs_test_9" {
		t.Errorf("unexpected session %+v", sess)
	}
	if form["line_items[0][price_data][unit_amount]"] != "2500" || form["line_items[0][price_data][currency]"] != "usd" {
		t.Errorf("unexpected amount fields: %v", form)
	}
	if form["metadata[subscriptionId]"] != "plan-1" || form["mode"] != "payment" {
		t.Errorf("unexpected metadata fields: %v", form)
	}
}

func TestStripeGateway_CreateCheckoutError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"No such price"}}`))
	}))
	defer srv.Close()

	gw, _ := NewStripeGateway("sk_test", "whsec_test", srv.URL)
	_, err := gw.CreateCheckout(context.Background(), adapter.CheckoutRequest{Amount: decimal.NewFromInt(1), Currency: "usd"})
	if err == nil {
		t.Fatal("expected an error from a 400 response")
	}
}

func TestStripeGateway_ParseWebhook(t *testing.T) {
	gw, _ := NewStripeGateway("sk_test", "whsec_test", "")
	fixed := time.Unix(1_700_000_000, 0)
	gw.now = func() time.Time { return fixed }
	payload := []byte(completedEvent)
	header := fmt.Sprintf("t=%d,v1=%s", fixed.Unix(), SignStripePayload(payload, "whsec_test", fixed.Unix()))

	evt, ok, err := gw.ParseWebhook(payload, header)
	if err != nil || !ok || evt.TransactionID != "cs_test_1" {
		t.Fatalf("expected parsed event, got %+v ok=%v err=%v", evt, ok, err)
	}
	if _, _, err := gw.ParseWebhook(payload, "t=1,v1=bad"); err == nil {
		t.Fatal("expected signature failure")
	}
}
