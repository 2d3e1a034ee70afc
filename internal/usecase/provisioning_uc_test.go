//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fideliza/internal/domain"
	"fideliza/internal/domain/model"
	"fideliza/internal/domain/ports/adapter"
	"fideliza/internal/domain/ports/repository"
	"fideliza/internal/infra/i18n"
	"fideliza/internal/usecase"
)

type provisioningDeps struct {
	*world
	locker  *MockLocker
	gateway *MockPaymentGateway
	mailer  *MockMailer
	uc      usecase.ProvisioningUseCase
}

func newProvisioning() *provisioningDeps {
	w := newWorld()
	d := &provisioningDeps{
		world:   w,
		locker:  &MockLocker{},
		gateway: &MockPaymentGateway{},
		mailer:  &MockMailer{},
	}
	d.uc = usecase.NewProvisioningUseCase(w.plans, w.subs, w.payments, w.users, w.tm, d.locker, d.gateway, d.mailer,
		usecase.ProvisioningOptions{
			Currency:   "usd",
			SuccessURL: "https://app.example/ok",
			CancelURL:  "https://app.example/cancel",
			Now:        fixedClock(),
		}, newTestLogger())
	return d
}

func completed() adapter.PaymentCompleted {
	return adapter.PaymentCompleted{
		EventID:        "evt_1",
		TransactionID:  "cs_test_a1",
		UserID:         "cust-1",
		SubscriptionID: "plan-1",
		PlaceID:        "place-1",
		AmountTotal:    2500,
		Currency:       "USD",
	}
}

func TestProvisioningUseCase_Provision(t *testing.T) {
	ctx := context.Background()

	t.Run("creates subscription and payment", func(t *testing.T) {
		d := newProvisioning()

		sub, created, err := d.uc.Provision(ctx, completed())
		if err != nil {
			t.Fatalf("Provision returned error: %v", err)
		}
		if !created {
			t.Fatal("expected created=true")
		}
		if !sub.StartDate.Equal(testNow) || !sub.EndDate.Equal(testNow.AddDate(0, 1, 0)) {
			t.Errorf("unexpected period %v - %v", sub.StartDate, sub.EndDate)
		}
		if sub.Status != model.SubscriptionStatusActive || !sub.IsActive || sub.RemainingVisits != 4 {
			t.Errorf("unexpected subscription %+v", sub)
		}

		p, err := d.payments.FindByTransactionID(ctx, repository.NoTX, "cs_test_a1")
		if err != nil {
			t.Fatalf("payment not stored: %v", err)
		}
		if !p.Amount.Equal(decimal.RequireFromString("25.00")) {
			t.Errorf("expected amount 25.00, got %s", p.Amount)
		}
		if p.Status != model.PaymentStatusCompleted || p.Provider != "mock" || p.UserSubscriptionID != sub.ID {
			t.Errorf("unexpected payment %+v", p)
		}
		if len(d.locker.Keys) != 1 || d.locker.Keys[0] != "payment:cs_test_a1" {
			t.Errorf("expected a lock on the transaction id, got %v", d.locker.Keys)
		}
		if d.mailer.Count() != 1 || d.mailer.Sent[0].To != "ana@example.com" {
			t.Errorf("expected one confirmation to the customer, got %+v", d.mailer.Sent)
		}
	})

	t.Run("period end uses calendar months", func(t *testing.T) {
		d := newProvisioning()
		jan31 := time.Date(2026, 1, 31, 9, 0, 0, 0, time.UTC)
		d.uc = usecase.NewProvisioningUseCase(d.plans, d.subs, d.payments, d.users, d.tm, d.locker, d.gateway, nil,
			usecase.ProvisioningOptions{Now: func() time.Time { return jan31 }}, newTestLogger())

		sub, _, err := d.uc.Provision(ctx, completed())
		if err != nil {
			t.Fatalf("Provision returned error: %v", err)
		}
		if !sub.EndDate.Equal(jan31.AddDate(0, 1, 0)) {
			t.Errorf("expected %v, got %v", jan31.AddDate(0, 1, 0), sub.EndDate)
		}
	})

	t.Run("replayed transaction is idempotent", func(t *testing.T) {
		d := newProvisioning()
		first, _, err := d.uc.Provision(ctx, completed())
		if err != nil {
			t.Fatalf("first Provision: %v", err)
		}
		subsBefore := d.subs.Len()

		again, created, err := d.uc.Provision(ctx, completed())
		if err != nil {
			t.Fatalf("replay returned error: %v", err)
		}
		if created {
			t.Error("replay must report created=false")
		}
		if again.ID != first.ID {
			t.Errorf("expected the original subscription %s, got %s", first.ID, again.ID)
		}
		if d.subs.Len() != subsBefore || d.payments.Len() != 1 {
			t.Errorf("replay must not insert rows: subs %d->%d payments %d", subsBefore, d.subs.Len(), d.payments.Len())
		}
		if d.mailer.Count() != 1 {
			t.Errorf("replay must not resend email, sent %d", d.mailer.Count())
		}
	})

	t.Run("unknown plan", func(t *testing.T) {
		d := newProvisioning()
		evt := completed()
		evt.SubscriptionID = "missing"

		if _, _, err := d.uc.Provision(ctx, evt); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if d.payments.Len() != 0 {
			t.Error("no payment may be stored")
		}
	})

	t.Run("missing metadata", func(t *testing.T) {
		d := newProvisioning()
		evt := completed()
		evt.UserID = ""

		if _, _, err := d.uc.Provision(ctx, evt); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("mail failure does not fail provisioning", func(t *testing.T) {
		d := newProvisioning()
		d.mailer.Err = errors.New("ses down")

		if _, created, err := d.uc.Provision(ctx, completed()); err != nil || !created {
			t.Fatalf("expected success despite mail failure, got created=%v err=%v", created, err)
		}
	})

	t.Run("lock failure aborts", func(t *testing.T) {
		d := newProvisioning()
		d.locker.Err = errors.New("lock timeout")

		if _, _, err := d.uc.Provision(ctx, completed()); err == nil {
			t.Fatal("expected error")
		}
		if d.subs.Len() != 1 {
			t.Error("no subscription may be created")
		}
	})
}

func TestProvisioningUseCase_StartCheckout(t *testing.T) {
	ctx := context.Background()
	d := newProvisioning()

	sess, err := d.uc.StartCheckout(ctx, d.customer, "plan-1")
	if err != nil {
		t.Fatalf("StartCheckout returned error: %v", err)
	}
	if sess.URL == "" {
		t.Error("expected a redirect URL")
	}
	req := d.gateway.Requests[0]
	if req.Metadata["userId"] != "cust-1" || req.Metadata["subscriptionId"] != "plan-1" || req.Metadata["placeId"] != "place-1" {
		t.Errorf("unexpected metadata %v", req.Metadata)
	}
	if req.Email != "ana@example.com" || req.Currency != "usd" {
		t.Errorf("unexpected request %+v", req)
	}

	_ = d.plans.Delete(ctx, repository.NoTX, "plan-1")
	if _, err := d.uc.StartCheckout(ctx, d.customer, "plan-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("inactive plan: expected ErrNotFound, got %v", err)
	}
	if _, err := d.uc.StartCheckout(ctx, domain.Actor{}, "plan-1"); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestProvisioningUseCase_LocalizedConfirmation(t *testing.T) {
	tr, err := i18n.NewTranslator(i18n.LocalesFS, "es")
	if err != nil {
		t.Fatalf("translator: %v", err)
	}
	w := newWorld()
	mailer := &MockMailer{}
	uc := usecase.NewProvisioningUseCase(w.plans, w.subs, w.payments, w.users, w.tm, &MockLocker{}, &MockPaymentGateway{}, mailer,
		usecase.ProvisioningOptions{Messages: tr, Now: fixedClock()}, newTestLogger())

	evt := completed()
	evt.CustomerEmail = "ana@example.com"
	if _, _, err := uc.Provision(context.Background(), evt); err != nil {
		t.Fatalf("provision: %v", err)
	}
	if mailer.Count() != 1 {
		t.Fatalf("expected one email, got %d", mailer.Count())
	}
	msg := mailer.Sent[0]
	if msg.Subject != "Tu suscripción Coffee Club está activa" {
		t.Errorf("unexpected subject %q", msg.Subject)
	}
	if !strings.Contains(msg.Text, "25.00 USD") || !strings.Contains(msg.Text, "Visitas incluidas: 4") {
		t.Errorf("unexpected body %q", msg.Text)
	}
}
