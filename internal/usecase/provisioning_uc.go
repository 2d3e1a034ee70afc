// File: internal/usecase/provisioning_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"fideliza/internal/domain"
	"fideliza/internal/domain/model"
	"fideliza/internal/domain/ports/adapter"
	"fideliza/internal/domain/ports/repository"
	"fideliza/internal/infra/logging"
	"fideliza/internal/infra/metrics"
)

// Compile-time check
var _ ProvisioningUseCase = (*provisioningUC)(nil)

// ProvisioningUseCase turns completed payments into user subscriptions.
type ProvisioningUseCase interface {
	// Provision creates the subscription for a completed payment. Replays of
	// the same transaction return the existing subscription with created=false.
	Provision(ctx context.Context, evt adapter.PaymentCompleted) (sub *model.UserSubscription, created bool, err error)
	// StartCheckout opens a hosted checkout for a plan.
	StartCheckout(ctx context.Context, actor domain.Actor, planID string) (*adapter.CheckoutSession, error)
}

// Localizer renders customer-facing messages in the configured language.
type Localizer interface {
	T(key string, args ...interface{}) string
}

type ProvisioningOptions struct {
	Currency   string
	SuccessURL string
	CancelURL  string
	Messages   Localizer
	Now        func() time.Time
}

type defaultMessages map[string]string

func (m defaultMessages) T(key string, args ...interface{}) string {
	format, ok := m[key]
	if !ok {
		return key
	}
	return fmt.Sprintf(format, args...)
}

var englishMessages = defaultMessages{
	"subscription_active_subject": "Your %s subscription is active",
	"subscription_active_body":    "Your %s subscription is active until %s. Amount paid: %s %s. Visits included: %d.",
}

type provisioningUC struct {
	plans    repository.SubscriptionPlanRepository
	subs     repository.SubscriptionRepository
	payments repository.PaymentRepository
	users    repository.UserRepository
	tm       repository.TransactionManager
	locker   repository.Locker
	gateway  adapter.PaymentGateway
	mailer   adapter.Mailer
	opts     ProvisioningOptions
	log      *zerolog.Logger
}

func NewProvisioningUseCase(
	plans repository.SubscriptionPlanRepository,
	subs repository.SubscriptionRepository,
	payments repository.PaymentRepository,
	users repository.UserRepository,
	tm repository.TransactionManager,
	locker repository.Locker,
	gateway adapter.PaymentGateway,
	mailer adapter.Mailer,
	opts ProvisioningOptions,
	logger *zerolog.Logger,
) *provisioningUC {
	if opts.Currency == "" {
		opts.Currency = "usd"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Messages == nil {
		opts.Messages = englishMessages
	}
	return &provisioningUC{
		plans:    plans,
		subs:     subs,
		payments: payments,
		users:    users,
		tm:       tm,
		locker:   locker,
		gateway:  gateway,
		mailer:   mailer,
		opts:     opts,
		log:      logger,
	}
}

func (u *provisioningUC) Provision(ctx context.Context, evt adapter.PaymentCompleted) (*model.UserSubscription, bool, error) {
	defer logging.TraceDuration(u.log, "ProvisioningUC.Provision")()

	if evt.TransactionID == "" || evt.UserID == "" || evt.SubscriptionID == "" || evt.AmountTotal < 0 {
		return nil, false, domain.ErrInvalidArgument
	}
	log := u.log.With().Str("transaction_id", evt.TransactionID).Str("event_id", evt.EventID).Logger()

	var (
		sub     *model.UserSubscription
		plan    *model.SubscriptionPlan
		payment *model.Payment
		created bool
	)
	err := u.tm.WithTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(ctx context.Context, tx repository.Tx) error {
		if err := u.locker.LockKey(ctx, tx, "payment:"+evt.TransactionID); err != nil {
			return err
		}

		existing, err := u.payments.FindByTransactionID(ctx, tx, evt.TransactionID)
		switch {
		case err == nil:
			sub, err = u.subs.FindByID(ctx, tx, existing.UserSubscriptionID)
			return err
		case !errors.Is(err, domain.ErrNotFound):
			return err
		}

		plan, err = u.plans.FindByID(ctx, tx, evt.SubscriptionID)
		if err != nil {
			return err
		}

		now := u.opts.Now()
		sub, err = model.NewUserSubscription(uuid.NewString(), evt.UserID, evt.PlaceID, plan, now)
		if err != nil {
			return err
		}
		if err := u.subs.Save(ctx, tx, sub); err != nil {
			return err
		}

		payment = &model.Payment{
			ID:                 uuid.NewString(),
			UserSubscriptionID: sub.ID,
			Provider:           u.gatewayName(),
			Amount:             model.AmountFromMinor(evt.AmountTotal),
			Currency:           u.currency(evt.Currency),
			Status:             model.PaymentStatusCompleted,
			TransactionID:      evt.TransactionID,
			EventID:            evt.EventID,
			CreatedAt:          now,
		}
		if err := u.payments.Insert(ctx, tx, payment); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		metrics.IncProvisioning("failed")
		log.Error().Err(err).Msg("provisioning failed")
		return nil, false, err
	}

	if !created {
		metrics.IncProvisioning("duplicate")
		log.Info().Str("user_subscription_id", sub.ID).Msg("payment already provisioned")
		return sub, false, nil
	}

	metrics.IncProvisioning("created")
	metrics.IncPayment(string(payment.Status))
	metrics.AddPaymentRevenue(payment.Currency, payment.Amount)
	log.Info().Str("user_subscription_id", sub.ID).Str("amount", payment.Amount.StringFixed(2)).Msg("subscription provisioned")

	u.sendConfirmation(ctx, evt, sub, plan, payment)
	return sub, true, nil
}

// sendConfirmation is best effort; failures are logged only.
func (u *provisioningUC) sendConfirmation(ctx context.Context, evt adapter.PaymentCompleted, sub *model.UserSubscription, plan *model.SubscriptionPlan, p *model.Payment) {
	if u.mailer == nil {
		return
	}
	to := evt.CustomerEmail
	if to == "" {
		user, err := u.users.FindByID(ctx, repository.NoTX, sub.UserID)
		if err != nil {
			u.log.Warn().Err(err).Str("user_id", sub.UserID).Msg("no recipient for confirmation")
			return
		}
		to = user.Email
	}

	body := u.opts.Messages.T("subscription_active_body",
		plan.Name, sub.EndDate.Format("2006-01-02"), p.Amount.StringFixed(2), strings.ToUpper(p.Currency), sub.RemainingVisits)
	msg := adapter.Message{
		To:      to,
		Subject: u.opts.Messages.T("subscription_active_subject", plan.Name),
		Text:    body,
	}
	if err := u.mailer.Send(ctx, msg); err != nil {
		u.log.Warn().Err(err).Str("user_subscription_id", sub.ID).Msg("confirmation email not sent")
	}
}

func (u *provisioningUC) StartCheckout(ctx context.Context, actor domain.Actor, planID string) (*adapter.CheckoutSession, error) {
	defer logging.TraceDuration(u.log, "ProvisioningUC.StartCheckout")()

	if actor.IsZero() {
		return nil, domain.ErrUnauthenticated
	}
	plan, err := u.plans.FindByID(ctx, repository.NoTX, planID)
	if err != nil {
		return nil, err
	}
	if !plan.Purchasable() {
		return nil, domain.ErrNotFound
	}

	sess, err := u.gateway.CreateCheckout(ctx, adapter.CheckoutRequest{
		PlanName:   plan.Name,
		Amount:     plan.Price,
		Currency:   u.opts.Currency,
		Email:      actor.Email,
		SuccessURL: u.opts.SuccessURL,
		CancelURL:  u.opts.CancelURL,
		Metadata: map[string]string{
			"userId":         actor.UserID,
			"subscriptionId": plan.ID,
			"placeId":        plan.PlaceID,
		},
	})
	if err != nil {
		metrics.IncPayment("checkout_failed")
		u.log.Error().Err(err).Str("plan_id", plan.ID).Msg("checkout session failed")
		return nil, err
	}
	metrics.IncPayment(string(model.PaymentStatusPending))
	return sess, nil
}

func (u *provisioningUC) gatewayName() string {
	if u.gateway == nil {
		return "unknown"
	}
	return u.gateway.Name()
}

func (u *provisioningUC) currency(c string) string {
	c = strings.ToLower(strings.TrimSpace(c))
	if c == "" {
		return strings.ToLower(u.opts.Currency)
	}
	return c
}
