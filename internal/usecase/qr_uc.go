// File: internal/usecase/qr_uc.go
package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"fideliza/internal/domain"
	"fideliza/internal/domain/model"
	"fideliza/internal/domain/ports/repository"
	"fideliza/internal/infra/logging"
	"fideliza/internal/infra/metrics"
)

// Compile-time check
var _ QRUseCase = (*qrUC)(nil)

const (
	DefaultQRMaxAge    = 5 * time.Minute
	DefaultQRMaxFuture = time.Minute
)

// QRUseCase issues and verifies the QR payload shown on a customer device.
type QRUseCase interface {
	Verify(ctx context.Context, actor domain.Actor, p QRPayload) (VerifyResult, error)
	GenerateQR(ctx context.Context, actor domain.Actor, userSubscriptionID string) (*QRPayload, error)
}

// QRPayload is what the customer's QR code encodes.
type QRPayload struct {
	SubscriptionID     string
	UserSubscriptionID string
	Timestamp          time.Time
}

// VerifyResult is the scan outcome. Reason is set when Valid is false.
type VerifyResult struct {
	Valid  bool
	Reason string
}

// QROptions bounds how far a payload timestamp may drift from now.
type QROptions struct {
	MaxAge    time.Duration
	MaxFuture time.Duration
	Now       func() time.Time
}

type qrUC struct {
	plans  repository.SubscriptionPlanRepository
	subs   repository.SubscriptionRepository
	places repository.PlaceRepository
	opts   QROptions
	log    *zerolog.Logger
}

func NewQRUseCase(plans repository.SubscriptionPlanRepository, subs repository.SubscriptionRepository, places repository.PlaceRepository, opts QROptions, logger *zerolog.Logger) *qrUC {
	if opts.MaxAge <= 0 {
		opts.MaxAge = DefaultQRMaxAge
	}
	if opts.MaxFuture <= 0 {
		opts.MaxFuture = DefaultQRMaxFuture
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &qrUC{plans: plans, subs: subs, places: places, opts: opts, log: logger}
}

func (u *qrUC) Verify(ctx context.Context, actor domain.Actor, p QRPayload) (VerifyResult, error) {
	defer logging.TraceDuration(u.log, "QRUC.Verify")()

	if err := requireBusiness(actor); err != nil {
		return VerifyResult{}, err
	}
	err := u.verify(ctx, actor, p)
	metrics.IncQRVerification(qrResult(err))
	if err != nil {
		return VerifyResult{Valid: false, Reason: RejectionReason(err)}, err
	}
	return VerifyResult{Valid: true}, nil
}

func (u *qrUC) verify(ctx context.Context, actor domain.Actor, p QRPayload) error {
	if strings.TrimSpace(p.SubscriptionID) == "" || p.Timestamp.IsZero() {
		return domain.ErrInvalidArgument
	}

	now := u.opts.Now()
	age := now.Sub(p.Timestamp)
	if age > u.opts.MaxAge || -age > u.opts.MaxFuture {
		return domain.ErrQRExpired
	}

	plan, err := u.plans.FindByID(ctx, repository.NoTX, p.SubscriptionID)
	if err != nil {
		return notFoundAs(err, domain.ErrSubscriptionNotFound)
	}

	place, err := u.places.FindByID(ctx, repository.NoTX, plan.PlaceID)
	if err != nil {
		return notFoundAs(err, domain.ErrInvalidRestaurant)
	}
	if !place.OwnedBy(actor.BusinessID()) {
		return domain.ErrInvalidRestaurant
	}

	var sub *model.UserSubscription
	if p.UserSubscriptionID != "" {
		sub, err = u.subs.FindByID(ctx, repository.NoTX, p.UserSubscriptionID)
		if err == nil && sub.SubscriptionID != plan.ID {
			err = domain.ErrNotFound
		}
	} else {
		sub, err = u.subs.FindFirstByPlan(ctx, repository.NoTX, plan.ID)
	}
	if err != nil {
		return notFoundAs(err, domain.ErrSubscriptionNotFound)
	}
	if sub.Status != model.SubscriptionStatusActive {
		return domain.ErrSubscriptionNotActive
	}

	if err := u.subs.TouchLastPayment(ctx, repository.NoTX, sub.ID, now); err != nil {
		u.log.Error().Err(err).Str("user_subscription_id", sub.ID).Msg("failed to stamp last payment")
		return err
	}
	return nil
}

func (u *qrUC) GenerateQR(ctx context.Context, actor domain.Actor, userSubscriptionID string) (*QRPayload, error) {
	defer logging.TraceDuration(u.log, "QRUC.GenerateQR")()

	if actor.IsZero() {
		return nil, domain.ErrUnauthenticated
	}
	sub, err := u.subs.FindByID(ctx, repository.NoTX, userSubscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.UserID != actor.UserID {
		return nil, domain.ErrNotFound
	}
	if !sub.Redeemable() {
		return nil, domain.ErrSubscriptionNotActive
	}
	return &QRPayload{
		SubscriptionID:     sub.SubscriptionID,
		UserSubscriptionID: sub.ID,
		Timestamp:          u.opts.Now(),
	}, nil
}

// RejectionReason is the user-facing message for a rejected redemption or scan.
func RejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCode):
		return "Invalid code"
	case errors.Is(err, domain.ErrCodeAlreadyUsed):
		return "Code already used"
	case errors.Is(err, domain.ErrCodeExpired):
		return "Code expired"
	case errors.Is(err, domain.ErrQRExpired):
		return "QR code expired"
	case errors.Is(err, domain.ErrInvalidRestaurant):
		return "Invalid restaurant"
	case errors.Is(err, domain.ErrSubscriptionNotActive):
		return "Subscription not active"
	case errors.Is(err, domain.ErrNoVisitsRemaining):
		return "No visits remaining"
	case errors.Is(err, domain.ErrSubscriptionNotFound):
		return "Subscription not found"
	case errors.Is(err, domain.ErrInvalidArgument):
		return "Invalid request"
	default:
		return "Internal error"
	}
}

func notFoundAs(err, as error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return as
	}
	return err
}

func qrResult(err error) string {
	switch {
	case err == nil:
		return "valid"
	case errors.Is(err, domain.ErrQRExpired):
		return "expired"
	case errors.Is(err, domain.ErrSubscriptionNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidRestaurant):
		return "wrong_restaurant"
	case errors.Is(err, domain.ErrSubscriptionNotActive):
		return "inactive"
	default:
		return "error"
	}
}
