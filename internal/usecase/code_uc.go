// File: internal/usecase/code_uc.go
package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"fideliza/internal/domain"
	"fideliza/internal/domain/model"
	"fideliza/internal/domain/ports/repository"
	"fideliza/internal/infra/logging"
	"fideliza/internal/infra/metrics"
)

// Compile-time check
var _ CodeUseCase = (*codeUC)(nil)

// CodeUseCase issues and redeems single-use visit codes.
type CodeUseCase interface {
	// Generate issues a fresh code for a user subscription.
	Generate(ctx context.Context, actor domain.Actor, userSubscriptionID string) (*model.SubscriptionCode, error)
	// Redeem consumes a code and one visit of the subscription it belongs to.
	Redeem(ctx context.Context, actor domain.Actor, code string) (*model.RedemptionDetails, error)
	// Lookup runs the redemption checks without consuming anything.
	Lookup(ctx context.Context, actor domain.Actor, code string) (*model.RedemptionDetails, error)
}

// CodeOptions tunes code generation and redemption. Zero values fall back
// to defaults.
type CodeOptions struct {
	Length          int
	MaxLength       int
	MaxAttempts     int
	RejectExhausted bool

	Now  func() time.Time
	Draw DigitSource
}

func (o *CodeOptions) applyDefaults() {
	if o.Length <= 0 {
		o.Length = 8
	}
	if o.MaxLength < o.Length {
		o.MaxLength = o.Length
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 10
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Draw == nil {
		o.Draw = randomDigits
	}
}

type codeUC struct {
	codes  repository.SubscriptionCodeRepository
	subs   repository.SubscriptionRepository
	plans  repository.SubscriptionPlanRepository
	places repository.PlaceRepository
	users  repository.UserRepository
	tm     repository.TransactionManager
	opts   CodeOptions
	log    *zerolog.Logger
}

func NewCodeUseCase(
	codes repository.SubscriptionCodeRepository,
	subs repository.SubscriptionRepository,
	plans repository.SubscriptionPlanRepository,
	places repository.PlaceRepository,
	users repository.UserRepository,
	tm repository.TransactionManager,
	opts CodeOptions,
	logger *zerolog.Logger,
) *codeUC {
	opts.applyDefaults()
	return &codeUC{
		codes:  codes,
		subs:   subs,
		plans:  plans,
		places: places,
		users:  users,
		tm:     tm,
		opts:   opts,
		log:    logger,
	}
}

func (u *codeUC) Generate(ctx context.Context, actor domain.Actor, userSubscriptionID string) (*model.SubscriptionCode, error) {
	defer logging.TraceDuration(u.log, "CodeUC.Generate")()

	if actor.IsZero() {
		return nil, domain.ErrUnauthenticated
	}
	if strings.TrimSpace(userSubscriptionID) == "" {
		return nil, domain.ErrInvalidArgument
	}

	sub, err := u.subs.FindByID(ctx, repository.NoTX, userSubscriptionID)
	if err != nil {
		return nil, err
	}
	if err := u.authorizeHolder(ctx, actor, sub); err != nil {
		return nil, err
	}

	for length := u.opts.Length; length <= u.opts.MaxLength; length++ {
		for attempt := 0; attempt < u.opts.MaxAttempts; attempt++ {
			raw, err := u.opts.Draw(length)
			if err != nil {
				return nil, err
			}
			taken, err := u.codes.Exists(ctx, repository.NoTX, raw)
			if err != nil {
				return nil, err
			}
			if taken {
				metrics.IncCodeCollision()
				continue
			}

			code := model.NewSubscriptionCode(uuid.NewString(), raw, sub.ID, u.opts.Now())
			if err := u.codes.Create(ctx, repository.NoTX, code); err != nil {
				if errors.Is(err, domain.ErrAlreadyExists) {
					// lost the race against a concurrent insert
					metrics.IncCodeCollision()
					continue
				}
				return nil, err
			}
			metrics.IncCodeGenerated()
			return code, nil
		}
		u.log.Warn().Int("length", length).Int("attempts", u.opts.MaxAttempts).Msg("code space crowded, widening")
	}

	u.log.Error().Str("user_subscription_id", sub.ID).Msg("code generation exhausted")
	return nil, domain.ErrCodeSpaceExhausted
}

// authorizeHolder lets customers issue codes only for their own
// subscriptions and business actors only for subscriptions at their places.
func (u *codeUC) authorizeHolder(ctx context.Context, actor domain.Actor, sub *model.UserSubscription) error {
	switch {
	case actor.Role == domain.RoleAdmin:
		return nil
	case actor.IsBusiness():
		place, err := u.places.FindByID(ctx, repository.NoTX, sub.PlaceID)
		if err != nil {
			return err
		}
		if !place.OwnedBy(actor.BusinessID()) {
			return domain.ErrNotFound
		}
		return nil
	default:
		if sub.UserID != actor.UserID {
			return domain.ErrNotFound
		}
		return nil
	}
}

func (u *codeUC) Redeem(ctx context.Context, actor domain.Actor, code string) (*model.RedemptionDetails, error) {
	defer logging.TraceDuration(u.log, "CodeUC.Redeem")()

	if err := requireBusiness(actor); err != nil {
		return nil, err
	}

	var out *model.RedemptionDetails
	err := u.tm.WithTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(ctx context.Context, tx repository.Tx) error {
		c, sub, place, err := u.inspect(ctx, tx, actor, code)
		if err != nil {
			return err
		}

		won, err := u.codes.MarkUsed(ctx, tx, c.ID)
		if err != nil {
			return err
		}
		if !won {
			return domain.ErrCodeAlreadyUsed
		}

		remaining, err := u.subs.ConsumeVisit(ctx, tx, sub.ID)
		if err != nil {
			return err
		}
		sub.RemainingVisits = remaining

		out, err = u.details(ctx, tx, sub, place)
		return err
	})

	metrics.IncRedemption(redemptionResult(err))
	if err != nil {
		logging.With(ctx, u.log).Info().Err(err).Msg("redemption rejected")
		return nil, err
	}
	return out, nil
}

func (u *codeUC) Lookup(ctx context.Context, actor domain.Actor, code string) (*model.RedemptionDetails, error) {
	defer logging.TraceDuration(u.log, "CodeUC.Lookup")()

	if err := requireBusiness(actor); err != nil {
		return nil, err
	}
	_, sub, place, err := u.inspect(ctx, repository.NoTX, actor, code)
	if err != nil {
		return nil, err
	}
	return u.details(ctx, repository.NoTX, sub, place)
}

// inspect applies the redemption checks in order; the first failure wins.
func (u *codeUC) inspect(ctx context.Context, tx repository.Tx, actor domain.Actor, raw string) (*model.SubscriptionCode, *model.UserSubscription, *model.Place, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil, nil, domain.ErrInvalidCode
	}

	c, err := u.codes.FindByCode(ctx, tx, raw)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, nil, domain.ErrInvalidCode
		}
		return nil, nil, nil, err
	}
	if c.IsUsed {
		return nil, nil, nil, domain.ErrCodeAlreadyUsed
	}
	if c.Expired(u.opts.Now()) {
		return nil, nil, nil, domain.ErrCodeExpired
	}

	sub, err := u.subs.FindByID(ctx, tx, c.UserSubscriptionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, nil, domain.ErrSubscriptionNotFound
		}
		return nil, nil, nil, err
	}
	if !sub.Redeemable() {
		return nil, nil, nil, domain.ErrSubscriptionNotActive
	}
	if u.opts.RejectExhausted && sub.RemainingVisits <= 0 {
		return nil, nil, nil, domain.ErrNoVisitsRemaining
	}

	place, err := u.places.FindByID(ctx, tx, sub.PlaceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, nil, domain.ErrInvalidRestaurant
		}
		return nil, nil, nil, err
	}
	if !place.OwnedBy(actor.BusinessID()) {
		return nil, nil, nil, domain.ErrInvalidRestaurant
	}
	return c, sub, place, nil
}

func (u *codeUC) details(ctx context.Context, tx repository.Tx, sub *model.UserSubscription, place *model.Place) (*model.RedemptionDetails, error) {
	d := &model.RedemptionDetails{
		UserSubscriptionID: sub.ID,
		SubscriptionID:     sub.SubscriptionID,
		UserID:             sub.UserID,
		RemainingVisits:    sub.RemainingVisits,
		PlaceID:            place.ID,
		PlaceName:          place.Name,
		StartDate:          sub.StartDate,
		EndDate:            sub.EndDate,
		Status:             sub.Status,
	}

	plan, err := u.plans.FindByID(ctx, tx, sub.SubscriptionID)
	switch {
	case err == nil:
		d.SubscriptionName = plan.Name
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	user, err := u.users.FindByID(ctx, tx, sub.UserID)
	switch {
	case err == nil:
		d.UserName = user.DisplayName()
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}
	return d, nil
}

func requireBusiness(actor domain.Actor) error {
	if actor.IsZero() {
		return domain.ErrUnauthenticated
	}
	if !actor.IsBusiness() {
		return domain.ErrForbidden
	}
	return nil
}

func redemptionResult(err error) string {
	switch {
	case err == nil:
		return "accepted"
	case errors.Is(err, domain.ErrInvalidCode):
		return "invalid"
	case errors.Is(err, domain.ErrCodeAlreadyUsed):
		return "used"
	case errors.Is(err, domain.ErrCodeExpired):
		return "expired"
	case errors.Is(err, domain.ErrSubscriptionNotActive), errors.Is(err, domain.ErrNoVisitsRemaining):
		return "inactive"
	case errors.Is(err, domain.ErrInvalidRestaurant):
		return "wrong_restaurant"
	default:
		return "error"
	}
}
