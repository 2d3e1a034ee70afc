// File: internal/usecase/validation_uc.go
package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"fideliza/internal/domain"
	"fideliza/internal/domain/model"
	"fideliza/internal/domain/ports/repository"
	"fideliza/internal/infra/logging"
	"fideliza/internal/infra/metrics"
)

// Compile-time check
var _ ValidationUseCase = (*validationUC)(nil)

const (
	defaultValidationPage = 50
	maxValidationPage     = 200
)

// ValidationUseCase writes and reads the visit audit trail.
type ValidationUseCase interface {
	Record(ctx context.Context, actor domain.Actor, in RecordValidationInput) (*model.SubscriptionValidation, error)
	List(ctx context.Context, actor domain.Actor, q ValidationQuery) ([]*model.SubscriptionValidation, error)
}

// RecordValidationInput is the snapshot of a redeemed subscription the
// point of sale submits after a visit.
type RecordValidationInput struct {
	UserID             string                   `json:"userId"`
	UserSubscriptionID string                   `json:"userSubscriptionId"`
	SubscriptionID     string                   `json:"subscriptionId"`
	SubscriptionName   string                   `json:"subscriptionName"`
	RemainingVisits    int                      `json:"remainingVisits"`
	PlaceID            string                   `json:"placeId"`
	PlaceName          string                   `json:"placeName"`
	Status             model.SubscriptionStatus `json:"status"`
	StartDate          time.Time                `json:"startDate"`
	EndDate            time.Time                `json:"endDate"`
}

func (in RecordValidationInput) validate() error {
	for _, f := range []string{in.UserID, in.UserSubscriptionID, in.SubscriptionID, in.PlaceID} {
		if strings.TrimSpace(f) == "" {
			return domain.ErrInvalidArgument
		}
	}
	if in.RemainingVisits < 0 {
		return domain.ErrInvalidArgument
	}
	return nil
}

// ValidationQuery filters the audit trail of the actor's business.
type ValidationQuery struct {
	PlaceID string
	Since   *time.Time
	Limit   int
	Offset  int
}

type validationUC struct {
	validations repository.ValidationRepository
	places      repository.PlaceRepository
	now         func() time.Time
	log         *zerolog.Logger
}

func NewValidationUseCase(validations repository.ValidationRepository, places repository.PlaceRepository, now func() time.Time, logger *zerolog.Logger) *validationUC {
	if now == nil {
		now = time.Now
	}
	return &validationUC{validations: validations, places: places, now: now, log: logger}
}

func (u *validationUC) Record(ctx context.Context, actor domain.Actor, in RecordValidationInput) (*model.SubscriptionValidation, error) {
	defer logging.TraceDuration(u.log, "ValidationUC.Record")()

	if actor.IsZero() {
		return nil, domain.ErrUnauthenticated
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := u.now()
	status := in.Status
	if status == "" {
		status = model.SubscriptionStatusActive
	}
	v := &model.SubscriptionValidation{
		ID:                 ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		UserID:             in.UserID,
		UserSubscriptionID: in.UserSubscriptionID,
		SubscriptionID:     in.SubscriptionID,
		SubscriptionName:   in.SubscriptionName,
		RemainingVisits:    in.RemainingVisits,
		PlaceID:            in.PlaceID,
		PlaceName:          in.PlaceName,
		ValidatedBy:        actor.UserID,
		OwnerID:            actor.BusinessID(),
		Status:             status,
		StartDate:          in.StartDate,
		EndDate:            in.EndDate,
		CreatedAt:          now,
	}

	place, err := u.places.FindByID(ctx, repository.NoTX, in.PlaceID)
	switch {
	case err == nil:
		v.RestaurantID = place.RestaurantID
		if v.PlaceName == "" {
			v.PlaceName = place.Name
		}
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	if err := u.validations.Insert(ctx, repository.NoTX, v); err != nil {
		logging.With(ctx, u.log).Error().Err(err).Str("user_subscription_id", v.UserSubscriptionID).Msg("failed to record validation")
		return nil, err
	}
	metrics.IncValidationRecorded()
	return v, nil
}

func (u *validationUC) List(ctx context.Context, actor domain.Actor, q ValidationQuery) ([]*model.SubscriptionValidation, error) {
	defer logging.TraceDuration(u.log, "ValidationUC.List")()

	if err := requireBusiness(actor); err != nil {
		return nil, err
	}
	limit := q.Limit
	if limit <= 0 {
		limit = defaultValidationPage
	}
	if limit > maxValidationPage {
		limit = maxValidationPage
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	return u.validations.List(ctx, repository.NoTX, repository.ValidationFilter{
		OwnerID: actor.BusinessID(),
		PlaceID: q.PlaceID,
		Since:   q.Since,
		Limit:   limit,
		Offset:  offset,
	})
}
