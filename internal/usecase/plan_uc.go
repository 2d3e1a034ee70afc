// File: internal/usecase/plan_uc.go
package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"fideliza/internal/domain"
	"fideliza/internal/domain/model"
	"fideliza/internal/domain/ports/repository"
	"fideliza/internal/infra/logging"
)

// Compile-time check
var _ PlanUseCase = (*planUC)(nil)

// PlanUseCase manages the plans a business sells at its places.
type PlanUseCase interface {
	Create(ctx context.Context, actor domain.Actor, in PlanInput) (*model.SubscriptionPlan, error)
	Update(ctx context.Context, actor domain.Actor, id string, in PlanInput) (*model.SubscriptionPlan, error)
	// Delete deactivates a plan; existing subscriptions keep running.
	Delete(ctx context.Context, actor domain.Actor, id string) error
	Get(ctx context.Context, id string) (*model.SubscriptionPlan, error)
	// ListByPlace returns the purchasable plans of a place.
	ListByPlace(ctx context.Context, placeID string) ([]*model.SubscriptionPlan, error)
}

type PlanInput struct {
	PlaceID  string          `json:"placeId"`
	Name     string          `json:"name"`
	Benefits string          `json:"benefits"`
	Price    decimal.Decimal `json:"price"`
	Visits   int             `json:"visits"`
}

type planUC struct {
	plans  repository.SubscriptionPlanRepository
	places repository.PlaceRepository
	log    *zerolog.Logger
}

func NewPlanUseCase(plans repository.SubscriptionPlanRepository, places repository.PlaceRepository, logger *zerolog.Logger) *planUC {
	return &planUC{plans: plans, places: places, log: logger}
}

func (u *planUC) Create(ctx context.Context, actor domain.Actor, in PlanInput) (*model.SubscriptionPlan, error) {
	defer logging.TraceDuration(u.log, "PlanUC.Create")()

	if err := u.authorizePlace(ctx, actor, in.PlaceID); err != nil {
		return nil, err
	}
	plan, err := model.NewSubscriptionPlan(uuid.NewString(), in.PlaceID, in.Name, in.Benefits, in.Price, in.Visits)
	if err != nil {
		return nil, err
	}
	if err := u.plans.Save(ctx, repository.NoTX, plan); err != nil {
		return nil, err
	}
	logging.With(ctx, u.log).Info().Str("plan_id", plan.ID).Str("place_id", plan.PlaceID).Msg("plan created")
	return plan, nil
}

func (u *planUC) Update(ctx context.Context, actor domain.Actor, id string, in PlanInput) (*model.SubscriptionPlan, error) {
	defer logging.TraceDuration(u.log, "PlanUC.Update")()

	existing, err := u.plans.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		return nil, err
	}
	if err := u.authorizePlace(ctx, actor, existing.PlaceID); err != nil {
		return nil, err
	}
	if in.PlaceID != "" && in.PlaceID != existing.PlaceID {
		return nil, domain.ErrInvalidArgument
	}

	updated, err := model.NewSubscriptionPlan(existing.ID, existing.PlaceID, in.Name, in.Benefits, in.Price, in.Visits)
	if err != nil {
		return nil, err
	}
	updated.IsActive = existing.IsActive
	updated.Status = existing.Status
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now()
	if err := u.plans.Save(ctx, repository.NoTX, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (u *planUC) Delete(ctx context.Context, actor domain.Actor, id string) error {
	defer logging.TraceDuration(u.log, "PlanUC.Delete")()

	existing, err := u.plans.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		return err
	}
	if err := u.authorizePlace(ctx, actor, existing.PlaceID); err != nil {
		return err
	}
	return u.plans.Delete(ctx, repository.NoTX, id)
}

func (u *planUC) Get(ctx context.Context, id string) (*model.SubscriptionPlan, error) {
	return u.plans.FindByID(ctx, repository.NoTX, id)
}

func (u *planUC) ListByPlace(ctx context.Context, placeID string) ([]*model.SubscriptionPlan, error) {
	defer logging.TraceDuration(u.log, "PlanUC.ListByPlace")()

	if strings.TrimSpace(placeID) == "" {
		return nil, domain.ErrInvalidArgument
	}
	return u.plans.ListByPlace(ctx, repository.NoTX, placeID, true)
}

// authorizePlace allows owners of the place and admins. Staff may redeem
// but not change what is sold.
func (u *planUC) authorizePlace(ctx context.Context, actor domain.Actor, placeID string) error {
	if actor.IsZero() {
		return domain.ErrUnauthenticated
	}
	if actor.Role != domain.RoleOwner && actor.Role != domain.RoleAdmin {
		return domain.ErrForbidden
	}
	if strings.TrimSpace(placeID) == "" {
		return domain.ErrInvalidArgument
	}
	place, err := u.places.FindByID(ctx, repository.NoTX, placeID)
	if err != nil {
		return err
	}
	if actor.Role != domain.RoleAdmin && !place.OwnedBy(actor.BusinessID()) {
		return domain.ErrForbidden
	}
	return nil
}
