package repository

import (
	"context"
	"time"

	"fideliza/internal/domain/model"
)

// -----------------------------
// User subscriptions
// -----------------------------

type SubscriptionRepository interface {
	Save(ctx context.Context, tx Tx, sub *model.UserSubscription) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.UserSubscription, error)
	// FindFirstByPlan returns the oldest subscriber record of a plan.
	FindFirstByPlan(ctx context.Context, tx Tx, planID string) (*model.UserSubscription, error)
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.UserSubscription, error)
	// ConsumeVisit decrements remaining visits (floored at zero) and returns the new value.
	ConsumeVisit(ctx context.Context, tx Tx, id string) (int, error)
	TouchLastPayment(ctx context.Context, tx Tx, id string, at time.Time) error
	UpdateStatus(ctx context.Context, tx Tx, id string, status model.SubscriptionStatus, isActive bool) error
	// ExpireDue moves ACTIVE subscriptions whose end date is before `now` to EXPIRED.
	ExpireDue(ctx context.Context, tx Tx, now time.Time) (int, error)
	CountByStatus(ctx context.Context, tx Tx) (map[model.SubscriptionStatus]int, error)
}
