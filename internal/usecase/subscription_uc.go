// File: internal/usecase/subscription_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"fideliza/internal/domain"
	"fideliza/internal/domain/model"
	"fideliza/internal/domain/ports/repository"
	"fideliza/internal/infra/logging"
)

// Compile-time check
var _ SubscriptionUseCase = (*subscriptionUC)(nil)

// SubscriptionUseCase covers the customer side of the subscription lifecycle
// and the periodic expiry sweep.
type SubscriptionUseCase interface {
	ListMine(ctx context.Context, actor domain.Actor) ([]*model.UserSubscription, error)
	Cancel(ctx context.Context, actor domain.Actor, id string) (*model.UserSubscription, error)
	ExpireDue(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context) (map[model.SubscriptionStatus]int, error)
}

type subscriptionUC struct {
	subs repository.SubscriptionRepository
	tm   repository.TransactionManager
	now  func() time.Time
	log  *zerolog.Logger
}

func NewSubscriptionUseCase(subs repository.SubscriptionRepository, tm repository.TransactionManager, now func() time.Time, logger *zerolog.Logger) *subscriptionUC {
	if now == nil {
		now = time.Now
	}
	return &subscriptionUC{subs: subs, tm: tm, now: now, log: logger}
}

func (u *subscriptionUC) ListMine(ctx context.Context, actor domain.Actor) ([]*model.UserSubscription, error) {
	defer logging.TraceDuration(u.log, "SubscriptionUC.ListMine")()

	if actor.IsZero() {
		return nil, domain.ErrUnauthenticated
	}
	return u.subs.ListByUser(ctx, repository.NoTX, actor.UserID)
}

func (u *subscriptionUC) Cancel(ctx context.Context, actor domain.Actor, id string) (*model.UserSubscription, error) {
	defer logging.TraceDuration(u.log, "SubscriptionUC.Cancel")()

	if actor.IsZero() {
		return nil, domain.ErrUnauthenticated
	}

	var out *model.UserSubscription
	err := u.tm.WithTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(ctx context.Context, tx repository.Tx) error {
		sub, err := u.subs.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if sub.UserID != actor.UserID {
			return domain.ErrNotFound
		}
		if sub.Status != model.SubscriptionStatusActive {
			return domain.ErrSubscriptionNotActive
		}
		if err := u.subs.UpdateStatus(ctx, tx, sub.ID, model.SubscriptionStatusCanceled, false); err != nil {
			return err
		}
		sub.Status = model.SubscriptionStatusCanceled
		sub.IsActive = false
		out = sub
		return nil
	})
	if err != nil {
		return nil, err
	}
	logging.With(ctx, u.log).Info().Str("user_subscription_id", out.ID).Msg("subscription canceled")
	return out, nil
}

func (u *subscriptionUC) ExpireDue(ctx context.Context) (int, error) {
	defer logging.TraceDuration(u.log, "SubscriptionUC.ExpireDue")()

	n, err := u.subs.ExpireDue(ctx, repository.NoTX, u.now())
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (u *subscriptionUC) CountByStatus(ctx context.Context) (map[model.SubscriptionStatus]int, error) {
	return u.subs.CountByStatus(ctx, repository.NoTX)
}
