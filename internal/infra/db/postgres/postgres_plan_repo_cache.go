package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"fideliza/internal/domain/model"
	"fideliza/internal/domain/ports/repository"
	"fideliza/internal/infra/metrics"
	red "fideliza/internal/infra/redis"
)

var _ repository.SubscriptionPlanRepository = (*planRepoCacheDecorator)(nil)

type planRepoCacheDecorator struct {
	inner  repository.SubscriptionPlanRepository
	cache  red.RedisClient
	ttl    time.Duration
	logger *zerolog.Logger
}

func NewPlanRepoCacheDecorator(inner repository.SubscriptionPlanRepository, cache red.RedisClient, ttl time.Duration, logger *zerolog.Logger) repository.SubscriptionPlanRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &planRepoCacheDecorator{
		inner:  inner,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

func planKey(id string) string           { return fmt.Sprintf("plan:%s", id) }
func placePlansKey(placeID string) string { return fmt.Sprintf("plans:place:%s", placeID) }

// FindByID bypasses the cache inside a transaction so callers see their own writes.
func (d *planRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.SubscriptionPlan, error) {
	if tx != nil {
		return d.inner.FindByID(ctx, tx, id)
	}
	key := planKey(id)
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		var plan model.SubscriptionPlan
		if json.Unmarshal([]byte(val), &plan) == nil {
			metrics.IncCacheRequest("plan", "hit")
			return &plan, nil
		}
	} else if !red.IsNil(err) {
		d.logger.Warn().Err(err).Str("key", key).Msg("plan cache read failed")
	}

	metrics.IncCacheRequest("plan", "miss")
	plan, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(plan); err == nil {
		if err := d.cache.Set(ctx, key, b, d.ttl); err != nil {
			d.logger.Warn().Err(err).Str("key", key).Msg("plan cache write failed")
		}
	}
	return plan, nil
}

// ListByPlace caches only the public (active) listing.
func (d *planRepoCacheDecorator) ListByPlace(ctx context.Context, tx repository.Tx, placeID string, onlyActive bool) ([]*model.SubscriptionPlan, error) {
	if !onlyActive || tx != nil {
		return d.inner.ListByPlace(ctx, tx, placeID, onlyActive)
	}
	key := placePlansKey(placeID)
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		var plans []*model.SubscriptionPlan
		if json.Unmarshal([]byte(val), &plans) == nil {
			metrics.IncCacheRequest("plan_list", "hit")
			return plans, nil
		}
	}

	metrics.IncCacheRequest("plan_list", "miss")
	plans, err := d.inner.ListByPlace(ctx, tx, placeID, onlyActive)
	if err != nil {
		return nil, err
	}
	if len(plans) > 0 {
		b, _ := json.Marshal(plans)
		_ = d.cache.Set(ctx, key, b, d.ttl)
	}
	return plans, nil
}

// For write operations, we must invalidate the cache.
func (d *planRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, plan *model.SubscriptionPlan) error {
	if err := d.inner.Save(ctx, tx, plan); err != nil {
		return err
	}
	d.invalidate(ctx, plan.ID, plan.PlaceID)
	return nil
}

func (d *planRepoCacheDecorator) Delete(ctx context.Context, tx repository.Tx, id string) error {
	existing, _ := d.inner.FindByID(ctx, tx, id)
	if err := d.inner.Delete(ctx, tx, id); err != nil {
		return err
	}
	placeID := ""
	if existing != nil {
		placeID = existing.PlaceID
	}
	d.invalidate(ctx, id, placeID)
	return nil
}

func (d *planRepoCacheDecorator) invalidate(ctx context.Context, id, placeID string) {
	keys := []string{planKey(id)}
	if placeID != "" {
		keys = append(keys, placePlansKey(placeID))
	}
	if err := d.cache.Del(ctx, keys...); err != nil {
		d.logger.Warn().Err(err).Strs("keys", keys).Msg("plan cache invalidation failed")
	}
}
