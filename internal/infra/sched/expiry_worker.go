package sched

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"fideliza/internal/domain/model"
	"fideliza/internal/infra/metrics"
	red "fideliza/internal/infra/redis"
)

const expiryLockKey = "lock:expiry_worker"

// Expirer is the slice of the subscription use case the worker drives.
type Expirer interface {
	ExpireDue(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context) (map[model.SubscriptionStatus]int, error)
}

// ExpiryWorker periodically expires subscriptions whose period ended.
// A Redis lock keeps concurrent instances from running the same tick.
type ExpiryWorker struct {
	interval time.Duration
	lockTTL  time.Duration
	subUC    Expirer
	locker   red.Locker
	log      *zerolog.Logger
}

func NewExpiryWorker(interval, lockTTL time.Duration, subUC Expirer, locker red.Locker, logger *zerolog.Logger) *ExpiryWorker {
	exprLog := logger.With().Str("component", "ExpiryWorker").Logger()
	if interval <= 0 {
		interval = time.Hour
	}
	if lockTTL <= 0 {
		lockTTL = 5 * time.Minute
	}
	return &ExpiryWorker{
		interval: interval,
		lockTTL:  lockTTL,
		subUC:    subUC,
		locker:   locker,
		log:      &exprLog,
	}
}

func (w *ExpiryWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting expiry worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping expiry worker")
			return ctx.Err()
		case <-ticker.C:
			w.Tick(ctx)
		}
	}
}

// Tick runs one expiry pass if this instance wins the lock.
func (w *ExpiryWorker) Tick(ctx context.Context) {
	if w.locker != nil {
		token, err := w.locker.TryLock(ctx, expiryLockKey, w.lockTTL)
		if err != nil {
			if !errors.Is(err, red.ErrLockHeld) {
				w.log.Warn().Err(err).Msg("expiry lock unavailable")
			}
			return
		}
		defer func() {
			if err := w.locker.Unlock(context.Background(), expiryLockKey, token); err != nil {
				w.log.Warn().Err(err).Msg("expiry unlock failed")
			}
		}()
	}

	n, err := w.subUC.ExpireDue(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("expiry worker error")
		return
	}
	if n > 0 {
		metrics.IncSubscriptionsExpired(n)
		w.log.Info().Int("count", n).Msg("expired subscriptions")
	}
	if counts, err := w.subUC.CountByStatus(ctx); err == nil {
		metrics.SetSubscriptionsTotal(counts)
	}
}
