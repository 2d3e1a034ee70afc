package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"fideliza/internal/domain/ports/adapter"
	"fideliza/internal/infra/metrics"
)

var _ adapter.Mailer = (*MailDispatcher)(nil)

// MailDispatcher makes any Mailer asynchronous by queueing sends on a Pool.
// Send returns once the message is queued.
type MailDispatcher struct {
	pool    *Pool
	mailer  adapter.Mailer
	timeout time.Duration
	log     *zerolog.Logger
}

func NewMailDispatcher(pool *Pool, mailer adapter.Mailer, logger *zerolog.Logger) *MailDispatcher {
	l := logger.With().Str("component", "MailDispatcher").Logger()
	return &MailDispatcher{pool: pool, mailer: mailer, timeout: 30 * time.Second, log: &l}
}

func (d *MailDispatcher) Send(_ context.Context, msg adapter.Message) error {
	err := d.pool.Submit(func(ctx context.Context) error {
		sctx, cancel := context.WithTimeout(ctx, d.timeout)
		defer cancel()
		if err := d.mailer.Send(sctx, msg); err != nil {
			metrics.IncJob("mail", "failed")
			return err
		}
		metrics.IncJob("mail", "completed")
		return nil
	})
	if err != nil {
		metrics.IncJob("mail", "dropped")
		d.log.Warn().Err(err).Str("subject", msg.Subject).Msg("mail dropped")
	}
	return err
}
