package mail

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"fideliza/internal/domain/ports/adapter"
)

var _ adapter.Mailer = (*NoopMailer)(nil)

// NoopMailer logs and records messages instead of sending them.
type NoopMailer struct {
	mu     sync.Mutex
	sent   []adapter.Message
	logger *zerolog.Logger
}

func NewNoopMailer(logger *zerolog.Logger) *NoopMailer {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &NoopMailer{logger: logger}
}

func (m *NoopMailer) Send(ctx context.Context, msg adapter.Message) error {
	m.mu.Lock()
	m.sent = append(m.sent, msg)
	m.mu.Unlock()
	m.logger.Debug().Str("subject", msg.Subject).Msg("mail suppressed (noop mailer)")
	return nil
}

func (m *NoopMailer) Sent() []adapter.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]adapter.Message, len(m.sent))
	copy(out, m.sent)
	return out
}
