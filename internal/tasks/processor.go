package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jnitin/flask-catalog/internal/mail"
)

// Processor delivers outbox stream entries through a mail.Mailer.
type Processor struct {
	logger zerolog.Logger
	mailer mail.Mailer
}

func NewProcessor(logger zerolog.Logger, mailer mail.Mailer) *Processor {
	return &Processor{
		logger: logger,
		mailer: mailer,
	}
}

// Handle sends one message. Malformed entries are logged and reported as
// handled so they are acknowledged instead of retried forever.
func (p *Processor) Handle(ctx context.Context, msg redis.XMessage) error {
	m, err := mail.Decode(msg.Values)
	if err != nil {
		if errors.Is(err, mail.ErrMalformedMessage) {
			p.logger.Warn().Err(err).Str("message_id", msg.ID).Msg("dropping malformed mail message")
			return nil
		}
		return fmt.Errorf("decode message %s: %w", msg.ID, err)
	}

	if err := p.mailer.Send(ctx, m); err != nil {
		return fmt.Errorf("send %s mail: %w", m.Kind, err)
	}
	p.logger.Debug().Str("message_id", msg.ID).Str("kind", string(m.Kind)).Msg("mail delivered")
	return nil
}
