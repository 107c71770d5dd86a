package mail

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer writes the email it would send to the log. Composing and
// delivering real emails is left to an external relay.
type LogMailer struct {
	logger  zerolog.Logger
	baseURL string
}

func NewLogMailer(logger zerolog.Logger, baseURL string) *LogMailer {
	return &LogMailer{logger: logger, baseURL: strings.TrimRight(baseURL, "/")}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	path, err := msg.Path()
	if err != nil {
		return err
	}
	m.logger.Info().
		Str("to", msg.To).
		Str("kind", string(msg.Kind)).
		Str("subject", msg.Subject()).
		Str("link", m.baseURL+path).
		Msg("mail sent")
	return nil
}
