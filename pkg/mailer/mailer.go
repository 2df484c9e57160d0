// Package mailer abstracts outbound email delivery behind a single send
// operation so the notification pipeline can be exercised with a fake in
// tests and pointed at a real SMTP relay in production.
package mailer

import (
	"context"

	"github.com/rs/zerolog"
)

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Mailer delivers a single message through an external provider.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer writes messages to the log instead of delivering them. Intended
// for development and test environments.
type LogMailer struct {
	logger zerolog.Logger
}

// NewLogMailer constructs a logging mailer.
func NewLogMailer(logger zerolog.Logger) *LogMailer {
	return &LogMailer{logger: logger.With().Str("component", "log_mailer").Logger()}
}

// Send logs the message payload and reports success.
func (l *LogMailer) Send(_ context.Context, msg Message) error {
	l.logger.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Msg("email delivered to log sink")
	return nil
}
