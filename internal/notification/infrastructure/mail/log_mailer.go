// Package mail carries the outbound mail implementations. Transport
// mechanics live behind the application.Mailer port; LogMailer is the
// default, which records the send instead of speaking SMTP.
package mail

import (
	"context"
	"log/slog"
)

type LogMailer struct {
	log *slog.Logger
}

func NewLogMailer(log *slog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	m.log.Info("mail sent", "to", to, "subject", subject, "body", body)
	return nil
}
