package mailer

import (
	"context"
	"log/slog"

	"github.com/socialfin/authgate/pkg/slogx"
)

// LogMailer records the handoff instead of delivering. It stands in
// where no mail provider is configured, such as local development.
// Token and code values are masked in the log output.
type LogMailer struct {
	Logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{Logger: logger}
}

func (m *LogMailer) SendPasswordReset(ctx context.Context, email, _ string) error {
	m.Logger.InfoContext(ctx, "password reset mail handoff",
		"email", email,
		"token", slogx.Masked,
	)
	return nil
}

func (m *LogMailer) SendVerificationCode(ctx context.Context, email, _ string) error {
	m.Logger.InfoContext(ctx, "verification mail handoff",
		"email", email,
		"code", slogx.Masked,
	)
	return nil
}
