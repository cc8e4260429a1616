// Package mailer abstracts outbound account mail. Delivery is owned by
// an external system; implementations here hand the message off and
// report whether the handoff succeeded.
package mailer

import "context"

// Mailer sends account lifecycle mail.
type Mailer interface {
	// SendPasswordReset delivers a reset link carrying the token.
	SendPasswordReset(ctx context.Context, email, token string) error

	// SendVerificationCode delivers the email verification code.
	SendVerificationCode(ctx context.Context, email, code string) error
}
