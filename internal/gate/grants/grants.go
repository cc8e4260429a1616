// Package grants stores the short-lived records the session manager
// associates with principals: the single active refresh-token
// fingerprint, password-reset grants and email-verification codes.
// Records are dedicated keyed entries with native expiry; nothing here
// compares expiry timestamps by hand.
package grants

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound reports that no live record exists for the key. An
// expired record is indistinguishable from an absent one.
var ErrNotFound = errors.New("grants: not found")

// Store is the session manager's token-association store.
//
// Invariants the implementations uphold:
//   - at most one refresh fingerprint per principal (set replaces)
//   - exactly one active reset grant per principal (set supersedes)
//   - consuming a reset grant deletes it
type Store interface {
	// SetRefresh records fingerprint as the principal's only valid
	// refresh token, replacing any previous one.
	SetRefresh(ctx context.Context, principalID, fingerprint string, ttl time.Duration) error

	// GetRefresh returns the current refresh fingerprint.
	GetRefresh(ctx context.Context, principalID string) (string, error)

	// DeleteRefresh removes the association. Deleting an absent
	// association is not an error.
	DeleteRefresh(ctx context.Context, principalID string) error

	// SetReset records a password-reset grant, superseding any
	// previous grant for the principal.
	SetReset(ctx context.Context, principalID, token string, ttl time.Duration) error

	// ConsumeReset resolves a reset token to its principal and
	// deletes the grant so it cannot be replayed.
	ConsumeReset(ctx context.Context, token string) (string, error)

	// SetVerification records an email-verification code.
	SetVerification(ctx context.Context, email, code string, ttl time.Duration) error

	// GetVerification returns the pending code for the email.
	GetVerification(ctx context.Context, email string) (string, error)

	// DeleteVerification removes a consumed code.
	DeleteVerification(ctx context.Context, email string) error
}
