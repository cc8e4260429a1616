// Package service orchestrates the session and token lifecycle against
// the directory, the grant store, and the token codec. It owns no
// persistent state of its own.
package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/socialfin/authgate/internal/gate/directory"
	"github.com/socialfin/authgate/internal/gate/grants"
	"github.com/socialfin/authgate/internal/gate/mailer"
	"github.com/socialfin/authgate/pkg/cryptox"
	"github.com/socialfin/authgate/pkg/jwtx"
)

const (
	// PasswordResetMessage is returned for every reset request, whether
	// or not the email exists. A distinguishable answer would let a
	// caller enumerate accounts.
	PasswordResetMessage = "If an account exists with this email, you will receive a password reset link."

	DefaultResetTTL        = time.Hour
	DefaultVerificationTTL = 24 * time.Hour

	verificationCodeLength = 6
)

// TokenPair is an access/refresh token pair with the access token
// lifetime in seconds.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// SessionService implements the account lifecycle. The directory is
// the source of truth for principals; the grant store holds the
// refresh association, reset grants, and verification codes.
type SessionService struct {
	dir      directory.Directory
	profiles directory.Profiles
	grants   grants.Store
	codec    *jwtx.Codec
	mail     mailer.Mailer
	logger   *slog.Logger

	// ResetTTL bounds the validity of a password reset grant.
	ResetTTL time.Duration

	// VerificationTTL bounds the validity of an email verification code.
	VerificationTTL time.Duration

	// RequireVerified rejects logins from unverified principals. Off by
	// default; directories that confirm email out of band do not need it.
	RequireVerified bool
}

func NewSessionService(
	dir directory.Directory,
	profiles directory.Profiles,
	grantStore grants.Store,
	codec *jwtx.Codec,
	mail mailer.Mailer,
	logger *slog.Logger,
) *SessionService {
	return &SessionService{
		dir:             dir,
		profiles:        profiles,
		grants:          grantStore,
		codec:           codec,
		mail:            mail,
		logger:          logger,
		ResetTTL:        DefaultResetTTL,
		VerificationTTL: DefaultVerificationTTL,
	}
}

// Register creates a principal and profile and signs the caller in. A
// verification code is issued and handed to the mailer; a failed
// handoff does not fail the registration.
func (s *SessionService) Register(ctx context.Context, email, password string, attrs directory.Attrs) (TokenPair, error) {
	_, err := s.dir.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return TokenPair{}, ErrAlreadyExists
	case !errors.Is(err, directory.ErrNotFound):
		return TokenPair{}, fmt.Errorf("lookup principal: %w", err)
	}

	p, err := s.dir.CreatePrincipal(ctx, email, password, attrs)
	if err != nil {
		if errors.Is(err, directory.ErrAlreadyExists) {
			return TokenPair{}, ErrAlreadyExists
		}
		return TokenPair{}, fmt.Errorf("create principal: %w", err)
	}

	if err := s.profiles.CreateProfile(ctx, directory.Profile{
		ID:        p.ID,
		Email:     p.Email,
		FirstName: attrs.FirstName,
		LastName:  attrs.LastName,
		Phone:     attrs.Phone,
	}); err != nil {
		return TokenPair{}, fmt.Errorf("create profile: %w", err)
	}

	s.issueVerification(ctx, p.Email)

	return s.issuePair(ctx, p)
}

// Login authenticates against the directory and rotates the refresh
// association.
func (s *SessionService) Login(ctx context.Context, email, password string) (TokenPair, error) {
	p, err := s.dir.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, directory.ErrInvalidCredentials) || errors.Is(err, directory.ErrNotFound) {
			return TokenPair{}, ErrInvalidCredentials
		}
		return TokenPair{}, fmt.Errorf("authenticate: %w", err)
	}

	if !p.Active {
		return TokenPair{}, ErrInactive
	}
	if s.RequireVerified && !p.Verified {
		return TokenPair{}, ErrUnverified
	}

	return s.issuePair(ctx, p)
}

// Refresh exchanges a refresh token for a new pair. Only the current
// association is accepted; a superseded token is rejected even before
// its expiry, so a stolen old token cannot be replayed after rotation.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.codec.Verify(refreshToken, jwtx.TokenTypeRefresh)
	if err != nil {
		return TokenPair{}, ErrInvalidToken
	}

	current, err := s.grants.GetRefresh(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, grants.ErrNotFound) {
			return TokenPair{}, ErrNotFound
		}
		return TokenPair{}, fmt.Errorf("load refresh association: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(current), []byte(cryptox.FingerprintToken(refreshToken))) != 1 {
		return TokenPair{}, ErrInvalidToken
	}

	p, err := s.dir.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return TokenPair{}, ErrNotFound
		}
		return TokenPair{}, fmt.Errorf("load principal: %w", err)
	}

	return s.issuePair(ctx, p)
}

// Logout drops the refresh association. It always reports success; a
// failed deletion leaves a token that expires on its own, and the
// caller can do nothing useful with the failure.
func (s *SessionService) Logout(ctx context.Context, principalID string) {
	if err := s.grants.DeleteRefresh(ctx, principalID); err != nil {
		s.logger.WarnContext(ctx, "logout could not drop refresh association",
			"principal_id", principalID,
			"error", err,
		)
	}
}

// RequestPasswordReset issues a reset grant when the email belongs to
// a principal. The returned message is identical either way.
func (s *SessionService) RequestPasswordReset(ctx context.Context, email string) string {
	p, err := s.dir.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, directory.ErrNotFound) {
			s.logger.WarnContext(ctx, "password reset lookup failed", "error", err)
		}
		return PasswordResetMessage
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		s.logger.ErrorContext(ctx, "password reset token generation failed", "error", err)
		return PasswordResetMessage
	}

	if err := s.grants.SetReset(ctx, p.ID, token, s.ResetTTL); err != nil {
		s.logger.ErrorContext(ctx, "password reset grant store failed",
			"principal_id", p.ID,
			"error", err,
		)
		return PasswordResetMessage
	}

	if err := s.mail.SendPasswordReset(ctx, p.Email, token); err != nil {
		s.logger.ErrorContext(ctx, "password reset mail handoff failed",
			"principal_id", p.ID,
			"error", err,
		)
	}

	return PasswordResetMessage
}

// ResetPassword consumes a reset grant, updates the credential, and
// drops the refresh association so every session must sign in again.
func (s *SessionService) ResetPassword(ctx context.Context, token, newPassword string) error {
	principalID, err := s.grants.ConsumeReset(ctx, token)
	if err != nil {
		if errors.Is(err, grants.ErrNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("consume reset grant: %w", err)
	}

	if _, err := s.dir.UpdateByID(ctx, principalID, directory.Update{Password: &newPassword}); err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("update credential: %w", err)
	}

	if err := s.grants.DeleteRefresh(ctx, principalID); err != nil {
		return fmt.Errorf("drop refresh association: %w", err)
	}

	return nil
}

// ChangePassword re-authenticates with the current password before
// accepting the new one.
func (s *SessionService) ChangePassword(ctx context.Context, principalID, currentPassword, newPassword string) error {
	p, err := s.dir.GetByID(ctx, principalID)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("load principal: %w", err)
	}

	if _, err := s.dir.Authenticate(ctx, p.Email, currentPassword); err != nil {
		if errors.Is(err, directory.ErrInvalidCredentials) || errors.Is(err, directory.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("verify current password: %w", err)
	}

	if _, err := s.dir.UpdateByID(ctx, principalID, directory.Update{Password: &newPassword}); err != nil {
		return fmt.Errorf("update credential: %w", err)
	}

	return nil
}

// VerifyEmail matches a stored verification code and marks the
// principal verified. A missing or mismatched code reports false, not
// an error.
func (s *SessionService) VerifyEmail(ctx context.Context, email, code string) (bool, error) {
	stored, err := s.grants.GetVerification(ctx, email)
	if err != nil {
		if errors.Is(err, grants.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("load verification code: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return false, nil
	}

	p, err := s.dir.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("lookup principal: %w", err)
	}

	verified := true
	if _, err := s.dir.UpdateByID(ctx, p.ID, directory.Update{Verified: &verified}); err != nil {
		return false, fmt.Errorf("mark verified: %w", err)
	}

	if err := s.grants.DeleteVerification(ctx, email); err != nil {
		s.logger.WarnContext(ctx, "verification code cleanup failed", "email", email, "error", err)
	}

	return true, nil
}

// CurrentUser loads the principal and its profile. A missing profile
// row yields an empty profile rather than a failure.
func (s *SessionService) CurrentUser(ctx context.Context, principalID string) (directory.Principal, directory.Profile, error) {
	p, err := s.dir.GetByID(ctx, principalID)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return directory.Principal{}, directory.Profile{}, ErrNotFound
		}
		return directory.Principal{}, directory.Profile{}, fmt.Errorf("load principal: %w", err)
	}

	profile, err := s.profiles.GetProfile(ctx, principalID)
	if err != nil && !errors.Is(err, directory.ErrNotFound) {
		return directory.Principal{}, directory.Profile{}, fmt.Errorf("load profile: %w", err)
	}

	return p, profile, nil
}

// issuePair signs a fresh access/refresh pair and records the refresh
// fingerprint, superseding any previous association.
func (s *SessionService) issuePair(ctx context.Context, p directory.Principal) (TokenPair, error) {
	access, err := s.codec.IssueAccessToken(p.ID, p.Email)
	if err != nil {
		return TokenPair{}, fmt.Errorf("issue access token: %w", err)
	}

	refresh, err := s.codec.IssueRefreshToken(p.ID)
	if err != nil {
		return TokenPair{}, fmt.Errorf("issue refresh token: %w", err)
	}

	if err := s.grants.SetRefresh(ctx, p.ID, cryptox.FingerprintToken(refresh), s.codec.RefreshTokenTTL()); err != nil {
		return TokenPair{}, fmt.Errorf("record refresh association: %w", err)
	}

	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.codec.AccessTokenTTL().Seconds()),
	}, nil
}

func (s *SessionService) issueVerification(ctx context.Context, email string) {
	code, err := cryptox.GenerateNumericCode(verificationCodeLength)
	if err != nil {
		s.logger.ErrorContext(ctx, "verification code generation failed", "error", err)
		return
	}

	if err := s.grants.SetVerification(ctx, email, code, s.VerificationTTL); err != nil {
		s.logger.ErrorContext(ctx, "verification code store failed", "email", email, "error", err)
		return
	}

	if err := s.mail.SendVerificationCode(ctx, email, code); err != nil {
		s.logger.WarnContext(ctx, "verification mail handoff failed", "email", email, "error", err)
	}
}
