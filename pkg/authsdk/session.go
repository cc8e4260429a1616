package authsdk

import (
	"context"
	"sync"
	"time"
)

// refreshBuffer refreshes slightly before the advertised expiry so an
// in-flight request does not race the deadline.
const refreshBuffer = 30 * time.Second

// Session is an authenticated view of the API. It holds the current
// token pair and rotates it when the access token nears expiry. Safe
// for concurrent use.
type Session struct {
	client *Client

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	expiresAt    time.Time
}

func newSession(c *Client, tokens *TokenResponse) *Session {
	return &Session{
		client:       c,
		accessToken:  tokens.AccessToken,
		refreshToken: tokens.RefreshToken,
		expiresAt:    time.Now().Add(time.Duration(tokens.ExpiresIn) * time.Second),
	}
}

// Tokens returns the current pair for persistence across restarts.
func (s *Session) Tokens() (accessToken, refreshToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken, s.refreshToken
}

// bearer returns a valid access token, refreshing the pair first when
// it is about to expire.
func (s *Session) bearer(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if time.Until(s.expiresAt) > refreshBuffer {
		return s.accessToken, nil
	}

	tokens, err := s.client.Refresh(ctx, s.refreshToken)
	if err != nil {
		return "", err
	}

	s.accessToken = tokens.AccessToken
	s.refreshToken = tokens.RefreshToken
	s.expiresAt = time.Now().Add(time.Duration(tokens.ExpiresIn) * time.Second)
	return s.accessToken, nil
}

// Me fetches the authenticated account profile.
func (s *Session) Me(ctx context.Context) (*Profile, error) {
	token, err := s.bearer(ctx)
	if err != nil {
		return nil, err
	}

	var profile Profile
	if err := s.client.do(ctx, "GET", "/v1/auth/me", token, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Logout revokes the refresh token server-side. The Session must not
// be used afterwards.
func (s *Session) Logout(ctx context.Context) error {
	token, err := s.bearer(ctx)
	if err != nil {
		return err
	}
	return s.client.do(ctx, "POST", "/v1/auth/logout", token, nil, nil)
}

// ChangePassword rotates the credential after re-proving the current
// one.
func (s *Session) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	token, err := s.bearer(ctx)
	if err != nil {
		return err
	}

	body := map[string]string{
		"current_password": currentPassword,
		"new_password":     newPassword,
	}
	return s.client.do(ctx, "POST", "/v1/auth/password/change", token, body, nil)
}
