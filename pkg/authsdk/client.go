// Package authsdk is a Go client for the authgate HTTP API. The
// Client covers unauthenticated operations; a Session wraps a token
// pair and refreshes it transparently.
package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Client talks to an authgate deployment.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client with a default request timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Register creates an account and returns a signed-in Session.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	var tokens TokenResponse
	if err := c.do(ctx, http.MethodPost, "/v1/auth/register", "", req, &tokens); err != nil {
		return nil, err
	}
	return newSession(c, &tokens), nil
}

// Login authenticates and returns a Session.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}

	var tokens TokenResponse
	if err := c.do(ctx, http.MethodPost, "/v1/auth/login", "", body, &tokens); err != nil {
		return nil, err
	}
	return newSession(c, &tokens), nil
}

// Refresh exchanges a refresh token for a new pair. The presented
// token is invalid afterwards.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	body := map[string]string{"refresh_token": refreshToken}

	var tokens TokenResponse
	if err := c.do(ctx, http.MethodPost, "/v1/auth/refresh", "", body, &tokens); err != nil {
		return nil, err
	}
	return &tokens, nil
}

// NewSessionFromTokens resumes a Session from stored tokens, for
// example after a process restart. Auto-refresh still applies.
func (c *Client) NewSessionFromTokens(accessToken, refreshToken string, expiresIn int64) *Session {
	return &Session{
		client:       c,
		accessToken:  accessToken,
		refreshToken: refreshToken,
		expiresAt:    time.Now().Add(time.Duration(expiresIn) * time.Second),
	}
}

// ForgotPassword requests a password reset mail. The returned message
// is the same whether or not the email exists.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	body := map[string]string{"email": email}

	var msg MessageResponse
	if err := c.do(ctx, http.MethodPost, "/v1/auth/password/forgot", "", body, &msg); err != nil {
		return "", err
	}
	return msg.Message, nil
}

// ResetPassword completes a reset with the mailed token.
func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) error {
	body := map[string]string{"token": token, "new_password": newPassword}
	return c.do(ctx, http.MethodPost, "/v1/auth/password/reset", "", body, nil)
}

// VerifyEmail submits a mailed verification code.
func (c *Client) VerifyEmail(ctx context.Context, email, code string) error {
	body := map[string]string{"email": email, "code": code}
	return c.do(ctx, http.MethodPost, "/v1/auth/email/verify", "", body, nil)
}

// Livez probes service liveness.
func (c *Client) Livez(ctx context.Context) (*HealthResponse, error) {
	var health HealthResponse
	if err := c.do(ctx, http.MethodGet, "/livez", "", nil, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// Readyz probes service readiness.
func (c *Client) Readyz(ctx context.Context) (*HealthResponse, error) {
	var health HealthResponse
	if err := c.do(ctx, http.MethodGet, "/readyz", "", nil, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

func (c *Client) do(ctx context.Context, method, path, bearer string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
