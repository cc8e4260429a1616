// Package remote implements the directory contract against the
// managed identity provider's JSON admin API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/socialfin/authgate/internal/gate/directory"
)

// DefaultTimeout bounds every directory call. The façade treats a
// timeout as a transient failure; retrying is the caller's decision.
const DefaultTimeout = 10 * time.Second

// Client talks to the remote directory's admin API. All requests carry
// the service key as a bearer credential.
type Client struct {
	BaseURL    string
	ServiceKey string
	HTTPClient *http.Client

	// LegacyLookup enumerates all principals and filters by email
	// instead of using the indexed lookup endpoint. Only for
	// directories that lack the email index; does not scale.
	LegacyLookup bool
}

// NewClient creates a directory client with the default timeout.
func NewClient(baseURL, serviceKey string) *Client {
	return &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		ServiceKey: serviceKey,
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
	}
}

type principalWire struct {
	ID        string          `json:"id"`
	Email     string          `json:"email"`
	Verified  bool            `json:"verified"`
	Active    bool            `json:"active"`
	Attrs     directory.Attrs `json:"attrs"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (p principalWire) principal() directory.Principal {
	return directory.Principal{
		ID:        p.ID,
		Email:     p.Email,
		Verified:  p.Verified,
		Active:    p.Active,
		Attrs:     p.Attrs,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (c *Client) CreatePrincipal(
	ctx context.Context,
	email, password string,
	attrs directory.Attrs,
) (directory.Principal, error) {
	body := map[string]any{
		"email":    email,
		"password": password,
		"attrs":    attrs,
	}

	var out principalWire
	if err := c.do(ctx, http.MethodPost, "/v1/admin/principals", body, &out); err != nil {
		return directory.Principal{}, err
	}
	return out.principal(), nil
}

func (c *Client) FindByEmail(ctx context.Context, email string) (directory.Principal, error) {
	if c.LegacyLookup {
		return c.findByEmailScan(ctx, email)
	}

	var out principalWire
	path := "/v1/admin/principals/by-email?email=" + url.QueryEscape(email)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return directory.Principal{}, err
	}
	return out.principal(), nil
}

// findByEmailScan is the enumeration fallback: list everything and
// filter client-side.
func (c *Client) findByEmailScan(ctx context.Context, email string) (directory.Principal, error) {
	all, err := c.ListAll(ctx)
	if err != nil {
		return directory.Principal{}, err
	}
	for _, p := range all {
		if strings.EqualFold(p.Email, email) {
			return p, nil
		}
	}
	return directory.Principal{}, directory.ErrNotFound
}

func (c *Client) GetByID(ctx context.Context, id string) (directory.Principal, error) {
	var out principalWire
	if err := c.do(ctx, http.MethodGet, "/v1/admin/principals/"+url.PathEscape(id), nil, &out); err != nil {
		return directory.Principal{}, err
	}
	return out.principal(), nil
}

func (c *Client) UpdateByID(
	ctx context.Context,
	id string,
	upd directory.Update,
) (directory.Principal, error) {
	var out principalWire
	path := "/v1/admin/principals/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodPatch, path, upd, &out); err != nil {
		return directory.Principal{}, err
	}
	return out.principal(), nil
}

func (c *Client) Authenticate(ctx context.Context, email, password string) (directory.Principal, error) {
	body := map[string]string{"email": email, "password": password}

	var out principalWire
	if err := c.do(ctx, http.MethodPost, "/v1/authenticate", body, &out); err != nil {
		return directory.Principal{}, err
	}
	return out.principal(), nil
}

func (c *Client) ListAll(ctx context.Context) ([]directory.Principal, error) {
	var out struct {
		Principals []principalWire `json:"principals"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/admin/principals", nil, &out); err != nil {
		return nil, err
	}

	principals := make([]directory.Principal, 0, len(out.Principals))
	for _, p := range out.Principals {
		principals = append(principals, p.principal())
	}
	return principals, nil
}

// do executes one JSON request against the admin API and decodes the
// response into out (when out is non-nil). Directory error statuses
// are mapped onto the package sentinels.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("remote: encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("remote: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.ServiceKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("remote: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := mapStatus(resp); err != nil {
		return err
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("remote: decode response: %w", err)
		}
	}
	return nil
}

func mapStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return directory.ErrNotFound
	case resp.StatusCode == http.StatusConflict:
		return directory.ErrAlreadyExists
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return directory.ErrInvalidCredentials
	default:
		// Include a bounded slice of the body for server-side logs;
		// callers translate this to a generic failure at the boundary.
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("remote: directory returned %d: %s", resp.StatusCode, string(msg))
	}
}
