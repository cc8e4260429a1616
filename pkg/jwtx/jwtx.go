// Package jwtx issues and verifies the signed session tokens the
// façade hands out. Tokens are self-contained HS256 JWTs carrying the
// principal id, an optional email and a type discriminator; validity
// is purely a function of signature, expiry and type at verification
// time.
package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenType discriminates access tokens from refresh tokens. A token
// of one type must never be accepted where the other is expected.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Default token lifetimes. Short-lived access tokens paired with
// longer-lived refresh tokens; both can be overridden per-service.
const (
	DefaultAccessTokenTTL  = 30 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// ErrInvalidToken is the single rejection the codec reports. Bad
// signature, expiry, malformed input and type mismatch all collapse
// into it so callers cannot leak which check failed.
var ErrInvalidToken = errors.New("jwtx: invalid token")

// Claims are the session token claims.
type Claims struct {
	jwt.RegisteredClaims

	// Email of the principal, set on access tokens only.
	Email string `json:"email,omitempty"`

	// Type is the token type discriminator.
	Type TokenType `json:"type"`
}

// Codec signs and verifies session tokens with a shared secret.
type Codec struct {
	Secret     []byte
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Now is a clock override for tests. Nil means time.Now.
	Now func() time.Time
}

func (c *Codec) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// AccessTokenTTL reports the effective access token lifetime.
func (c *Codec) AccessTokenTTL() time.Duration {
	return c.accessTTL()
}

func (c *Codec) accessTTL() time.Duration {
	if c.AccessTTL > 0 {
		return c.AccessTTL
	}
	return DefaultAccessTokenTTL
}

// RefreshTokenTTL reports the effective refresh token lifetime.
func (c *Codec) RefreshTokenTTL() time.Duration {
	return c.refreshTTL()
}

func (c *Codec) refreshTTL() time.Duration {
	if c.RefreshTTL > 0 {
		return c.RefreshTTL
	}
	return DefaultRefreshTokenTTL
}

// IssueAccessToken signs a short-lived access token for the subject.
func (c *Codec) IssueAccessToken(subject, email string) (string, error) {
	return c.sign(subject, email, TokenTypeAccess, c.accessTTL())
}

// IssueRefreshToken signs a refresh token for the subject. Refresh
// tokens carry no email claim.
func (c *Codec) IssueRefreshToken(subject string) (string, error) {
	return c.sign(subject, "", TokenTypeRefresh, c.refreshTTL())
}

func (c *Codec) sign(subject, email string, typ TokenType, ttl time.Duration) (string, error) {
	now := c.now().UTC()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.Issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        newJTI(),
		},
		Email: email,
		Type:  typ,
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.Secret)
}

// Verify checks signature and expiry and requires the token to be of
// the expected type. Any failure yields ErrInvalidToken.
func (c *Codec) Verify(token string, typ TokenType) (Claims, error) {
	var claims Claims

	parsed, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return c.Secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}

	if claims.Type != typ || claims.Subject == "" {
		return Claims{}, ErrInvalidToken
	}

	return claims, nil
}

// newJTI returns a URL-safe random identifier for the "jti" claim.
func newJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
