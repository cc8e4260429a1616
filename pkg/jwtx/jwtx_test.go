package jwtx_test

import (
	"testing"
	"time"

	"github.com/socialfin/authgate/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func newCodec() *jwtx.Codec {
	return &jwtx.Codec{
		Secret: []byte("test-secret"),
		Issuer: "authgate-test",
	}
}

func TestIssueAccessToken(t *testing.T) {
	t.Parallel()

	c := newCodec()

	token, err := c.IssueAccessToken("user-1", "a@x.com")
	require.NoError(t, err)

	claims, err := c.Verify(token, jwtx.TokenTypeAccess)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, "a@x.com", claims.Email)
	require.Equal(t, jwtx.TokenTypeAccess, claims.Type)
	require.Equal(t, "authgate-test", claims.Issuer)
	require.NotEmpty(t, claims.ID)
}

func TestIssueRefreshToken(t *testing.T) {
	t.Parallel()

	c := newCodec()

	token, err := c.IssueRefreshToken("user-1")
	require.NoError(t, err)

	claims, err := c.Verify(token, jwtx.TokenTypeRefresh)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.Empty(t, claims.Email)
}

func TestVerify(t *testing.T) {
	t.Parallel()

	t.Run("rejects wrong token type", func(t *testing.T) {
		c := newCodec()

		access, err := c.IssueAccessToken("user-1", "a@x.com")
		require.NoError(t, err)

		_, err = c.Verify(access, jwtx.TokenTypeRefresh)
		require.ErrorIs(t, err, jwtx.ErrInvalidToken)
	})

	t.Run("rejects expired token with valid signature", func(t *testing.T) {
		issued := time.Now().Add(-2 * time.Hour)
		c := newCodec()
		c.AccessTTL = time.Hour
		c.Now = func() time.Time { return issued }

		token, err := c.IssueAccessToken("user-1", "a@x.com")
		require.NoError(t, err)

		// Back to the real clock: the token is one hour past expiry.
		c.Now = nil
		_, err = c.Verify(token, jwtx.TokenTypeAccess)
		require.ErrorIs(t, err, jwtx.ErrInvalidToken)
	})

	t.Run("rejects token signed with another secret", func(t *testing.T) {
		other := &jwtx.Codec{Secret: []byte("other-secret"), Issuer: "authgate-test"}
		token, err := other.IssueAccessToken("user-1", "a@x.com")
		require.NoError(t, err)

		_, err = newCodec().Verify(token, jwtx.TokenTypeAccess)
		require.ErrorIs(t, err, jwtx.ErrInvalidToken)
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		_, err := newCodec().Verify("not.a.jwt", jwtx.TokenTypeAccess)
		require.ErrorIs(t, err, jwtx.ErrInvalidToken)

		_, err = newCodec().Verify("", jwtx.TokenTypeAccess)
		require.ErrorIs(t, err, jwtx.ErrInvalidToken)
	})

	t.Run("respects configured TTLs", func(t *testing.T) {
		c := newCodec()
		c.AccessTTL = time.Minute

		token, err := c.IssueAccessToken("user-1", "a@x.com")
		require.NoError(t, err)

		claims, err := c.Verify(token, jwtx.TokenTypeAccess)
		require.NoError(t, err)
		require.WithinDuration(t,
			time.Now().Add(time.Minute), claims.ExpiresAt.Time, 5*time.Second)
	})
}
