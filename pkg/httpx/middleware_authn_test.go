package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/socialfin/authgate/pkg/httpx"
	"github.com/socialfin/authgate/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func testCodec() *jwtx.Codec {
	return &jwtx.Codec{Secret: []byte("secret"), Issuer: "test"}
}

func TestClientIP(t *testing.T) {
	t.Parallel()

	t.Run("extracts from RemoteAddr", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		require.Equal(t, "192.168.1.1", httpx.ClientIP(req))
	})

	t.Run("prefers first X-Forwarded-For entry", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		req.Header.Set("X-Forwarded-For", "203.0.113.1, 192.168.1.1")
		require.Equal(t, "203.0.113.1", httpx.ClientIP(req))
	})

	t.Run("uses X-Real-IP if X-Forwarded-For absent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Real-IP", "203.0.113.2")
		require.Equal(t, "203.0.113.2", httpx.ClientIP(req))
	})
}

func TestClientIdentity(t *testing.T) {
	t.Parallel()

	t.Run("falls back to IP", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:555"
		require.Equal(t, "ip:10.0.0.1", httpx.ClientIdentity(req))
	})

	t.Run("prefers authenticated principal", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		ctx := httpx.ContextWithPrincipal(req.Context(), "user-1", "a@x.com")
		require.Equal(t, "user:user-1", httpx.ClientIdentity(req.WithContext(ctx)))
	})
}

func TestIdentityMiddleware(t *testing.T) {
	t.Parallel()

	codec := testCodec()

	var seenID string
	handler := httpx.IdentityMiddleware(codec)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seenID = httpx.PrincipalID(r.Context())
		}),
	)

	t.Run("records principal from valid token", func(t *testing.T) {
		token, err := codec.IssueAccessToken("user-1", "a@x.com")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		handler.ServeHTTP(httptest.NewRecorder(), req)
		require.Equal(t, "user-1", seenID)
	})

	t.Run("never blocks on invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer garbage")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Empty(t, seenID)
	})

	t.Run("refresh tokens do not authenticate requests", func(t *testing.T) {
		refresh, err := codec.IssueRefreshToken("user-1")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+refresh)

		handler.ServeHTTP(httptest.NewRecorder(), req)
		require.Empty(t, seenID)
	})
}

func TestAuthnMiddleware(t *testing.T) {
	t.Parallel()

	codec := testCodec()
	handler := httpx.AuthnMiddleware(codec)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}),
	)

	t.Run("rejects missing token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), "invalid_token")
	})

	t.Run("rejects invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "Bearer nope")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("admits valid access token", func(t *testing.T) {
		token, err := codec.IssueAccessToken("user-1", "a@x.com")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code)
	})
}
