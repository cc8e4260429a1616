package httpx

import (
	"net/http"
	"strings"

	"github.com/socialfin/authgate/pkg/jwtx"
	"github.com/socialfin/authgate/pkg/slogx"
)

// bearerToken extracts the token from an Authorization header of the
// form "Bearer <token>". Returns "" when the header is absent or not
// bearer-shaped.
func bearerToken(r *http.Request) string {
	authz := r.Header.Get("Authorization")
	if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))
}

// IdentityMiddleware extracts the principal from a bearer access token
// on a best-effort basis and records it on the request context for
// logging and rate limiting. It never rejects a request; endpoints
// that require authentication use AuthnMiddleware.
func IdentityMiddleware(codec *jwtx.Codec) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if raw := bearerToken(r); raw != "" {
				if claims, err := codec.Verify(raw, jwtx.TokenTypeAccess); err == nil {
					ctx := ContextWithPrincipal(r.Context(), claims.Subject, claims.Email)
					r = r.WithContext(ctx)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AuthnMiddleware requires a valid bearer access token and rejects the
// request with 401 otherwise.
func AuthnMiddleware(codec *jwtx.Codec) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			raw := bearerToken(r)
			if raw == "" {
				writeBearerError(w, "missing bearer token")
				return
			}

			claims, err := codec.Verify(raw, jwtx.TokenTypeAccess)
			if err != nil {
				slogx.FromContext(ctx).Warn("access token rejected", "err", err)
				writeBearerError(w, "token verification failed")
				return
			}

			ctx = ContextWithPrincipal(ctx, claims.Subject, claims.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteError(w, http.StatusUnauthorized, "could not validate credentials")
}
