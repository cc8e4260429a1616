package httpx

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP extracts the client IP address from the request. It handles
// X-Forwarded-For and X-Real-IP headers for proxied requests, falling
// back to the direct connection address.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first, _, found := strings.Cut(xff, ","); found || first != "" {
			return strings.TrimSpace(first)
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// ClientIdentity resolves the identity used for rate limiting:
// authenticated principal id first, client IP otherwise. The prefixes
// keep principal and IP key spaces from colliding.
func ClientIdentity(r *http.Request) string {
	if id := PrincipalID(r.Context()); id != "" {
		return "user:" + id
	}
	return "ip:" + ClientIP(r)
}
