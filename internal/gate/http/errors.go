package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/socialfin/authgate/internal/gate/service"
	"github.com/socialfin/authgate/pkg/httpx"
	"github.com/socialfin/authgate/pkg/slogx"
)

const maxBodyBytes = 1 << 20

// decodeJSON parses the request body into dst. On failure it writes a
// 400 and reports false; the handler must return immediately.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			httpx.WriteError(w, http.StatusBadRequest, "Request body is required.")
			return false
		}
		httpx.WriteError(w, http.StatusBadRequest, "Invalid request body.")
		return false
	}
	return true
}

// writeServiceError maps a taxonomy error to its status and a generic
// message. Anything outside the taxonomy is logged with full context
// and reported as fallback, never with internal detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrAlreadyExists):
		httpx.WriteError(w, http.StatusBadRequest, "An account with this email already exists.")
	case errors.Is(err, service.ErrInvalidCredentials):
		w.Header().Set("WWW-Authenticate", "Bearer")
		httpx.WriteError(w, http.StatusUnauthorized, "Incorrect email or password.")
	case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrNotFound):
		w.Header().Set("WWW-Authenticate", "Bearer")
		httpx.WriteError(w, http.StatusUnauthorized, "Could not validate credentials.")
	case errors.Is(err, service.ErrUnverified):
		httpx.WriteError(w, http.StatusForbidden, "Email address is not verified.")
	case errors.Is(err, service.ErrInactive):
		httpx.WriteError(w, http.StatusForbidden, "Account is inactive.")
	default:
		slogx.FromContext(r.Context()).Error("request failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, fallback)
	}
}
