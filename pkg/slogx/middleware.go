package slogx

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/socialfin/authgate/pkg/idx"
)

// maxLoggedBody caps how much of a request body is buffered for debug
// logging. Larger bodies are logged by size only.
const maxLoggedBody = 16 << 10

// HTTPMiddleware assigns a request ID, times the request, attaches a
// contextual logger to the request context and emits one structured
// log line per request. Sensitive body fields and headers are masked
// before they reach the logs.
func HTTPMiddleware(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

			// Honour an upstream X-Request-ID if the proxy set one.
			reqID := r.Header.Get("X-Request-ID")
			if reqID == "" {
				reqID = idx.New().String()
			}

			logger := base.With(
				"req_id", reqID,
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
			)

			if logger.Enabled(r.Context(), slog.LevelDebug) {
				if body, ok := bufferBody(r); ok {
					logger.Debug("http_request_body", "body", maskedBody(body))
				}
			}

			ctx := WithContext(r.Context(), logger)
			r = r.WithContext(ctx)

			w.Header().Set("X-Request-ID", reqID)
			next.ServeHTTP(rw, r)

			duration := time.Since(start).Milliseconds()
			attrs := []any{
				"status", rw.status,
				"duration_ms", duration,
				"user_agent", MaskHeader("User-Agent", r.UserAgent()),
			}

			switch {
			case rw.status >= 500:
				logger.Error("http_request", attrs...)
			case rw.status >= 400:
				logger.Warn("http_request", attrs...)
			default:
				logger.Info("http_request", attrs...)
			}
		})
	}
}

// bufferBody reads and restores the request body for mutating methods
// so it can be logged. Returns false when there is nothing useful to
// log.
func bufferBody(r *http.Request) ([]byte, bool) {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
	default:
		return nil, false
	}
	if r.Body == nil {
		return nil, false
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxLoggedBody+1))
	if err != nil {
		return nil, false
	}
	rest, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), bytes.NewReader(rest)))

	if len(body) == 0 || len(body) > maxLoggedBody {
		return nil, false
	}
	return body, true
}

// maskedBody renders a JSON body with sensitive fields masked. Bodies
// that are not JSON objects are summarised by size only.
func maskedBody(body []byte) any {
	var payload map[string]any
	dec := json.NewDecoder(strings.NewReader(string(body)))
	if err := dec.Decode(&payload); err != nil {
		return slog.GroupValue(slog.Int("bytes", len(body)))
	}
	return MaskFields(payload)
}

type responseWriter struct {
	http.ResponseWriter

	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
