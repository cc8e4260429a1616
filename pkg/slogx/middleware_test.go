package slogx_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/socialfin/authgate/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestHTTPMiddleware(t *testing.T) {
	t.Run("assigns a request ID header", func(t *testing.T) {
		logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

		handler := slogx.HTTPMiddleware(logger)(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			}),
		)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
		require.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("keeps an upstream request ID", func(t *testing.T) {
		logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

		handler := slogx.HTTPMiddleware(logger)(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}),
		)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "upstream-id")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, "upstream-id", rec.Header().Get("X-Request-ID"))
	})

	t.Run("logs the final status code", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))

		handler := slogx.HTTPMiddleware(logger)(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTeapot)
			}),
		)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/brew", nil))

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		require.Equal(t, float64(http.StatusTeapot), line["status"])
		require.Equal(t, "WARN", line["level"])
		require.Equal(t, "/brew", line["path"])
	})

	t.Run("masks body fields at debug level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

		var seenBody string
		handler := slogx.HTTPMiddleware(logger)(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				b, err := io.ReadAll(r.Body)
				require.NoError(t, err)
				seenBody = string(b)
			}),
		)

		body := `{"email":"a@x.com","password":"Abcd1234"}`
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(body))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		// Handler must still see the full body after buffering.
		require.JSONEq(t, body, seenBody)

		logged := buf.String()
		require.Contains(t, logged, slogx.Masked)
		require.NotContains(t, logged, "Abcd1234")
	})
}
