package http

import (
	"net/http"
	"time"

	"github.com/socialfin/authgate/pkg/httpx"
	"github.com/socialfin/authgate/pkg/slogx"
)

type healthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
}

// LivezHandler reports liveness. It answers 200 whenever the process
// is able to serve at all.
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, healthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}

// ReadyzHandler reports readiness. A failing probe answers 503 so load
// balancers stop routing here until the backing stores recover.
func ReadyzHandler(startTime time.Time, version string, ready func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ready != nil {
			if err := ready(); err != nil {
				slogx.FromContext(r.Context()).Warn("readiness probe failed", "error", err)
				httpx.WriteJSON(w, http.StatusServiceUnavailable, healthResponse{
					Status:  "unavailable",
					Uptime:  time.Since(startTime).String(),
					Version: version,
				})
				return
			}
		}

		httpx.WriteJSON(w, http.StatusOK, healthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}
