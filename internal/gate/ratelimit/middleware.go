package ratelimit

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/socialfin/authgate/pkg/httpx"
)

// Middleware enforces the limiter's windows for every request. Usage
// headers are advisory and written best effort; enforcement happens on
// the counters alone.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d := l.Admit(r.Context(), httpx.ClientIdentity(r))

		writeUsageHeaders(w, d)

		if !d.Allowed {
			w.Header().Set("Retry-After", strconv.Itoa(ceilSeconds(d.RetryAfter)))
			httpx.WriteError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeUsageHeaders(w http.ResponseWriter, d Decision) {
	for _, u := range d.Usage {
		if u.Window.Header == "" {
			continue
		}

		w.Header().Set("X-RateLimit-Limit-"+u.Window.Header, strconv.FormatInt(u.Window.Limit, 10))
		w.Header().Set("X-RateLimit-Remaining-"+u.Window.Header, strconv.FormatInt(u.Remaining, 10))

		// Reset is the absolute unix time the first labeled window
		// lapses, the shortest one in the default configuration. A
		// failed expiry read omits the header instead of guessing.
		if u.Reset > 0 && w.Header().Get("X-RateLimit-Reset") == "" {
			resetAt := time.Now().Unix() + int64(ceilSeconds(u.Reset))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt, 10))
		}
	}
}

func ceilSeconds(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}
