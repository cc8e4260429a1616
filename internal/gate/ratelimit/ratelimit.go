// Package ratelimit implements fixed-window request limiting on a
// shared counter store. Counters are keyed by client identity and
// window kind; the first increment of a window arms its expiry, so a
// window resets by lapsing rather than by bookkeeping.
//
// The limiter fails open: if the counter store is unreachable the
// request is admitted and the fault is logged. Availability of the
// service is worth more than strict enforcement during an outage.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Window describes one fixed counting window.
type Window struct {
	// Name is the key segment for this window, e.g. "minute".
	Name string

	// Limit is the number of requests admitted per window.
	Limit int64

	// Per is the window length. The counter expires Per after its
	// first increment.
	Per time.Duration

	// Header is the label used in X-RateLimit-* response headers.
	// Windows with an empty Header are enforced silently.
	Header string
}

// Default windows. Login applies to credential submission only and is
// deliberately tight.
var (
	PerMinute = Window{Name: "minute", Limit: 60, Per: time.Minute, Header: "Minute"}
	PerHour   = Window{Name: "hour", Limit: 1000, Per: time.Hour, Header: "Hour"}
	Login     = Window{Name: "login", Limit: 5, Per: 5 * time.Minute}
)

// CounterStore is the shared counter backend. Incr must be atomic and
// must arm ttl only when the increment created the counter.
type CounterStore interface {
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	TTL(ctx context.Context, key string) (time.Duration, error)
}

// Usage reports the state of one window after an admission check.
// Windows whose counter read failed have no Usage entry at all; a
// failed read must not invent quota numbers. Reset is zero when the
// expiry could not be read.
type Usage struct {
	Window    Window
	Count     int64
	Remaining int64
	Reset     time.Duration
}

// Decision is the outcome of an admission check across all windows.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
	Usage      []Usage
}

// Limiter checks a client identity against a set of windows.
type Limiter struct {
	store   CounterStore
	logger  *slog.Logger
	windows []Window
}

func New(store CounterStore, logger *slog.Logger, windows ...Window) *Limiter {
	return &Limiter{store: store, logger: logger, windows: windows}
}

// Admit increments every window for the identity and reports whether
// the request may proceed. All windows are counted even when an
// earlier one rejects, so a burst exhausts the hour budget too.
func (l *Limiter) Admit(ctx context.Context, identity string) Decision {
	d := Decision{Allowed: true}

	for _, w := range l.windows {
		key := fmt.Sprintf("ratelimit:%s:%s", w.Name, identity)

		count, err := l.store.Incr(ctx, key, w.Per)
		if err != nil {
			// Fail open with no Usage entry: the caller gets no quota
			// headers for this window rather than fabricated ones.
			l.logger.WarnContext(ctx, "rate limit store unavailable, admitting request",
				"window", w.Name,
				"error", err,
			)
			continue
		}

		reset, err := l.store.TTL(ctx, key)
		if err != nil {
			reset = 0
		} else if reset <= 0 {
			// The increment armed the window just now.
			reset = w.Per
		}

		remaining := w.Limit - count
		if remaining < 0 {
			remaining = 0
		}
		d.Usage = append(d.Usage, Usage{Window: w, Count: count, Remaining: remaining, Reset: reset})

		if count > w.Limit {
			d.Allowed = false
			retry := reset
			if retry == 0 {
				retry = w.Per
			}
			if retry > d.RetryAfter {
				d.RetryAfter = retry
			}
		}
	}

	return d
}
