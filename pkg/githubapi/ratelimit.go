package githubapi

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// preemptiveThreshold is the remaining-quota count at or below which the
// tracker advises waiting for the reset instead of spending the last
// requests and tripping a 403.
const preemptiveThreshold = 1

// RateLimit tracks the most recent quota snapshot observed from response
// headers. The last writer wins; requests on a single fetch branch are
// issued sequentially, so "most recent response" is well defined. It is
// safe for concurrent use by parallel top-level operations.
type RateLimit struct {
	mu        sync.Mutex
	remaining int
	limit     int
	resetAt   time.Time
	observed  bool
}

// Observe overwrites the snapshot with values from the latest response.
func (r *RateLimit) Observe(remaining, limit int, resetAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.remaining = remaining
	r.limit = limit
	r.resetAt = resetAt
	r.observed = true
}

// Snapshot returns the last observed quota values. ok is false if no
// rate-limited response has been seen yet.
func (r *RateLimit) Snapshot() (remaining, limit int, resetAt time.Time, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remaining, r.limit, r.resetAt, r.observed
}

// PreemptiveWait returns a non-zero duration when the remaining quota is
// nearly exhausted and the reset time is still in the future. The value is
// advisory; the executor decides whether to honor it.
func (r *RateLimit) PreemptiveWait() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.observed || r.limit == 0 || r.remaining > preemptiveThreshold {
		return 0
	}
	until := time.Until(r.resetAt)
	if until <= 0 {
		return 0
	}
	return until + quotaSafetyMargin
}

// parseRateHeaders extracts the GitHub quota headers from a response.
// ok is false when the response carries no rate-limit information.
func parseRateHeaders(h http.Header) (remaining, limit int, resetAt time.Time, ok bool) {
	limStr := h.Get("X-RateLimit-Limit")
	remStr := h.Get("X-RateLimit-Remaining")
	if limStr == "" && remStr == "" {
		return 0, 0, time.Time{}, false
	}
	limit, _ = strconv.Atoi(limStr)
	remaining, _ = strconv.Atoi(remStr)
	if epoch, err := strconv.ParseInt(h.Get("X-RateLimit-Reset"), 10, 64); err == nil {
		resetAt = time.Unix(epoch, 0)
	}
	return remaining, limit, resetAt, true
}
