package githubapi

import (
	"net/http"
	"testing"
	"time"
)

func TestRateLimitObserveLastWriterWins(t *testing.T) {
	rl := &RateLimit{}

	if _, _, _, ok := rl.Snapshot(); ok {
		t.Error("Snapshot reported observed before any Observe")
	}

	reset := time.Now().Add(time.Hour)
	rl.Observe(100, 5000, reset)
	rl.Observe(99, 5000, reset)

	remaining, limit, gotReset, ok := rl.Snapshot()
	if !ok {
		t.Fatal("Snapshot reported not observed after Observe")
	}
	if remaining != 99 || limit != 5000 || !gotReset.Equal(reset) {
		t.Errorf("Snapshot = (%d, %d, %v)", remaining, limit, gotReset)
	}
}

func TestRateLimitPreemptiveWait(t *testing.T) {
	tests := []struct {
		name      string
		remaining int
		limit     int
		resetIn   time.Duration
		wantWait  bool
	}{
		{
			name:      "plenty of quota",
			remaining: 4000,
			limit:     5000,
			resetIn:   time.Hour,
			wantWait:  false,
		},
		{
			name:      "exhausted with future reset",
			remaining: 0,
			limit:     5000,
			resetIn:   30 * time.Second,
			wantWait:  true,
		},
		{
			name:      "last request with future reset",
			remaining: 1,
			limit:     5000,
			resetIn:   30 * time.Second,
			wantWait:  true,
		},
		{
			name:      "exhausted but reset already passed",
			remaining: 0,
			limit:     5000,
			resetIn:   -time.Minute,
			wantWait:  false,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			rl := &RateLimit{}
			rl.Observe(tt.remaining, tt.limit, time.Now().Add(tt.resetIn))

			wait := rl.PreemptiveWait()
			if tt.wantWait && wait <= 0 {
				t.Errorf("PreemptiveWait() = %s, want positive", wait)
			}
			if !tt.wantWait && wait != 0 {
				t.Errorf("PreemptiveWait() = %s, want 0", wait)
			}
			if tt.wantWait && wait < tt.resetIn {
				t.Errorf("PreemptiveWait() = %s, want at least %s", wait, tt.resetIn)
			}
		})
	}
}

func TestParseRateHeaders(t *testing.T) {
	h := http.Header{}
	if _, _, _, ok := parseRateHeaders(h); ok {
		t.Error("parseRateHeaders reported ok with no quota headers")
	}

	h.Set("X-RateLimit-Remaining", "42")
	h.Set("X-RateLimit-Limit", "5000")
	h.Set("X-RateLimit-Reset", "1700000000")

	remaining, limit, resetAt, ok := parseRateHeaders(h)
	if !ok {
		t.Fatal("parseRateHeaders reported not ok")
	}
	if remaining != 42 || limit != 5000 {
		t.Errorf("parseRateHeaders = (%d, %d)", remaining, limit)
	}
	if resetAt.Unix() != 1700000000 {
		t.Errorf("resetAt = %v, want epoch 1700000000", resetAt)
	}
}
