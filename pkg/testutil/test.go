// Package testutil holds small helpers for HTTP-mock based tests.
package testutil

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// LoadBytes reads a fixture file from dir.
func LoadBytes(dir, name string) ([]byte, error) {
	path := filepath.Join(dir, name)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error loading file %s in directory %s, %v", name, dir, err)
	}
	return raw, nil
}

// RateLimitHeaders builds the quota headers GitHub attaches to responses.
func RateLimitHeaders(remaining, limit int, reset time.Time) map[string]string {
	return map[string]string{
		"X-RateLimit-Remaining": strconv.Itoa(remaining),
		"X-RateLimit-Limit":     strconv.Itoa(limit),
		"X-RateLimit-Reset":     strconv.FormatInt(reset.Unix(), 10),
	}
}

// WriteResponse writes a canned response with optional extra headers.
func WriteResponse(w http.ResponseWriter, status int, body []byte, headers map[string]string) {
	for k, v := range headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
