package githubapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/reporag/reporag/pkg/gitcache"
)

const (
	// maxRetries bounds attempts for a single logical request.
	maxRetries = 5

	// quotaSafetyMargin is added on top of the advertised reset time before
	// retrying after confirmed quota exhaustion.
	quotaSafetyMargin = 2 * time.Second

	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes = 16 << 20
)

// FatalError reports a response that will never succeed by retrying:
// bad credentials, a missing resource, or a malformed request.
type FatalError struct {
	Status  int
	Message string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("request failed with status %d: %s", e.Status, e.Message)
}

// RetryExhaustedError reports a transient failure that persisted through
// every attempt. Callers decide whether to treat it as absence (end of
// pagination, skipped subtree) or a hard failure.
type RetryExhaustedError struct {
	Attempts int
	Last     error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("giving up after %d attempts: %v", e.Attempts, e.Last)
}

func (e *RetryExhaustedError) Unwrap() error { return e.Last }

// fatalStatus reports whether a status code indicates the request itself is
// invalid or unauthorized and must not be retried.
func fatalStatus(code int) bool {
	return code == http.StatusUnauthorized ||
		code == http.StatusNotFound ||
		code == http.StatusUnprocessableEntity
}

// backoff returns 2^attempt seconds plus up to one second of jitter.
func backoff(attempt int) time.Duration {
	jitter := time.Duration(rand.Int63n(int64(time.Second)))
	return time.Duration(1<<uint(attempt))*time.Second + jitter
}

// execute issues one logical HTTP request against the API and returns the
// raw response payload. GET responses are served from and written to the
// cache when cacheAllowed is set. Transport errors, quota exhaustion, and
// retryable statuses are handled in the loop; the error returned is either
// a *FatalError or a *RetryExhaustedError.
func (c *Client) execute(ctx context.Context, method, rawurl string, params url.Values, body interface{}, cacheAllowed bool) ([]byte, error) {
	useCache := method == http.MethodGet && cacheAllowed && c.cache != nil
	fingerprint := ""
	if useCache {
		fingerprint = gitcache.Fingerprint(rawurl, params)
		if payload, ok := c.cache.Get(fingerprint); ok {
			c.stats.cacheHits.Add(1)
			logrus.Debugf("cache hit for %s", rawurl)
			return payload, nil
		}
	}

	c.stats.requestsMade.Add(1)

	var lastErr error
	for attempt := 0; attempt < c.retries; {
		if wait := c.limits.PreemptiveWait(); wait > 0 {
			logrus.Infof("rate limit nearly exhausted, waiting %s before %s", wait, rawurl)
			c.stats.quotaWaits.Add(1)
			c.sleep(wait)
		}

		resp, err := c.do(ctx, method, rawurl, params, body)
		if err != nil {
			if ctx.Err() != nil {
				return nil, &RetryExhaustedError{Attempts: attempt + 1, Last: ctx.Err()}
			}
			lastErr = err
			logrus.Warnf("request to %s failed (attempt %d/%d): %v", rawurl, attempt+1, c.retries, err)
			c.sleep(backoff(attempt))
			attempt++
			continue
		}

		payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		resp.Body.Close()
		if err != nil {
			lastErr = err
			c.sleep(backoff(attempt))
			attempt++
			continue
		}

		if remaining, limit, resetAt, ok := parseRateHeaders(resp.Header); ok {
			c.limits.Observe(remaining, limit, resetAt)
		}

		switch {
		case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
			if useCache {
				if err := c.cache.Put(fingerprint, payload); err != nil {
					logrus.Warnf("failed to cache response for %s: %v", rawurl, err)
				}
			}
			return payload, nil

		case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests:
			c.stats.rateLimitHits.Add(1)
			remaining, _, resetAt, observed := c.limits.Snapshot()

			// Confirmed quota exhaustion: wait out the reset. This wait
			// does not count against the attempt budget.
			if observed && remaining == 0 && time.Until(resetAt) > 0 {
				wait := time.Until(resetAt) + quotaSafetyMargin
				logrus.Warnf("rate limit exhausted, sleeping %s until reset", wait)
				c.stats.quotaWaits.Add(1)
				c.sleep(wait)
				lastErr = fmt.Errorf("rate limited (status %d)", resp.StatusCode)
				continue
			}

			if after := resp.Header.Get("Retry-After"); after != "" {
				if secs, err := strconv.Atoi(after); err == nil {
					logrus.Warnf("server requested a %ds pause before retrying %s", secs, rawurl)
					c.sleep(time.Duration(secs) * time.Second)
					lastErr = fmt.Errorf("rate limited (status %d)", resp.StatusCode)
					attempt++
					continue
				}
			}

			lastErr = fmt.Errorf("rate limited (status %d): %s", resp.StatusCode, apiMessage(payload))
			c.sleep(backoff(attempt))
			attempt++

		case fatalStatus(resp.StatusCode):
			return nil, &FatalError{Status: resp.StatusCode, Message: apiMessage(payload)}

		default:
			lastErr = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, apiMessage(payload))
			logrus.Warnf("request to %s: %v (attempt %d/%d)", rawurl, lastErr, attempt+1, c.retries)
			c.sleep(backoff(attempt))
			attempt++
		}
	}

	return nil, &RetryExhaustedError{Attempts: c.retries, Last: lastErr}
}

// do performs a single HTTP round trip.
func (c *Client) do(ctx context.Context, method, rawurl string, params url.Values, body interface{}) (*http.Response, error) {
	u := rawurl
	if len(params) > 0 {
		u = rawurl + "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("error encoding request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.httpc.Do(req)
}

// apiMessage pulls the "message" field out of an API error payload.
func apiMessage(payload []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload, &body); err != nil || body.Message == "" {
		return "no error details"
	}
	return body.Message
}
