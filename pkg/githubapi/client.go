// Package githubapi implements the GitHub content fetcher: a retrying,
// cache-aware HTTP executor, a rate-limit tracker, a paginated collector,
// a budgeted recursive tree fetcher, and the typed repository façade built
// on top of them.
package githubapi

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/reporag/reporag/auth"
	"github.com/reporag/reporag/pkg/gitcache"
)

const (
	defaultBaseURL = "https://api.github.com"
	defaultTimeout = 30 * time.Second

	// defaultPageDelay keeps sequential page fetches under burst limits
	// independent of the formal quota.
	defaultPageDelay = 250 * time.Millisecond
)

// Options configures a Client. The zero value gives the public GitHub API,
// a 24h-TTL cache under CacheDir (".reporag/cache" when empty), and a 30s
// per-request timeout.
type Options struct {
	// BaseURL overrides the API root, mainly for tests and GitHub
	// Enterprise installs.
	BaseURL string

	// DisableCache turns off the disk cache entirely.
	DisableCache bool

	// CacheDir is where cache entries live, one file per fingerprint.
	CacheDir string

	// CacheTTL bounds how long a cached payload is served.
	CacheTTL time.Duration

	// HTTPTimeout bounds a single HTTP call (connect plus read). It does
	// not bound multi-page or multi-directory operations.
	HTTPTimeout time.Duration
}

// Stats counts what a client did. Partial failures (abandoned pages,
// skipped subtrees) surface here rather than as errors from the façade.
type Stats struct {
	RequestsMade    int64
	CacheHits       int64
	RateLimitHits   int64
	QuotaWaits      int64
	PagesAbandoned  int64
	SubtreesSkipped int64
}

type stats struct {
	requestsMade    atomic.Int64
	cacheHits       atomic.Int64
	rateLimitHits   atomic.Int64
	quotaWaits      atomic.Int64
	pagesAbandoned  atomic.Int64
	subtreesSkipped atomic.Int64
}

// Client is the repository content façade. All fetch operations share one
// cache store and one rate-limit tracker, both injected at construction so
// independent clients (different tokens, different quota contexts) never
// interfere.
type Client struct {
	id      *auth.ID
	base    string
	httpc   *http.Client
	cache   *gitcache.Store
	limits  *RateLimit
	retries int
	stats   stats

	// sleep and pageDelay are swapped out in tests so backoff and quota
	// waits are observable without real waiting.
	sleep     func(time.Duration)
	pageDelay time.Duration
}

// NewClient creates a client for the repository identified by id. When the
// ID carries a token the underlying transport authenticates every request
// with it.
func NewClient(ctx context.Context, id *auth.ID, opts Options) (*Client, error) {
	base := opts.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	timeout := opts.HTTPTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	httpc := &http.Client{Timeout: timeout}
	if id.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: id.Token})
		httpc = oauth2.NewClient(ctx, ts)
		httpc.Timeout = timeout
	}

	var cache *gitcache.Store
	if !opts.DisableCache {
		dir := opts.CacheDir
		if dir == "" {
			dir = ".reporag/cache"
		}
		var err error
		cache, err = gitcache.New(dir, opts.CacheTTL)
		if err != nil {
			return nil, err
		}
	}

	return &Client{
		id:        id,
		base:      base,
		httpc:     httpc,
		cache:     cache,
		limits:    &RateLimit{},
		retries:   maxRetries,
		sleep:     time.Sleep,
		pageDelay: defaultPageDelay,
	}, nil
}

// ID returns the repository identity this client fetches from.
func (c *Client) ID() *auth.ID { return c.id }

// RateLimits returns the shared rate-limit tracker.
func (c *Client) RateLimits() *RateLimit { return c.limits }

// Stats returns a snapshot of the client's usage counters.
func (c *Client) Stats() Stats {
	return Stats{
		RequestsMade:    c.stats.requestsMade.Load(),
		CacheHits:       c.stats.cacheHits.Load(),
		RateLimitHits:   c.stats.rateLimitHits.Load(),
		QuotaWaits:      c.stats.quotaWaits.Load(),
		PagesAbandoned:  c.stats.pagesAbandoned.Load(),
		SubtreesSkipped: c.stats.subtreesSkipped.Load(),
	}
}

// ClearCache removes every cached payload. It is a no-op when the cache is
// disabled.
func (c *Client) ClearCache() error {
	if c.cache == nil {
		return nil
	}
	if err := c.cache.Clear(); err != nil {
		return err
	}
	logrus.Infof("cache cleared for %s", c.id)
	return nil
}

func (c *Client) repoURL(suffix string) string {
	return c.base + "/repos/" + c.id.Owner + "/" + c.id.Repo + suffix
}
