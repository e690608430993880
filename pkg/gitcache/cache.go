// Package gitcache implements a content-addressed, TTL-bounded disk cache
// for API responses. Entries are keyed by a fingerprint of the request
// (URL plus sorted query parameters) and stored one JSON file per
// fingerprint. A corrupt or expired entry is reported as a miss, never as
// an error.
package gitcache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultTTL is how long an entry is served before it is treated as absent.
const DefaultTTL = 24 * time.Hour

// Fingerprint computes the deterministic cache identity of a request.
// Query parameters are encoded in sorted key order, so two logically
// identical requests produce the same fingerprint regardless of how the
// caller assembled the parameter set.
func Fingerprint(rawurl string, params url.Values) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s?%s", rawurl, params.Encode())
	return hex.EncodeToString(h.Sum(nil))
}

type entry struct {
	StoredAt time.Time `json:"stored_at"`
	Payload  []byte    `json:"payload"`
}

// Store is a disk-backed cache. It is safe for concurrent use.
type Store struct {
	dir string
	ttl time.Duration

	mu sync.Mutex
}

// New creates a Store rooted at dir, creating the directory if needed.
// A non-positive ttl falls back to DefaultTTL.
func New(dir string, ttl time.Duration) (*Store, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("error creating cache directory %s: %v", dir, err)
	}
	return &Store{dir: dir, ttl: ttl}, nil
}

func (s *Store) path(fingerprint string) string {
	return filepath.Join(s.dir, fingerprint+".json")
}

// Get returns the cached payload for fingerprint, or ok=false if no entry
// exists, the entry has aged past the TTL, or the entry is unreadable.
// Expired entries are left on disk; they are replaced on the next Put or
// removed by Clear.
func (s *Store) Get(fingerprint string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path(fingerprint))
	if err != nil {
		return nil, false
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		logrus.Warnf("unreadable cache entry %s, treating as miss: %v", fingerprint, err)
		return nil, false
	}
	if time.Since(e.StoredAt) >= s.ttl {
		return nil, false
	}
	return e.Payload, true
}

// Put stores payload under fingerprint, silently overwriting any previous
// entry.
func (s *Store) Put(fingerprint string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(entry{StoredAt: time.Now(), Payload: payload})
	if err != nil {
		return fmt.Errorf("error encoding cache entry: %v", err)
	}
	if err := os.WriteFile(s.path(fingerprint), raw, 0o644); err != nil {
		return fmt.Errorf("error writing cache entry %s: %v", fingerprint, err)
	}
	return nil
}

// Clear physically removes every entry in the store.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("error reading cache directory %s: %v", s.dir, err)
	}
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, f.Name())); err != nil {
			return fmt.Errorf("error removing cache entry %s: %v", f.Name(), err)
		}
	}
	return nil
}
