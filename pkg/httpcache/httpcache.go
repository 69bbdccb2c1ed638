// Package httpcache caches fetched profile pages with thundering herd prevention.
package httpcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/codeGROOVE-dev/sfcache"
	"github.com/codeGROOVE-dev/sfcache/pkg/store/localfs"
	"github.com/codeGROOVE-dev/sfcache/pkg/store/null"

	"github.com/codeGROOVE-dev/fanscope/pkg/extract"
	"github.com/codeGROOVE-dev/fanscope/pkg/fetch"
)

// DefaultTTL is how long a cached page stays fresh.
const DefaultTTL = 6 * time.Hour

// Cache wraps sfcache for page bodies.
type Cache struct {
	*sfcache.TieredCache[string, []byte]

	ttl time.Duration
}

// New creates a Cache with disk persistence under the user cache directory.
func New(ttl time.Duration) (*Cache, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = os.TempDir()
	}
	return NewWithPath(ttl, filepath.Join(cacheDir, "fanscope"))
}

// NewWithPath creates a Cache with disk persistence at cachePath.
func NewWithPath(ttl time.Duration, cachePath string) (*Cache, error) {
	if err := os.MkdirAll(cachePath, 0o750); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	store, err := localfs.New[string, []byte]("fanscope", cachePath)
	if err != nil {
		return nil, fmt.Errorf("create persistence layer: %w", err)
	}

	tc, err := sfcache.NewTiered[string, []byte](store, sfcache.TTL(ttl))
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}
	return &Cache{TieredCache: tc, ttl: ttl}, nil
}

// NewMemory creates a Cache that keeps entries in memory only.
func NewMemory(ttl time.Duration) (*Cache, error) {
	tc, err := sfcache.NewTiered[string, []byte](null.New[string, []byte](), sfcache.TTL(ttl))
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}
	return &Cache{TieredCache: tc, ttl: ttl}, nil
}

// TTL returns the default TTL for cache entries.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// URLToKey converts a URL to a filesystem-safe cache key.
func URLToKey(rawURL string) string {
	hash := sha256.Sum256([]byte(rawURL))
	return hex.EncodeToString(hash[:])
}

// Validator reports whether a fetched body is worth caching.
type Validator func(pageURL string, body []byte) bool

// CompleteProfile accepts pages from which both counts extract as valid.
// Pages that loaded without usable counts are usually bot walls or partial
// renders and must be fetched again.
func CompleteProfile(pageURL string, body []byte) bool {
	rec, err := extract.Page(context.Background(), body, pageURL, slog.New(slog.DiscardHandler))
	return err == nil && rec.Complete()
}

// Stats holds cache hit/miss counts.
type Stats struct {
	Hits   int64
	Misses int64
}

// HitRate returns the hit rate as a percentage (0-100).
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// Fetcher serves pages from a Cache, delegating misses to another Fetcher.
// Fetch errors are never cached.
type Fetcher struct {
	next     fetch.Fetcher
	cache    *Cache
	validate Validator
	logger   *slog.Logger
	hits     atomic.Int64
	misses   atomic.Int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) { f.logger = logger }
}

// WithValidator replaces the default CompleteProfile validator. A nil
// validator caches every successful fetch.
func WithValidator(v Validator) Option {
	return func(f *Fetcher) { f.validate = v }
}

// NewFetcher wraps next with cache.
func NewFetcher(next fetch.Fetcher, cache *Cache, opts ...Option) *Fetcher {
	f := &Fetcher{
		next:     next,
		cache:    cache,
		validate: CompleteProfile,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Stats returns the hit/miss counts so far.
func (f *Fetcher) Stats() Stats {
	return Stats{Hits: f.hits.Load(), Misses: f.misses.Load()}
}

// Fetch returns the cached page for url, or fetches and conditionally caches it.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*fetch.Page, error) {
	var fetched *fetch.Page
	body, err := f.cache.GetSet(ctx, URLToKey(url), func(ctx context.Context) ([]byte, error) {
		f.misses.Add(1)
		f.logger.InfoContext(ctx, "cache miss", "url", url)
		page, err := f.next.Fetch(ctx, url)
		if err != nil {
			return nil, err
		}
		fetched = page
		if f.validate != nil && !f.validate(url, page.Body) {
			f.logger.DebugContext(ctx, "skipping cache due to validation failure", "url", url)
			return nil, errNotCacheable
		}
		return page.Body, nil
	}, f.cache.TTL())

	switch {
	case fetched != nil && (err == nil || errors.Is(err, errNotCacheable)):
		return fetched, nil
	case errors.Is(err, errNotCacheable):
		// Shared an uncacheable in-flight load; fetch our own copy.
		return f.next.Fetch(ctx, url)
	case err != nil:
		return nil, err
	}

	f.hits.Add(1)
	f.logger.DebugContext(ctx, "cache hit", "url", url)
	return &fetch.Page{URL: url, Body: body, StatusCode: 200}, nil
}

var errNotCacheable = errors.New("page not cacheable")
