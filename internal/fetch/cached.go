// Package fetch - cached.go puts a small in-memory page cache in front of
// URL, so a scan followed by an extract (or a watch loop's repeated rescans)
// does not refetch the same document.
package fetch

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultCacheTTL bounds how long a fetched page stays reusable. Application
// forms change often; long retention only serves stale DOMs.
const DefaultCacheTTL = 10 * time.Minute

// CachedFetcher wraps URL fetching with an in-memory TTL cache.
type CachedFetcher struct {
	mu    sync.Mutex
	pages map[string]*cachedPage

	options   *Options
	cacheTTL  time.Duration
	skipCache bool // For testing or forcing fresh fetches
}

type cachedPage struct {
	id       uuid.UUID
	result   Result
	storedAt time.Time
}

// CachedFetcherConfig holds configuration for the cached fetcher.
type CachedFetcherConfig struct {
	CacheTTL  time.Duration
	SkipCache bool
	Options   *Options
}

// DefaultCachedFetcherConfig returns sensible defaults.
func DefaultCachedFetcherConfig() *CachedFetcherConfig {
	return &CachedFetcherConfig{
		CacheTTL:  DefaultCacheTTL,
		SkipCache: false,
		Options:   DefaultOptions(),
	}
}

// NewCachedFetcher creates a new cached fetcher.
func NewCachedFetcher(config *CachedFetcherConfig) *CachedFetcher {
	if config == nil {
		config = DefaultCachedFetcherConfig()
	}
	if config.Options == nil {
		config.Options = DefaultOptions()
	}
	if config.CacheTTL == 0 {
		config.CacheTTL = DefaultCacheTTL
	}
	return &CachedFetcher{
		pages:     make(map[string]*cachedPage),
		options:   config.Options,
		cacheTTL:  config.CacheTTL,
		skipCache: config.SkipCache,
	}
}

// CachedResult extends Result with cache metadata.
type CachedResult struct {
	*Result
	FromCache bool      // Whether this result came from cache
	PageID    uuid.UUID // Identity of the cached page, stable across hits
}

// Fetch retrieves a URL, returning the cached copy when one is fresh.
func (f *CachedFetcher) Fetch(ctx context.Context, urlStr string) (*CachedResult, error) {
	if !f.skipCache {
		if hit := f.lookup(urlStr); hit != nil {
			return hit, nil
		}
	}

	result, err := URL(ctx, urlStr, f.options)
	if err != nil {
		// Failures are never cached; the next attempt refetches.
		return nil, err
	}

	page := &cachedPage{id: uuid.New(), result: *result, storedAt: time.Now()}
	f.mu.Lock()
	f.pages[urlStr] = page
	f.mu.Unlock()

	return &CachedResult{Result: result, FromCache: false, PageID: page.id}, nil
}

// Invalidate drops a URL from the cache, forcing the next Fetch to go to the
// network. A watch-triggered rescan calls this so it sees the mutated page.
func (f *CachedFetcher) Invalidate(urlStr string) {
	f.mu.Lock()
	delete(f.pages, urlStr)
	f.mu.Unlock()
}

func (f *CachedFetcher) lookup(urlStr string) *CachedResult {
	f.mu.Lock()
	defer f.mu.Unlock()

	page, ok := f.pages[urlStr]
	if !ok {
		return nil
	}
	if time.Since(page.storedAt) > f.cacheTTL {
		delete(f.pages, urlStr)
		return nil
	}

	result := page.result
	return &CachedResult{Result: &result, FromCache: true, PageID: page.id}
}
