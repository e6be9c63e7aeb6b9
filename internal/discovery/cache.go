package discovery

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"dockfleet/internal/logging"
)

// Cache wraps a Scanner with a TTL-bounded, single-flight cache.
//
// Reads of a fresh entry are lock-free. A miss takes the scan mutex,
// re-checks the entry, and only then scans, so concurrent callers that
// arrive during a scan share its result instead of scanning again.
// Construct one per process; tests can instantiate independent caches.
type Cache struct {
	scanner Scanner
	ttl     time.Duration
	now     func() time.Time
	log     *slog.Logger

	scanMu  sync.Mutex
	current atomic.Pointer[cacheEntry]
}

type cacheEntry struct {
	files   []File
	expires time.Time
}

// NewCache creates a cache over scanner with the given entry lifetime.
func NewCache(scanner Scanner, ttl time.Duration) *Cache {
	return &Cache{
		scanner: scanner,
		ttl:     ttl,
		now:     time.Now,
		log:     logging.Component("discovery"),
	}
}

// GetOrScan returns the cached file list, scanning when the entry is
// missing or expired. bypass evicts the entry first, forcing a fresh scan.
// A scanner failure propagates to the caller and leaves the cache empty so
// the next call retries.
func (c *Cache) GetOrScan(ctx context.Context, bypass bool) ([]File, error) {
	if bypass {
		c.current.Store(nil)
	} else if e := c.fresh(); e != nil {
		return e.files, nil
	}

	c.scanMu.Lock()
	defer c.scanMu.Unlock()

	// Double-check: another caller may have completed a scan while this
	// one waited on the mutex.
	if e := c.fresh(); e != nil {
		return e.files, nil
	}

	started := c.now()
	files, err := c.scanner.Scan(ctx)
	if err != nil {
		return nil, err
	}
	c.current.Store(&cacheEntry{files: files, expires: c.now().Add(c.ttl)})
	c.log.Debug("compose scan complete", "files", len(files), "took", c.now().Sub(started))
	return files, nil
}

// Invalidate evicts the cache entry without touching the scan mutex. The
// next GetOrScan triggers a fresh scan.
func (c *Cache) Invalidate() {
	c.current.Store(nil)
}

func (c *Cache) fresh() *cacheEntry {
	e := c.current.Load()
	if e == nil || c.now().After(e.expires) {
		return nil
	}
	return e
}
