package discovery

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type countingScanner struct {
	mu    sync.Mutex
	calls int
	files []File
	err   error
	delay time.Duration
}

func (s *countingScanner) Scan(ctx context.Context) ([]File, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.files, s.err
}

func (s *countingScanner) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestCacheSingleFlight(t *testing.T) {
	scanner := &countingScanner{
		files: []File{{ProjectName: "web", Path: "/srv/web/compose.yaml"}},
		delay: 50 * time.Millisecond,
	}
	cache := NewCache(scanner, time.Minute)

	const callers = 8
	results := make([][]File, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = cache.GetOrScan(context.Background(), false)
		}()
	}
	wg.Wait()

	if got := scanner.count(); got != 1 {
		t.Fatalf("scanner calls = %d, want 1", got)
	}
	for i := range callers {
		if errs[i] != nil {
			t.Fatalf("caller %d error = %v", i, errs[i])
		}
		if len(results[i]) != 1 || results[i][0].ProjectName != "web" {
			t.Fatalf("caller %d result = %+v", i, results[i])
		}
	}
}

func TestCacheHitSkipsScan(t *testing.T) {
	scanner := &countingScanner{files: []File{{ProjectName: "web"}}}
	cache := NewCache(scanner, time.Minute)

	for range 3 {
		if _, err := cache.GetOrScan(context.Background(), false); err != nil {
			t.Fatalf("GetOrScan() error = %v", err)
		}
	}
	if got := scanner.count(); got != 1 {
		t.Fatalf("scanner calls = %d, want 1", got)
	}
}

func TestCacheBypass(t *testing.T) {
	scanner := &countingScanner{files: []File{{ProjectName: "web"}}}
	cache := NewCache(scanner, time.Minute)

	if _, err := cache.GetOrScan(context.Background(), false); err != nil {
		t.Fatalf("GetOrScan() error = %v", err)
	}
	if _, err := cache.GetOrScan(context.Background(), true); err != nil {
		t.Fatalf("GetOrScan(bypass) error = %v", err)
	}
	if got := scanner.count(); got != 2 {
		t.Fatalf("scanner calls = %d, want 2", got)
	}
}

func TestCacheInvalidate(t *testing.T) {
	scanner := &countingScanner{files: []File{{ProjectName: "web"}}}
	cache := NewCache(scanner, time.Minute)

	if _, err := cache.GetOrScan(context.Background(), false); err != nil {
		t.Fatalf("GetOrScan() error = %v", err)
	}
	cache.Invalidate()
	if _, err := cache.GetOrScan(context.Background(), false); err != nil {
		t.Fatalf("GetOrScan() error = %v", err)
	}
	if got := scanner.count(); got != 2 {
		t.Fatalf("scanner calls = %d, want 2", got)
	}
}

func TestCacheTTLExpiry(t *testing.T) {
	scanner := &countingScanner{files: []File{{ProjectName: "web"}}}
	cache := NewCache(scanner, 30*time.Second)

	current := time.Unix(1000, 0)
	cache.now = func() time.Time { return current }

	if _, err := cache.GetOrScan(context.Background(), false); err != nil {
		t.Fatalf("GetOrScan() error = %v", err)
	}

	current = current.Add(10 * time.Second)
	if _, err := cache.GetOrScan(context.Background(), false); err != nil {
		t.Fatalf("GetOrScan() error = %v", err)
	}
	if got := scanner.count(); got != 1 {
		t.Fatalf("scanner calls before expiry = %d, want 1", got)
	}

	current = current.Add(time.Minute)
	if _, err := cache.GetOrScan(context.Background(), false); err != nil {
		t.Fatalf("GetOrScan() error = %v", err)
	}
	if got := scanner.count(); got != 2 {
		t.Fatalf("scanner calls after expiry = %d, want 2", got)
	}
}

func TestCacheScannerFailure(t *testing.T) {
	boom := errors.New("disk on fire")
	scanner := &countingScanner{err: boom}
	cache := NewCache(scanner, time.Minute)

	if _, err := cache.GetOrScan(context.Background(), false); !errors.Is(err, boom) {
		t.Fatalf("GetOrScan() error = %v, want %v", err, boom)
	}

	// The failure must not be cached: the next call retries.
	scanner.err = nil
	scanner.files = []File{{ProjectName: "web"}}
	files, err := cache.GetOrScan(context.Background(), false)
	if err != nil {
		t.Fatalf("GetOrScan() after failure error = %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("files = %+v, want one entry", files)
	}
	if got := scanner.count(); got != 2 {
		t.Fatalf("scanner calls = %d, want 2", got)
	}
}
