// Package dedupe tracks input fingerprints so identical uploads map to the
// analysis that already covers them.
package dedupe

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Deduper maps submission fingerprints to analysis IDs.
type Deduper interface {
	// SeenAndRecord atomically looks fingerprint up and records id for it if
	// absent. It returns the ID already bound to fingerprint and true, or
	// id and false when the fingerprint was newly recorded.
	SeenAndRecord(ctx context.Context, fingerprint, id string) (string, bool)

	// Unrecord forgets fingerprint so the same input can be submitted again.
	// Used when a submission was recorded but could not be queued.
	Unrecord(ctx context.Context, fingerprint string)

	Size() int64
}

// inMemoryDeduper keeps the most recently used fingerprints.
// For bounded mode (maxSize > 0) an LRU evicts the least recently seen entry.
// For unbounded mode (maxSize <= 0) a plain map is used.
type inMemoryDeduper struct {
	mu      sync.Mutex
	maxSize int
	cache   *lru.Cache[string, string]
	seen    map[string]string
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: 1024,
	}
	for _, opt := range opts {
		opt(d)
	}

	if d.maxSize > 0 {
		// lru.New only fails for a non-positive size.
		d.cache, _ = lru.New[string, string](d.maxSize)
	} else {
		d.seen = make(map[string]string)
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, fingerprint, id string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cache != nil {
		if existing, ok := d.cache.Get(fingerprint); ok {
			return existing, true
		}
		d.cache.Add(fingerprint, id)
		return id, false
	}

	if existing, ok := d.seen[fingerprint]; ok {
		return existing, true
	}
	d.seen[fingerprint] = id
	return id, false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, fingerprint string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cache != nil {
		d.cache.Remove(fingerprint)
		return
	}
	delete(d.seen, fingerprint)
}

// Size returns the current number of entries in the deduper.
func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cache != nil {
		return int64(d.cache.Len())
	}
	return int64(len(d.seen))
}
