package repository

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/okian/workpulse/internal/domain/model"
	"github.com/okian/workpulse/pkg/metrics"
)

// LRUStore is a bounded in-memory Store.
type LRUStore struct {
	cache                 *lru.Cache[string, *model.Analysis]
	capacity              int
	metricsUpdateInterval time.Duration

	wg       sync.WaitGroup
	stopOnce sync.Once
	stopChan chan struct{}
}

// NewLRUStore constructs a store and starts its metrics updater, which runs
// until ctx is done or Close is called.
func NewLRUStore(ctx context.Context, opts ...Option) *LRUStore {
	s := &LRUStore{
		capacity:              512,
		metricsUpdateInterval: 5 * time.Second,
		stopChan:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	// lru.New only fails for a non-positive size.
	s.cache, _ = lru.New[string, *model.Analysis](s.capacity)

	s.startMetricsUpdater(ctx)
	return s
}

// Close stops the background metrics updater.
func (s *LRUStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

// Save implements Store.Save.
func (s *LRUStore) Save(_ context.Context, a *model.Analysis) error {
	if a == nil || a.ID == "" {
		return ErrInvalidID
	}
	s.cache.Add(a.ID, a)
	return nil
}

// Get implements Store.Get.
func (s *LRUStore) Get(_ context.Context, id string) (*model.Analysis, error) {
	a, ok := s.cache.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return a, nil
}

// List implements Store.List.
func (s *LRUStore) List(_ context.Context, limit int) ([]*model.Analysis, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	// Values are ordered oldest to newest.
	all := s.cache.Values()
	out := make([]*model.Analysis, 0, min(limit, len(all)))
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, all[i])
	}
	return out, nil
}

// Count implements Store.Count.
func (s *LRUStore) Count(_ context.Context) int {
	return s.cache.Len()
}

func (s *LRUStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				metrics.UpdateAnalysesStored(s.cache.Len())
			}
		}
	}()
}
