package repository

import "time"

// Option applies a configuration option to the LRUStore.
type Option func(*LRUStore)

// WithCapacity bounds the number of analyses kept; the least recently used
// one is evicted first. Non-positive values are ignored.
func WithCapacity(n int) Option {
	return func(s *LRUStore) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// WithMetricsUpdateInterval sets the interval for background metrics updates.
func WithMetricsUpdateInterval(interval time.Duration) Option {
	return func(s *LRUStore) {
		if interval > 0 {
			s.metricsUpdateInterval = interval
		}
	}
}
