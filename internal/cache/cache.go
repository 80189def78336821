// Package cache provides a TTL-bounded cache of computed dense series, keyed
// by the full request fingerprint. Plotting clients poll the same windows
// repeatedly; the archive only gains a row every few minutes.
package cache

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/cmatteri/wxplot/internal/plot"
)

// Series caches dense series results.
type Series struct {
	c   *ristretto.Cache[string, plot.DenseSeries]
	ttl time.Duration
}

// New creates a Series cache holding up to maxEntries results for ttl each.
func New(maxEntries int64, ttl time.Duration) (*Series, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, plot.DenseSeries]{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create series cache: %w", err)
	}
	return &Series{c: c, ttl: ttl}, nil
}

// Key builds the cache key for a request. Every field that influences the
// result participates, so two requests share an entry only when their series
// are identical.
func Key(binding string, opts plot.Options) string {
	return fmt.Sprintf("%s|%s|%d|%d|%s|%d|%t",
		binding, opts.Observation, opts.Timespan.Start, opts.Timespan.Stop,
		opts.Aggregate, opts.IntervalSecs, opts.UnixIntervals)
}

// Get returns the cached series for key, if present and unexpired.
func (s *Series) Get(key string) (plot.DenseSeries, bool) {
	return s.c.Get(key)
}

// Put stores a series under key.
func (s *Series) Put(key string, series plot.DenseSeries) {
	s.c.SetWithTTL(key, series, 1, s.ttl)
}

// Wait blocks until buffered writes are applied. Tests use it to make Put
// synchronous.
func (s *Series) Wait() {
	s.c.Wait()
}

// Close releases the cache's resources.
func (s *Series) Close() {
	s.c.Close()
}
