// Package credits memoizes TMDB credit lookups in a bounded LRU.
//
// The cache has no internal locking. Callers that share one Cache across
// goroutines must serialize access; the puzzle service does so by running one
// generation at a time.
package credits

import (
	"context"
	"log/slog"

	"github.com/hashicorp/golang-lru/v2/simplelru"

	"reelchain/internal/logging"
	"reelchain/internal/metrics"
	"reelchain/internal/services"
	"reelchain/internal/tmdb"
)

// DefaultCapacity matches the cache.credits_capacity default.
const DefaultCapacity = 128

// Fetcher loads credits on a cache miss.
type Fetcher interface {
	Credits(ctx context.Context, movieID int64) (tmdb.Credits, error)
}

// Cache is a capacity-bounded LRU of credits keyed by movie id.
type Cache struct {
	fetcher Fetcher
	lru     *simplelru.LRU[int64, tmdb.Credits]
	logger  *slog.Logger
}

// New creates a cache holding at most capacity records.
func New(fetcher Fetcher, capacity int, logger *slog.Logger) (*Cache, error) {
	if fetcher == nil {
		return nil, services.Wrap(services.ErrConfiguration, "credits", "new cache", "fetcher required", nil)
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	cache := &Cache{
		fetcher: fetcher,
		logger:  logging.NewComponentLogger(logger, "credits"),
	}
	lru, err := simplelru.NewLRU[int64, tmdb.Credits](capacity, cache.onEvict)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "credits", "new cache", "build lru", err)
	}
	cache.lru = lru
	return cache, nil
}

// Get returns credits for movieID, fetching and storing them on a miss.
// Non-positive ids yield empty credits without touching the cache.
func (c *Cache) Get(ctx context.Context, movieID int64) (tmdb.Credits, error) {
	if movieID <= 0 {
		return tmdb.Credits{Cast: []tmdb.Person{}, Crew: []tmdb.Person{}}, nil
	}
	if credits, ok := c.lru.Get(movieID); ok {
		metrics.RecordCacheEvent("hit")
		return credits, nil
	}
	metrics.RecordCacheEvent("miss")

	credits, err := c.fetcher.Credits(ctx, movieID)
	if err != nil {
		return tmdb.Credits{}, err
	}
	c.lru.Add(movieID, credits)
	return credits, nil
}

// Contains reports whether movieID is cached without changing recency.
func (c *Cache) Contains(movieID int64) bool {
	return c.lru.Contains(movieID)
}

// Len returns the number of cached records.
func (c *Cache) Len() int {
	return c.lru.Len()
}

// Purge drops every cached record.
func (c *Cache) Purge() {
	c.lru.Purge()
}

func (c *Cache) onEvict(movieID int64, _ tmdb.Credits) {
	metrics.RecordCacheEvent("evict")
	c.logger.Debug("evicted credits",
		logging.String(logging.FieldEventType, "credits_cache_evict"),
		logging.Int64(logging.FieldMovieID, movieID),
	)
}
