package redis

import (
	"context"
	"errors"

	"github.com/lingua-hub/lingua-learning-hub/internal/application/query"
	"github.com/lingua-hub/lingua-learning-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// STATS CACHE
// Read-side cache for per-user stats summaries. Writes go through the
// event-driven invalidator, so a cached summary is dropped as soon as
// the user saves or deletes progress; the TTL covers missed events.
// ══════════════════════════════════════════════════════════════════════════════

// StatsCache implements query.SummaryCache on top of Redis.
type StatsCache struct {
	cache *Cache
	log   *logger.Logger
}

// Compile-time interface check.
var _ query.SummaryCache = (*StatsCache)(nil)

// NewStatsCache creates a new StatsCache.
func NewStatsCache(cache *Cache, log *logger.Logger) *StatsCache {
	if log == nil {
		log = logger.Default()
	}
	return &StatsCache{
		cache: cache,
		log:   log.With(logger.Component("stats_cache")),
	}
}

// Get returns the cached summary for a user, or (nil, nil) on a miss.
// Connection failures are logged and reported as a miss so reads fall
// back to storage.
func (c *StatsCache) Get(ctx context.Context, userID string) (*query.StatsDTO, error) {
	var stats query.StatsDTO
	err := c.cache.Get(ctx, StatsKey(userID), &stats)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, nil
		}
		c.log.Warn("stats cache read failed",
			logger.UserID(userID),
			logger.Err(err),
		)
		return nil, nil
	}
	return &stats, nil
}

// Set stores the summary for a user with the default stats TTL.
func (c *StatsCache) Set(ctx context.Context, userID string, stats *query.StatsDTO) error {
	if stats == nil {
		return nil
	}
	if err := c.cache.Set(ctx, StatsKey(userID), stats, TTLStatsCache); err != nil {
		c.log.Warn("stats cache write failed",
			logger.UserID(userID),
			logger.Err(err),
		)
		return err
	}
	return nil
}

// Invalidate drops the cached summary for a user.
func (c *StatsCache) Invalidate(ctx context.Context, userID string) error {
	if err := c.cache.Delete(ctx, StatsKey(userID)); err != nil {
		c.log.Warn("stats cache invalidation failed",
			logger.UserID(userID),
			logger.Err(err),
		)
		return err
	}
	return nil
}
