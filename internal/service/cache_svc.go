package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Slok9931/WriteStream/internal/middleware"
)

// Redis key TTLs. Article records only ever change through vote counts,
// so a short TTL bounds staleness even if an invalidation is missed.
const (
	ArticleCacheTTL   = 5 * time.Minute
	AnalyticsCacheTTL = time.Minute
)

// CacheService provides a Redis cache-aside layer for article and
// analytics lookups.
type CacheService struct {
	rdb *redis.Client
}

// NewCacheService creates a new CacheService. If redisURL is empty or the
// connection fails, it returns a CacheService with a nil client (cache
// operations become no-ops).
func NewCacheService(redisURL string) *CacheService {
	if redisURL == "" {
		middleware.Logger.Info().Msg("redis: no URL configured, caching disabled")
		return &CacheService{}
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		middleware.Logger.Warn().Err(err).Str("url", redisURL).Msg("redis: invalid URL, caching disabled")
		return &CacheService{}
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		middleware.Logger.Warn().Err(err).Msg("redis: connection failed, caching disabled")
		return &CacheService{}
	}

	middleware.Logger.Info().Msg("redis: connected, caching enabled")
	return &CacheService{rdb: rdb}
}

// Client returns the underlying Redis client (for health checks). May be nil.
func (c *CacheService) Client() *redis.Client {
	return c.rdb
}

// GetArticle retrieves a cached article response. Returns nil if not
// cached or cache is disabled.
func (c *CacheService) GetArticle(ctx context.Context, articleID uint64) ([]byte, error) {
	if c.rdb == nil {
		return nil, nil
	}
	data, err := c.rdb.Get(ctx, articleKey(articleID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return data, err
}

// SetArticle stores an article response in cache.
func (c *CacheService) SetArticle(ctx context.Context, articleID uint64, data interface{}) error {
	if c.rdb == nil {
		return nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, articleKey(articleID), b, ArticleCacheTTL).Err()
}

// InvalidateArticle removes an article from cache (called after votes
// and purchases).
func (c *CacheService) InvalidateArticle(ctx context.Context, articleID uint64) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, articleKey(articleID)).Err()
}

// GetAnalytics retrieves cached engagement totals. Returns nil if not cached.
func (c *CacheService) GetAnalytics(ctx context.Context, articleID uint64) ([]byte, error) {
	if c.rdb == nil {
		return nil, nil
	}
	data, err := c.rdb.Get(ctx, analyticsKey(articleID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return data, err
}

// SetAnalytics stores engagement totals in cache.
func (c *CacheService) SetAnalytics(ctx context.Context, articleID uint64, data interface{}) error {
	if c.rdb == nil {
		return nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, analyticsKey(articleID), b, AnalyticsCacheTTL).Err()
}

// InvalidateAnalytics removes engagement totals from cache.
func (c *CacheService) InvalidateAnalytics(ctx context.Context, articleID uint64) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, analyticsKey(articleID)).Err()
}

// Close shuts down the Redis connection.
func (c *CacheService) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

func articleKey(articleID uint64) string {
	return fmt.Sprintf("article:%d", articleID)
}

func analyticsKey(articleID uint64) string {
	return fmt.Sprintf("analytics:%d", articleID)
}
