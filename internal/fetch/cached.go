package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultPageCacheTTL is how long fetched page text stays cached.
const DefaultPageCacheTTL = 24 * time.Hour

const cacheKeyPrefix = "voiceapi:page:"

// redisOpTimeout bounds each cache round trip.
const redisOpTimeout = 2 * time.Second

// CachedFetcher wraps a PageFetcher with a Redis page-text cache. Redis failures
// fall through to the inner fetcher.
type CachedFetcher struct {
	client *redis.Client
	inner  PageFetcher
	ttl    time.Duration
	logger *zap.SugaredLogger
}

var _ PageFetcher = (*CachedFetcher)(nil)

// NewRedisClient parses a redis:// URL and returns a client.
func NewRedisClient(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse REDIS_URL: %w", err)
	}
	return redis.NewClient(opts), nil
}

// NewCachedFetcher creates a cache in front of inner. A zero ttl uses DefaultPageCacheTTL.
func NewCachedFetcher(client *redis.Client, inner PageFetcher, ttl time.Duration, logger *zap.SugaredLogger) *CachedFetcher {
	if ttl <= 0 {
		ttl = DefaultPageCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &CachedFetcher{client: client, inner: inner, ttl: ttl, logger: logger}
}

// CacheKey returns the Redis key for a page URL.
func CacheKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

// PageText returns cached text for url, fetching and storing it on a miss.
// Fetch errors are not cached.
func (f *CachedFetcher) PageText(ctx context.Context, url string) (string, error) {
	key := CacheKey(url)

	getCtx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	text, err := f.client.Get(getCtx, key).Result()
	cancel()
	switch {
	case err == nil:
		f.logger.Debugw("page cache hit", "url", url)
		return text, nil
	case errors.Is(err, redis.Nil):
		f.logger.Debugw("page cache miss", "url", url)
	default:
		f.logger.Warnw("page cache unavailable, fetching directly", "url", url, "error", err)
	}

	text, err = f.inner.PageText(ctx, url)
	if err != nil {
		return "", err
	}

	setCtx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()
	if err := f.client.Set(setCtx, key, text, f.ttl).Err(); err != nil {
		f.logger.Warnw("failed to cache page text", "url", url, "error", err)
	}
	return text, nil
}

// Close closes the Redis client.
func (f *CachedFetcher) Close() error {
	return f.client.Close()
}
