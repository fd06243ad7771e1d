package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jonathan/talent-matcher/internal/ingestion"
	"github.com/jonathan/talent-matcher/internal/logging"
	"github.com/jonathan/talent-matcher/internal/metrics"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const cacheKeyPrefix = "embedding"

// NewRedisClient parses url and pings the server.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return rdb, nil
}

// CachedProvider serves repeated texts from Redis. Cache failures are logged
// and fall through to the wrapped provider.
type CachedProvider struct {
	next Provider
	rdb  *redis.Client
	ttl  time.Duration
	log  *zap.Logger
}

// NewCachedProvider wraps next with a Redis cache. A zero ttl keeps entries
// until evicted.
func NewCachedProvider(next Provider, rdb *redis.Client, ttl time.Duration, log *zap.Logger) *CachedProvider {
	return &CachedProvider{next: next, rdb: rdb, ttl: ttl, log: logging.OrNop(log)}
}

// Model returns the wrapped provider's model.
func (p *CachedProvider) Model() string {
	return p.next.Model()
}

// CacheKey returns the Redis key for a text embedded by model.
func CacheKey(model, text string) string {
	return fmt.Sprintf("%s:%s:%s", cacheKeyPrefix, model, ingestion.ContentHash(text))
}

// Embed returns a cached vector when present, otherwise embeds and stores it.
func (p *CachedProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	key := CacheKey(p.next.Model(), text)

	raw, err := p.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var vec []float32
		if jerr := json.Unmarshal(raw, &vec); jerr == nil && len(vec) > 0 {
			metrics.EmbeddingCacheLookups.WithLabelValues("hit").Inc()
			return vec, nil
		}
		p.log.Warn("discarding corrupt cached embedding", zap.String("key", key))
	case errors.Is(err, redis.Nil):
	default:
		p.log.Warn("embedding cache read failed", zap.Error(err))
	}
	metrics.EmbeddingCacheLookups.WithLabelValues("miss").Inc()

	vec, err := p.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(vec)
	if err != nil {
		return vec, nil
	}
	if err := p.rdb.Set(ctx, key, data, p.ttl).Err(); err != nil {
		p.log.Warn("embedding cache write failed", zap.Error(err))
	}
	return vec, nil
}
