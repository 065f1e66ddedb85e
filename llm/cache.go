package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CacheConfig configures the embedding cache
type CacheConfig struct {
	TTL       time.Duration
	KeyPrefix string
}

// DefaultCacheConfig returns the defaults used when no config is given
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{TTL: 24 * time.Hour, KeyPrefix: "lawchat:emb:"}
}

// CachedEmbedder memoizes embeddings in Redis. A nil client disables caching
type CachedEmbedder struct {
	next   Embedder
	redis  *goredis.Client
	config CacheConfig
	logger *zap.Logger
}

// NewCachedEmbedder wraps next with a Redis cache
func NewCachedEmbedder(next Embedder, redis *goredis.Client, config CacheConfig, logger *zap.Logger) *CachedEmbedder {
	if config.KeyPrefix == "" {
		config.KeyPrefix = DefaultCacheConfig().KeyPrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedEmbedder{next: next, redis: redis, config: config, logger: logger}
}

func (c *CachedEmbedder) cacheKey(text string, role EmbedRole, title string) string {
	h := sha256.New()
	h.Write([]byte(role))
	h.Write([]byte{0})
	h.Write([]byte(title))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return c.config.KeyPrefix + hex.EncodeToString(h.Sum(nil))
}

// Embed implements Embedder. Cache failures are logged and never fail the call
func (c *CachedEmbedder) Embed(ctx context.Context, text string, role EmbedRole, title string) ([]float32, error) {
	if c.redis == nil {
		return c.next.Embed(ctx, text, role, title)
	}

	key := c.cacheKey(text, role, title)
	data, err := c.redis.Get(ctx, key).Bytes()
	if err == nil {
		var vec []float32
		if err := json.Unmarshal(data, &vec); err == nil {
			c.logger.Debug("embedding cache hit", zap.String("key", key))
			return vec, nil
		}
	} else if err != goredis.Nil {
		c.logger.Warn("embedding cache read failed", zap.Error(err))
	}

	vec, err := c.next.Embed(ctx, text, role, title)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(vec); err == nil {
		if err := c.redis.Set(ctx, key, data, c.config.TTL).Err(); err != nil {
			c.logger.Warn("embedding cache write failed", zap.Error(err))
		}
	}
	return vec, nil
}
