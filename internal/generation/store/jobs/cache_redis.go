package jobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"datareplicator/internal/generation/models"
	"datareplicator/internal/generation/ports"
)

const cacheKeyPrefix = "replicator:job:"

// RedisCache decorates a JobStore with a read-through cache for terminal job
// results. In-flight results always come from the underlying store so callers
// never see stale progress.
type RedisCache struct {
	next   ports.JobStore
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisCache wraps the given store. A zero ttl caches without expiry.
func NewRedisCache(next ports.JobStore, client redis.Cmdable, ttl time.Duration) *RedisCache {
	return &RedisCache{next: next, client: client, ttl: ttl}
}

func (c *RedisCache) Save(ctx context.Context, result *models.GenerationJobResult) error {
	if err := c.next.Save(ctx, result); err != nil {
		return err
	}
	if result.Status.IsTerminal() {
		if payload, err := json.Marshal(result); err == nil {
			// Cache population is best effort; the store of record already
			// has the result.
			c.client.Set(ctx, cacheKeyPrefix+result.JobID, payload, c.ttl)
		}
	}
	return nil
}

func (c *RedisCache) Get(ctx context.Context, jobID string) (*models.GenerationJobResult, error) {
	payload, err := c.client.Get(ctx, cacheKeyPrefix+jobID).Bytes()
	if err == nil {
		var result models.GenerationJobResult
		if jsonErr := json.Unmarshal(payload, &result); jsonErr == nil {
			return &result, nil
		}
	}
	return c.next.Get(ctx, jobID)
}

func (c *RedisCache) List(ctx context.Context) ([]*models.GenerationJobResult, error) {
	return c.next.List(ctx)
}
