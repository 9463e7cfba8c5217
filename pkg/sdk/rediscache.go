package sdk

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/newsdesk-dev/newsdesk-queue/pkg/schema"
)

// redisKeyspace namespaces dashboard cache entries in a shared Redis.
const redisKeyspace = "newsdesk:cache:"

// RedisCache is a ListCache backed by Redis, for deployments where several
// dashboard processes share one cache. Entries expire on their own as a
// backstop; the coordinator's invalidation remains the primary freshness
// mechanism.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache wraps an existing Redis client. A zero ttl means no expiry.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (r *RedisCache) Get(ctx context.Context, key string) (schema.ListResult, bool) {
	data, err := r.client.Get(ctx, redisKeyspace+key).Result()
	if err != nil {
		return schema.ListResult{}, false
	}
	var val schema.ListResult
	if err := json.Unmarshal([]byte(data), &val); err != nil {
		return schema.ListResult{}, false
	}
	return val, true
}

func (r *RedisCache) Set(ctx context.Context, key string, val schema.ListResult) {
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	r.client.Set(ctx, redisKeyspace+key, data, r.ttl)
}

func (r *RedisCache) Invalidate(ctx context.Context, prefix string) {
	keys, err := r.client.Keys(ctx, redisKeyspace+prefix+"*").Result()
	if err != nil || len(keys) == 0 {
		return
	}
	pipe := r.client.Pipeline()
	for _, k := range keys {
		pipe.Del(ctx, k)
	}
	pipe.Exec(ctx)
}

func (r *RedisCache) Keys(ctx context.Context, prefix string) []string {
	keys, err := r.client.Keys(ctx, redisKeyspace+prefix+"*").Result()
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k[len(redisKeyspace):])
	}
	return out
}
