package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	sharedCache "github.com/davicafu/reservalab/internal/shared/infra/platform/cache"
)

// RedisEventCache guarda eventos serializados en Redis. Los eventos son el
// dato más leído de la plataforma y el que más se beneficia del cache-aside.
type RedisEventCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisEventCache(client *redis.Client, ttl time.Duration) *RedisEventCache {
	return &RedisEventCache{client: client, ttl: ttl}
}

var _ sharedCache.Cache = (*RedisEventCache)(nil)

func (c *RedisEventCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil // cache miss
		}
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisEventCache) Set(ctx context.Context, key string, val interface{}, ttlSecs int) error {
	data, err := json.Marshal(val)
	if err != nil {
		return err
	}
	ttl := c.ttl
	if ttlSecs > 0 {
		ttl = time.Duration(ttlSecs) * time.Second
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c *RedisEventCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}
