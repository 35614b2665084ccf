package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"citizen-ai/internal/domain"
)

// RedisCache реализует domain.Cache через Redis.
type RedisCache struct {
	client redis.Cmdable
	prefix string
}

var _ domain.Cache = (*RedisCache)(nil)

// NewRedis создаёт кэш. Все ключи получают указанный префикс.
func NewRedis(client redis.Cmdable, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

// Once выполняет функцию, если ключ ещё не задан. При ошибке fn ключ снимается.
func (c *RedisCache) Once(ctx context.Context, key string, ttl time.Duration, fn func() error) (bool, error) {
	ok, err := c.client.SetNX(ctx, c.prefix+key, "1", ttl).Result()
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if err := fn(); err != nil {
		_ = c.client.Del(ctx, c.prefix+key).Err()
		return true, err
	}
	return true, nil
}
