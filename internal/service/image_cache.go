package service

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const imageCachePrefix = "image:ingredient:"

// RedisImageCache keeps resolved ingredient image URLs in Redis
type RedisImageCache struct {
	client *redis.Client
}

func NewRedisImageCache(client *redis.Client) *RedisImageCache {
	return &RedisImageCache{client: client}
}

func (c *RedisImageCache) Get(ctx context.Context, ingredient string) (string, bool, error) {
	val, err := c.client.Get(ctx, imageCachePrefix+ingredient).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (c *RedisImageCache) Set(ctx context.Context, ingredient, url string, ttl time.Duration) error {
	return c.client.Set(ctx, imageCachePrefix+ingredient, url, ttl).Err()
}
