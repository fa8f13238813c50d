package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// RedisCache implementa Cache sobre un servidor Redis.
type RedisCache struct {
	client *redis.Client
}

var _ Cache = (*RedisCache)(nil)

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// unavailable envuelve cualquier error de transporte con el sentinel
// ErrCacheUnavailable para que los llamantes puedan degradar a miss.
func unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
}

func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil // cache miss
		}
		return false, unavailable(err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, val interface{}, ttlSecs int) error {
	data, err := json.Marshal(val)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key, data, secondsToDuration(ttlSecs)).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

func (c *RedisCache) FlushAll(ctx context.Context) error {
	if err := c.client.FlushAll(ctx).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

func (c *RedisCache) HGet(ctx context.Context, key, field string, dest interface{}) (bool, error) {
	data, err := c.client.HGet(ctx, key, field).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, unavailable(err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisCache) HSet(ctx context.Context, key, field string, val interface{}) error {
	data, err := json.Marshal(val)
	if err != nil {
		return err
	}
	if err := c.client.HSet(ctx, key, field, data).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

func (c *RedisCache) HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error) {
	n, err := c.client.HIncrBy(ctx, key, field, delta).Result()
	if err != nil {
		return 0, unavailable(err)
	}
	return n, nil
}

func (c *RedisCache) HExists(ctx context.Context, key, field string) (bool, error) {
	ok, err := c.client.HExists(ctx, key, field).Result()
	if err != nil {
		return false, unavailable(err)
	}
	return ok, nil
}

func (c *RedisCache) Expire(ctx context.Context, key string, ttlSecs int) error {
	if ttlSecs <= 0 {
		return nil
	}
	if err := c.client.Expire(ctx, key, secondsToDuration(ttlSecs)).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

func (c *RedisCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}
