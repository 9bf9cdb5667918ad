package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisCounter struct {
	client *redis.Client
	prefix string
}

func NewRedisCounter(addr, password string, db int) *RedisCounter {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewRedisCounterFromClient(rdb)
}

func NewRedisCounterFromClient(client *redis.Client) *RedisCounter {
	return &RedisCounter{
		client: client,
		prefix: "ratelimit:",
	}
}

func (r *RedisCounter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Incr bumps the key and arms its expiry on the first hit of a window.
func (r *RedisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	k := r.prefix + key

	n, err := r.client.Incr(ctx, k).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incr %s: %w", k, err)
	}
	if n == 1 {
		if err := r.client.Expire(ctx, k, window).Err(); err != nil {
			return n, fmt.Errorf("redis expire %s: %w", k, err)
		}
	}
	return n, nil
}

func (r *RedisCounter) Close() error {
	return r.client.Close()
}
