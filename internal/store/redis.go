package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/xela07ax/airplane-mode/internal/infra"
)

// Redis хранит настройки строками под префиксом infra.RedisKeyOptions.
type Redis struct {
	rdb redis.Cmdable
}

func NewRedis(rdb redis.Cmdable) *Redis {
	return &Redis{rdb: rdb}
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.rdb.Get(ctx, infra.OptionKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis: failed to get option %s: %w", key, err)
	}
	return v, true, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	if err := r.rdb.Set(ctx, infra.OptionKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis: failed to set option %s: %w", key, err)
	}
	return nil
}

// Add использует SETNX, поэтому параллельные install не затирают уже выбранное значение.
func (r *Redis) Add(ctx context.Context, key, value string) (bool, error) {
	ok, err := r.rdb.SetNX(ctx, infra.OptionKey(key), value, 0).Result()
	if err != nil {
		return false, fmt.Errorf("redis: failed to add option %s: %w", key, err)
	}
	return ok, nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, infra.OptionKey(key)).Err(); err != nil {
		return fmt.Errorf("redis: failed to delete option %s: %w", key, err)
	}
	return nil
}
