package nonce

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/xela07ax/airplane-mode/internal/infra"
)

// Redis хранит токены с TTL, поэтому их видят все инстансы шлюза.
type Redis struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedis(rdb redis.Cmdable, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{rdb: rdb, ttl: ttl}
}

func (r *Redis) Issue(ctx context.Context, action, subject string) (string, error) {
	token := newToken()
	ok, err := r.rdb.SetNX(ctx, infra.NonceKey(action, subject, token), "1", r.ttl).Result()
	if err != nil {
		return "", fmt.Errorf("redis: failed to issue nonce: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("redis: nonce collision for action %s", action)
	}
	return token, nil
}

// Consume использует GETDEL: из двух параллельных запросов с одним токеном успех получит только один.
func (r *Redis) Consume(ctx context.Context, action, subject, token string) (bool, error) {
	token = normalize(token)
	if token == "" {
		return false, nil
	}
	err := r.rdb.GetDel(ctx, infra.NonceKey(action, subject, token)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis: failed to consume nonce: %w", err)
	}
	return true, nil
}
