package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xela07ax/airplane-mode/internal/infra"
)

// Интеграционные тесты идут только при заданном AIRMDE_TEST_REDIS_ADDR.
func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("AIRMDE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("AIRMDE_TEST_REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { rdb.Close() })
	require.NoError(t, rdb.Ping(context.Background()).Err())
	return rdb
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	rdb := testRedis(t)
	s := NewRedis(rdb)
	key := "test-" + time.Now().Format("150405.000000000")
	t.Cleanup(func() { s.Delete(ctx, key) })

	_, ok, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	added, err := s.Add(ctx, key, "on")
	require.NoError(t, err)
	assert.True(t, added)
	added, err = s.Add(ctx, key, "off")
	require.NoError(t, err)
	assert.False(t, added)

	require.NoError(t, s.Set(ctx, key, "off"))
	v, ok, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "off", v)

	raw, err := rdb.Get(ctx, infra.OptionKey(key)).Result()
	require.NoError(t, err)
	assert.Equal(t, "off", raw)
}

func TestCachedListenerInvalidatesAcrossInstances(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rdb := testRedis(t)

	backing := NewRedis(rdb)
	channel := infra.RedisChanOptionUpdate + ":test"
	key := "test-cache-" + time.Now().Format("150405.000000000")
	t.Cleanup(func() { backing.Delete(context.Background(), key) })

	a := NewCached(backing, NewRedisPublisher(rdb), channel, zap.NewNop())
	b := NewCached(backing, NewRedisPublisher(rdb), channel, zap.NewNop())
	go b.StartListener(ctx, rdb)

	// Ждем подписку: до нее сигналы теряются
	require.Eventually(t, func() bool {
		n, err := rdb.PubSubNumSub(ctx, channel).Result()
		return err == nil && n[channel] > 0
	}, 2*time.Second, 20*time.Millisecond)

	require.NoError(t, a.Set(ctx, key, "on"))
	v, _, err := b.Get(ctx, key)
	require.NoError(t, err)
	require.Equal(t, "on", v)

	require.NoError(t, a.Set(ctx, key, "off"))
	assert.Eventually(t, func() bool {
		v, _, err := b.Get(ctx, key)
		return err == nil && v == "off"
	}, 2*time.Second, 20*time.Millisecond)
}
