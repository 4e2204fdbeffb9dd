package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingPublisher struct {
	messages []string
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, message string) error {
	p.messages = append(p.messages, message)
	return p.err
}

func TestCached_ReadsThroughOnceThenServesFromL1(t *testing.T) {
	ctx := context.Background()
	backend := &flakyStore{Memory: NewMemory()}
	require.NoError(t, backend.Memory.Set(ctx, "airplane-mode", "off"))

	c := NewCached(backend, &recordingPublisher{}, "chan", zap.NewNop())

	for i := 0; i < 3; i++ {
		v, ok, err := c.Get(ctx, "airplane-mode")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "off", v)
	}
	assert.Equal(t, 1, backend.calls)
}

func TestCached_CachesAbsence(t *testing.T) {
	ctx := context.Background()
	backend := &flakyStore{Memory: NewMemory()}
	c := NewCached(backend, nil, "chan", zap.NewNop())

	_, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	_, _, _ = c.Get(ctx, "missing")
	assert.Equal(t, 1, backend.calls)
}

func TestCached_WriteThroughAndSignal(t *testing.T) {
	ctx := context.Background()
	backend := NewMemory()
	pub := &recordingPublisher{}
	c := NewCached(backend, pub, "chan", zap.NewNop())

	require.NoError(t, c.Set(ctx, "airplane-mode", "off"))
	v, _, _ := backend.Get(ctx, "airplane-mode")
	assert.Equal(t, "off", v)

	v, ok, _ := c.Get(ctx, "airplane-mode")
	assert.True(t, ok)
	assert.Equal(t, "off", v)

	require.NoError(t, c.Delete(ctx, "airplane-mode"))
	_, ok, _ = c.Get(ctx, "airplane-mode")
	assert.False(t, ok)

	added, err := c.Add(ctx, "airplane-mode", "on")
	require.NoError(t, err)
	assert.True(t, added)

	assert.Equal(t, []string{"airplane-mode", "airplane-mode", "airplane-mode"}, pub.messages)
}

func TestCached_PublishFailureKeepsLocalState(t *testing.T) {
	ctx := context.Background()
	c := NewCached(NewMemory(), &recordingPublisher{err: errors.New("redis down")}, "chan", zap.NewNop())

	require.NoError(t, c.Set(ctx, "airplane-mode", "off"))
	v, _, _ := c.Get(ctx, "airplane-mode")
	assert.Equal(t, "off", v)
}

func TestCached_InvalidateForcesReread(t *testing.T) {
	ctx := context.Background()
	backend := NewMemory()
	c := NewCached(backend, nil, "chan", zap.NewNop())

	require.NoError(t, c.Set(ctx, "airplane-mode", "on"))
	// Другой инстанс переключил значение напрямую в L2
	require.NoError(t, backend.Set(ctx, "airplane-mode", "off"))

	v, _, _ := c.Get(ctx, "airplane-mode")
	assert.Equal(t, "on", v)

	c.Invalidate("airplane-mode")
	v, _, _ = c.Get(ctx, "airplane-mode")
	assert.Equal(t, "off", v)

	require.NoError(t, backend.Set(ctx, "airplane-mode", "on"))
	c.Purge()
	v, _, _ = c.Get(ctx, "airplane-mode")
	assert.Equal(t, "on", v)
}

// slowStore снимает значение из L2, сообщает об этом и ждет release,
// прежде чем вернуть уже устаревший результат.
type slowStore struct {
	*Memory
	entered chan struct{}
	release chan struct{}
}

func (s *slowStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok, err := s.Memory.Get(ctx, key)
	s.entered <- struct{}{}
	<-s.release
	return v, ok, err
}

func TestCached_SlowReadDoesNotOverwriteNewerWrite(t *testing.T) {
	ctx := context.Background()
	backend := &slowStore{Memory: NewMemory(), entered: make(chan struct{}, 1), release: make(chan struct{})}
	require.NoError(t, backend.Memory.Set(ctx, "airplane-mode", "on"))
	c := NewCached(backend, nil, "chan", zap.NewNop())

	done := make(chan string)
	go func() {
		v, _, _ := c.Get(ctx, "airplane-mode")
		done <- v
	}()

	<-backend.entered
	require.NoError(t, c.Set(ctx, "airplane-mode", "off"))
	close(backend.release)
	assert.Equal(t, "on", <-done, "read started before the write")

	v, ok, err := c.Get(ctx, "airplane-mode")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "off", v)
}

func TestCached_SlowReadDoesNotResurrectInvalidatedKey(t *testing.T) {
	ctx := context.Background()
	backend := &slowStore{Memory: NewMemory(), entered: make(chan struct{}, 2), release: make(chan struct{})}
	require.NoError(t, backend.Memory.Set(ctx, "airplane-mode", "on"))
	c := NewCached(backend, nil, "chan", zap.NewNop())

	done := make(chan struct{})
	go func() {
		_, _, _ = c.Get(ctx, "airplane-mode")
		close(done)
	}()

	<-backend.entered
	// Другой инстанс переключил режим и прислал сигнал
	require.NoError(t, backend.Memory.Set(ctx, "airplane-mode", "off"))
	c.Invalidate("airplane-mode")
	close(backend.release)
	<-done

	v, _, err := c.Get(ctx, "airplane-mode")
	require.NoError(t, err)
	assert.Equal(t, "off", v)
}
