package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type sinkStorage struct {
	mu      sync.Mutex
	batches [][]Event
	err     error
}

func (s *sinkStorage) WriteBatch(_ context.Context, events []Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, events)
	return s.err
}

func (s *sinkStorage) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, b := range s.batches {
		n += len(b)
	}
	return n
}

func TestTrail_StopDrainsBuffer(t *testing.T) {
	sink := &sinkStorage{}
	trail := NewTrail(sink, zap.NewNop(), WithBatching(10, time.Hour))
	trail.Start()

	for i := 0; i < 25; i++ {
		trail.Log(Event{Kind: KindBlocked, Target: "https://example.com"})
	}
	trail.Stop()

	assert.Equal(t, 25, sink.total())
	for _, b := range sink.batches {
		assert.LessOrEqual(t, len(b), 10)
		for _, e := range b {
			assert.False(t, e.Timestamp.IsZero())
		}
	}
}

func TestTrail_FlushesOnTicker(t *testing.T) {
	sink := &sinkStorage{}
	trail := NewTrail(sink, zap.NewNop(), WithBatching(100, 20*time.Millisecond))
	trail.Start()
	defer trail.Stop()

	trail.Log(Event{Kind: KindToggle, Mode: "off"})
	require.Eventually(t, func() bool { return sink.total() == 1 }, time.Second, 10*time.Millisecond)
}

func TestTrail_LogAfterStopIsDropped(t *testing.T) {
	sink := &sinkStorage{}
	trail := NewTrail(sink, zap.NewNop())
	trail.Start()
	trail.Stop()
	trail.Stop()

	assert.NotPanics(t, func() { trail.Log(Event{Kind: KindToggle}) })
	assert.Equal(t, 0, sink.total())
}

func TestTrail_OverflowSheds(t *testing.T) {
	sink := &sinkStorage{}
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{Name: "fill"})
	// Воркер не запущен: буфер на 2 события
	trail := NewTrail(sink, zap.NewNop(), WithBufferSize(2), WithBufferGauge(gauge))

	for i := 0; i < 5; i++ {
		trail.Log(Event{Kind: KindBlocked})
	}
	assert.Equal(t, 2, len(trail.ch))
	assert.Equal(t, float64(2), testutil.ToFloat64(gauge))
}

func TestTrail_StorageErrorDoesNotStopWorker(t *testing.T) {
	sink := &sinkStorage{err: errors.New("db down")}
	trail := NewTrail(sink, zap.NewNop(), WithBatching(1, time.Hour))
	trail.Start()

	trail.Log(Event{Kind: KindBlocked})
	trail.Log(Event{Kind: KindBlocked})
	trail.Stop()

	assert.Equal(t, 2, sink.total())
}

func TestTrail_LogRacingStopNeverPanics(t *testing.T) {
	for round := 0; round < 20; round++ {
		sink := &sinkStorage{}
		trail := NewTrail(sink, zap.NewNop(), WithBufferSize(4096), WithBatching(50, time.Hour))
		trail.Start()

		var wg sync.WaitGroup
		start := make(chan struct{})
		for w := 0; w < 8; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				for i := 0; i < 100; i++ {
					trail.Log(Event{Kind: KindBlocked})
				}
			}()
		}

		close(start)
		trail.Stop()
		wg.Wait()

		// Все, что попало в канал до закрытия, сброшено в Stop
		written := sink.total()
		assert.LessOrEqual(t, written, 800)
		trail.Log(Event{Kind: KindBlocked})
		assert.Equal(t, written, sink.total())
	}
}
