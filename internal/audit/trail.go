package audit

/*
Trail — журнал решений шлюза.

- Non-blocking: Log никогда не ждет БД, событие уходит в буферизованный канал.
  Если канал переполнен, событие сбрасывается с ошибкой в логе (load shedding).
- Batching: воркер копит события и пишет пачкой по таймеру или по достижении лимита.
- Drain: Stop закрывает канал и ждет, пока воркер допишет остатки.

Журнал не влияет на решения: сбой записи только логируется.
*/

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	DefaultBufferSize    = 10000
	DefaultBatchSize     = 100
	DefaultFlushInterval = 500 * time.Millisecond
)

// Storage определяет, куда физически будут сохраняться события
type Storage interface {
	// WriteBatch сохраняет пачку событий за один раз
	WriteBatch(ctx context.Context, events []Event) error
}

// Reader отдает последние события для консоли.
type Reader interface {
	FetchRecent(ctx context.Context, limit int) ([]Event, error)
}

type Auditor interface {
	Log(event Event)
}

type Option func(*Trail)

// WithBufferGauge публикует заполненность буфера (backpressure).
func WithBufferGauge(g prometheus.Gauge) Option {
	return func(t *Trail) { t.fill = g }
}

// WithBatching переопределяет размер пачки и период сброса.
func WithBatching(size int, interval time.Duration) Option {
	return func(t *Trail) {
		if size > 0 {
			t.batchSize = size
		}
		if interval > 0 {
			t.interval = interval
		}
	}
}

// WithBufferSize задает емкость очереди.
func WithBufferSize(n int) Option {
	return func(t *Trail) {
		if n > 0 {
			t.ch = make(chan Event, n)
		}
	}
}

type Trail struct {
	ch        chan Event
	repo      Storage
	logger    *zap.Logger
	fill      prometheus.Gauge
	batchSize int
	interval  time.Duration

	wg sync.WaitGroup
	// mu: Log держит на чтение вокруг отправки, Stop берет на запись перед close(ch)
	mu       sync.RWMutex
	isClosed bool
	stopOnce sync.Once
}

func NewTrail(repo Storage, logger *zap.Logger, opts ...Option) *Trail {
	t := &Trail{
		ch:        make(chan Event, DefaultBufferSize),
		repo:      repo,
		logger:    logger.With(zap.String("mod", "audit")),
		batchSize: DefaultBatchSize,
		interval:  DefaultFlushInterval,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Trail) Start() {
	t.wg.Add(1)
	go t.worker()
}

// Stop запирает вход и ждет финального сброса. Повторный вызов безопасен.
func (t *Trail) Stop() {
	t.stopOnce.Do(func() {
		t.logger.Info("stopping audit trail: closing channel and flushing buffer...")

		// Дожидаемся текущих Log: после этого ни одна отправка в закрытый канал невозможна
		t.mu.Lock()
		t.isClosed = true
		close(t.ch)
		t.mu.Unlock()

		t.wg.Wait()
		t.logger.Info("audit trail stopped gracefully")
	})
}

func (t *Trail) Log(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.isClosed {
		t.logger.Warn("audit event dropped: trail is stopping", zap.String("id", event.ID))
		return
	}

	select {
	case t.ch <- event:
		if t.fill != nil {
			t.fill.Set(float64(len(t.ch)))
		}
	default:
		t.logger.Error("audit_buffer_overflow",
			zap.String("kind", string(event.Kind)),
			zap.String("trace_id", event.TraceID),
		)
	}
}

func (t *Trail) worker() {
	defer t.wg.Done()

	batch := make([]Event, 0, t.batchSize)
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		// Background: контекст приложения к этому моменту может быть уже отменен
		if err := t.repo.WriteBatch(context.Background(), batch); err != nil {
			t.logger.Error("audit flush failed", zap.Int("events", len(batch)), zap.Error(err))
		}
		batch = make([]Event, 0, t.batchSize)
		if t.fill != nil {
			t.fill.Set(float64(len(t.ch)))
		}
	}

	for {
		select {
		case event, ok := <-t.ch:
			if !ok {
				// Канал закрыт в Stop: всё вычитано, остался финальный сброс
				flush()
				t.logger.Info("audit worker finished")
				return
			}
			batch = append(batch, event)
			if len(batch) >= t.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}
