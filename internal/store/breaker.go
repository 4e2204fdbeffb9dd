package store

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerSettings настройки предохранителя перед удаленным хранилищем.
type BreakerSettings struct {
	Name        string
	MaxFailures uint32        // Сколько ошибок подряд допускаем до размыкания
	Timeout     time.Duration // Через сколько пробуем "закрыться"
	// OnStateChange вызывается при смене состояния (например, для метрик).
	OnStateChange func(name string, open bool)
}

// Breaker оборачивает SettingsStore в circuit breaker.
// Пока цепь разомкнута, любой вызов сразу возвращает gobreaker.ErrOpenState,
// а шлюз трактует ошибку чтения как отсутствие настройки.
type Breaker struct {
	next SettingsStore
	cb   *gobreaker.CircuitBreaker
}

type lookup struct {
	value string
	ok    bool
}

func NewBreaker(next SettingsStore, s BreakerSettings, logger *zap.Logger) *Breaker {
	if s.Name == "" {
		s.Name = "settings-store"
	}
	if s.MaxFailures == 0 {
		s.MaxFailures = 5
	}
	if s.Timeout == 0 {
		s.Timeout = 30 * time.Second
	}
	log := logger.Named("breaker")
	maxFailures := s.MaxFailures

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: 1,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("settings store breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
			if s.OnStateChange != nil {
				s.OnStateChange(name, to == gobreaker.StateOpen)
			}
		},
	})

	return &Breaker{next: next, cb: cb}
}

func (b *Breaker) Get(ctx context.Context, key string) (string, bool, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		v, ok, err := b.next.Get(ctx, key)
		return lookup{value: v, ok: ok}, err
	})
	if err != nil {
		return "", false, err
	}
	l := res.(lookup)
	return l.value, l.ok, nil
}

func (b *Breaker) Set(ctx context.Context, key, value string) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.next.Set(ctx, key, value)
	})
	return err
}

func (b *Breaker) Add(ctx context.Context, key, value string) (bool, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Add(ctx, key, value)
	})
	if err != nil {
		return false, err
	}
	return res.(bool), nil
}

func (b *Breaker) Delete(ctx context.Context, key string) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.next.Delete(ctx, key)
	})
	return err
}

// State возвращает текущее состояние предохранителя.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}
