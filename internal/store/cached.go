package store

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Publisher отправляет сигнал инвалидации остальным инстансам.
type Publisher interface {
	Publish(ctx context.Context, channel, message string) error
}

type cachedValue struct {
	value   string
	present bool
}

// Cached: L1 (RAM) кэш настроек перед медленным хранилищем (L2: Redis/Postgres).
// Запись идет сквозь кэш, после чего остальные инстансы получают сигнал и сбрасывают ключ.
// Между записью на одном инстансе и доставкой сигнала другой инстанс может прочитать старое значение.
type Cached struct {
	backing SettingsStore
	pub     Publisher
	channel string
	logger  *zap.Logger

	mu     sync.RWMutex
	values map[string]cachedValue
	// gen растет при каждой записи, сбросе и очистке L1.
	// Чтение из L2 кладет результат в L1, только если gen не изменился за время чтения.
	gen uint64
}

func NewCached(backing SettingsStore, pub Publisher, channel string, logger *zap.Logger) *Cached {
	return &Cached{
		backing: backing,
		pub:     pub,
		channel: channel,
		logger:  logger.Named("settings-cache"),
		values:  make(map[string]cachedValue),
	}
}

func (c *Cached) Get(ctx context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	cv, hit := c.values[key]
	gen := c.gen
	c.mu.RUnlock()
	if hit {
		return cv.value, cv.present, nil
	}

	v, ok, err := c.backing.Get(ctx, key)
	if err != nil {
		// Ошибки не кэшируем, следующий запрос снова пойдет в L2
		return "", false, err
	}
	c.fill(key, gen, cachedValue{value: v, present: ok})
	return v, ok, nil
}

func (c *Cached) Set(ctx context.Context, key, value string) error {
	if err := c.backing.Set(ctx, key, value); err != nil {
		return err
	}
	c.remember(key, cachedValue{value: value, present: true})
	c.notify(ctx, key)
	return nil
}

func (c *Cached) Add(ctx context.Context, key, value string) (bool, error) {
	added, err := c.backing.Add(ctx, key, value)
	if err != nil {
		return false, err
	}
	if added {
		c.remember(key, cachedValue{value: value, present: true})
		c.notify(ctx, key)
	} else {
		// Значение уже было, но в L1 его могло не быть, перечитаем при следующем Get
		c.Invalidate(key)
	}
	return added, nil
}

func (c *Cached) Delete(ctx context.Context, key string) error {
	if err := c.backing.Delete(ctx, key); err != nil {
		return err
	}
	c.remember(key, cachedValue{present: false})
	c.notify(ctx, key)
	return nil
}

// Invalidate сбрасывает один ключ из L1.
func (c *Cached) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	delete(c.values, key)
}

// Purge полностью очищает L1, например после переподключения к Redis.
func (c *Cached) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.values = make(map[string]cachedValue)
}

func (c *Cached) remember(key string, v cachedValue) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.values[key] = v
}

// fill кладет прочитанное из L2 значение, если за время чтения L1 не менялся.
// Иначе значение могло устареть: пусть следующий Get перечитает.
func (c *Cached) fill(key string, gen uint64, v cachedValue) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return
	}
	c.values[key] = v
}

func (c *Cached) notify(ctx context.Context, key string) {
	if c.pub == nil {
		return
	}
	if err := c.pub.Publish(ctx, c.channel, key); err != nil {
		// Локальное состояние уже обновлено, остальные инстансы догонят после ресинхронизации
		c.logger.Warn("option update signal delivery failed",
			zap.String("key", key),
			zap.String("channel", c.channel),
			zap.Error(err))
	}
}
