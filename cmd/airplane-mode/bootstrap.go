package main

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xela07ax/airplane-mode/internal/audit"
	"github.com/xela07ax/airplane-mode/internal/console/service"
	"github.com/xela07ax/airplane-mode/internal/engine"
	"github.com/xela07ax/airplane-mode/internal/i18n"
	"github.com/xela07ax/airplane-mode/internal/infra"
	"github.com/xela07ax/airplane-mode/internal/nonce"
	"github.com/xela07ax/airplane-mode/internal/repository/memory"
	"github.com/xela07ax/airplane-mode/internal/repository/postgres"
	"github.com/xela07ax/airplane-mode/internal/store"
)

// app: собранные зависимости процесса.
type app struct {
	gate    *engine.Gate
	metrics *engine.Metrics
	trail   *audit.Trail
	audit   audit.Reader
	users   service.AuthProvider

	rdb    *redis.Client
	pool   *pgxpool.Pool
	cached *store.Cached

	closers []func()
}

// close освобождает ресурсы в обратном порядке. Trail останавливается первым, чтобы дописать буфер в БД.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// buildApp собирает процесс: выбор хранилищ по конфигу и проверка связности.
func buildApp(ctx context.Context, cfg *infra.Config, logger *zap.Logger, reg prometheus.Registerer) (*app, error) {
	a := &app{metrics: engine.NewMetrics(reg)}

	if cfg.UsesRedis() {
		a.rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		a.closers = append(a.closers, func() { a.rdb.Close() })

		if err := withRetry(ctx, logger, "redis", func(ctx context.Context) error {
			return a.rdb.Ping(ctx).Err()
		}); err != nil {
			a.close()
			return nil, fmt.Errorf("redis unreachable: %w", err)
		}
	}

	if cfg.Database.URL != "" {
		if err := withRetry(ctx, logger, "postgres", func(ctx context.Context) error {
			pool, err := postgres.NewPool(ctx, cfg.Database)
			if err != nil {
				return err
			}
			a.pool = pool
			return nil
		}); err != nil {
			a.close()
			return nil, fmt.Errorf("database unreachable: %w", err)
		}
		a.closers = append(a.closers, a.pool.Close)

		if cfg.Database.AutoMigrate {
			if err := postgres.Migrate(cfg.Database.URL); err != nil {
				a.close()
				return nil, err
			}
			logger.Info("database migrations applied")
		}
	}

	settings := a.settingsStore(cfg, logger)
	nonces := a.nonceStore(cfg)

	// Аудит: Postgres, если есть база, иначе кольцо в памяти
	var auditStorage interface {
		audit.Storage
		audit.Reader
	}
	if a.pool != nil {
		auditStorage = postgres.NewAuditRepo(a.pool)
		a.users = postgres.NewUserRepo(a.pool)
	} else {
		auditStorage = memory.NewAuditRepo(memory.DefaultAuditCapacity)
		a.users = memory.NewUserRepo(memory.StaticAdmin(cfg.Auth.AdminUsername, cfg.Auth.AdminPasswordHash))
	}
	a.audit = auditStorage
	a.trail = audit.NewTrail(auditStorage, logger, audit.WithBufferGauge(a.metrics.AuditBufferFill))
	a.trail.Start()
	a.closers = append(a.closers, a.trail.Stop)

	opts := []engine.Option{
		engine.WithMetrics(a.metrics),
		engine.WithAuditor(a.trail),
		engine.WithTranslator(i18n.Load(cfg.Gate.Language)),
		engine.WithStylesheetURL(cfg.Gate.StylesheetURL),
	}
	if src := cfg.Gate.DefaultAvatar; src != "" {
		opts = append(opts, engine.WithAvatarSource(func(context.Context) string { return src }))
	}
	a.gate = engine.NewGate(settings, nonces, logger, opts...)

	logger.Info("gate assembled",
		zap.String("store", cfg.Gate.Store),
		zap.String("nonce_store", cfg.Gate.NonceStore),
		zap.Bool("cache", a.cached != nil),
		zap.Bool("postgres", a.pool != nil))
	return a, nil
}

func (a *app) settingsStore(cfg *infra.Config, logger *zap.Logger) store.SettingsStore {
	var s store.SettingsStore
	switch cfg.Gate.Store {
	case "redis":
		s = store.NewRedis(a.rdb)
	case "postgres":
		s = postgres.NewSettingsRepo(a.pool)
	default:
		return store.NewMemory()
	}

	// Удаленное хранилище закрываем предохранителем: открытая цепь = режим по умолчанию
	s = store.NewBreaker(s, store.BreakerSettings{
		Name:          cfg.Gate.Store,
		MaxFailures:   cfg.Gate.BreakerMaxFailures,
		Timeout:       cfg.Gate.BreakerTimeout,
		OnStateChange: a.metrics.BreakerObserver(),
	}, logger)

	if cfg.Gate.Cache && a.rdb != nil {
		a.cached = store.NewCached(s, store.NewRedisPublisher(a.rdb), infra.RedisChanOptionUpdate, logger)
		return a.cached
	}
	return s
}

func (a *app) nonceStore(cfg *infra.Config) nonce.Store {
	if cfg.Gate.NonceStore == "redis" {
		return nonce.NewRedis(a.rdb, cfg.Gate.NonceTTL)
	}
	return nonce.NewMemory(cfg.Gate.NonceTTL)
}

// withRetry повторяет проверку связности при старте; на путях принятия решений повторов нет.
func withRetry(ctx context.Context, logger *zap.Logger, name string, fn func(ctx context.Context) error) error {
	attempt := 0
	return retry.New(
		retry.Context(ctx),
		retry.Attempts(5),
	).Do(func() error {
		attempt++
		tCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		err := fn(tCtx)
		if err != nil {
			logger.Warn("connectivity check failed",
				zap.String("dep", name),
				zap.Int("attempt", attempt),
				zap.Error(err))
		}
		return err
	})
}
