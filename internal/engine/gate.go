package engine

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xela07ax/airplane-mode/internal/audit"
	"github.com/xela07ax/airplane-mode/internal/domain"
	"github.com/xela07ax/airplane-mode/internal/i18n"
	"github.com/xela07ax/airplane-mode/internal/nonce"
	"github.com/xela07ax/airplane-mode/internal/policy"
	"github.com/xela07ax/airplane-mode/internal/store"
)

// Gate: шлюз режима полёта. Одна булева настройка плюс проверка локальности адреса.
// Собирается один раз в точке сборки хоста и передается туда, где нужны решения.
type Gate struct {
	settings store.SettingsStore
	nonces   nonce.Store
	pdp      policy.Enforcer
	logger   *zap.Logger

	auditor    audit.Auditor
	metrics    *Metrics
	tr         *i18n.Translator
	avatarSrc  func(ctx context.Context) string
	stylesheet domain.Asset
}

type Option func(*Gate)

func WithAuditor(a audit.Auditor) Option {
	return func(g *Gate) { g.auditor = a }
}

func WithMetrics(m *Metrics) Option {
	return func(g *Gate) { g.metrics = m }
}

func WithTranslator(t *i18n.Translator) Option {
	return func(g *Gate) { g.tr = t }
}

// WithAvatarSource переопределяет картинку-заглушку аватара. Пустой результат игнорируется.
func WithAvatarSource(fn func(ctx context.Context) string) Option {
	return func(g *Gate) { g.avatarSrc = fn }
}

// WithStylesheetURL меняет адрес стиля кнопки в тулбаре.
func WithStylesheetURL(url string) Option {
	return func(g *Gate) {
		if url != "" {
			g.stylesheet.URL = url
		}
	}
}

func NewGate(settings store.SettingsStore, nonces nonce.Store, logger *zap.Logger, opts ...Option) *Gate {
	g := &Gate{
		settings:   settings,
		nonces:     nonces,
		pdp:        policy.LocalOnly{},
		logger:     logger.Named("gate"),
		auditor:    nopAuditor{},
		stylesheet: domain.Asset{Handle: StylesheetHandle, URL: StylesheetPath, Version: Version},
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.metrics == nil {
		g.metrics = NewMetrics(nil)
	}
	if g.tr == nil {
		g.tr = i18n.Load("en")
	}
	return g
}

// Mode читает текущее состояние. Отсутствие ключа и ошибка хранилища дают режим по умолчанию.
// Включенным считается только точное значение "on".
func (g *Gate) Mode(ctx context.Context) domain.Mode {
	raw, ok, err := g.settings.Get(ctx, domain.SettingKey)
	if err != nil {
		g.metrics.StoreErrors.Inc()
		g.logger.Warn("setting read failed, using default mode",
			zap.String("key", domain.SettingKey),
			zap.String("default", string(domain.DefaultMode)),
			zap.Error(err))
		raw, ok = "", false
	}
	if !ok {
		raw = string(domain.DefaultMode)
	}

	mode := domain.ModeOf(raw == string(domain.ModeOn))
	if mode == domain.ModeOn {
		g.metrics.Mode.Set(1)
	} else {
		g.metrics.Mode.Set(0)
	}
	return mode
}

func (g *Gate) Enabled(ctx context.Context) bool {
	return g.Mode(ctx) == domain.ModeOn
}

func (g *Gate) IsLocal(rawURL string) bool {
	return policy.IsLocalURL(rawURL)
}

// DecideNetwork: pre-request хук. nil означает "пропустить запрос".
func (g *Gate) DecideNetwork(ctx context.Context, rawURL string) error {
	if g.decide(ctx, domain.HookNetwork, rawURL) == domain.EffectAllow {
		return nil
	}
	return g.blocked(rawURL)
}

// DecideAsset: фильтр адреса стиля или скрипта. false означает "не подключать".
func (g *Gate) DecideAsset(ctx context.Context, src string) (string, bool) {
	if g.decide(ctx, domain.HookAsset, src) == domain.EffectAllow {
		return src, true
	}
	return "", false
}

// Install создает настройку со значением "on", только если ее еще нет.
func (g *Gate) Install(ctx context.Context) error {
	added, err := g.settings.Add(ctx, domain.SettingKey, string(domain.ModeOn))
	if err != nil {
		g.logger.Error("install failed", zap.Error(err))
		return err
	}
	g.logger.Info("installed", zap.Bool("created", added))
	g.auditor.Log(audit.Event{
		ID:      uuid.NewString(),
		TraceID: extractTraceID(ctx),
		Kind:    audit.KindInstall,
		Mode:    string(g.Mode(ctx)),
		Status:  "SUCCESS",
	})
	return nil
}

// Uninstall удаляет настройку; дальше снова действует режим по умолчанию.
func (g *Gate) Uninstall(ctx context.Context) error {
	if err := g.settings.Delete(ctx, domain.SettingKey); err != nil {
		g.logger.Error("uninstall failed", zap.Error(err))
		return err
	}
	g.logger.Info("uninstalled")
	g.auditor.Log(audit.Event{
		ID:      uuid.NewString(),
		TraceID: extractTraceID(ctx),
		Kind:    audit.KindUninstall,
		Status:  "SUCCESS",
	})
	return nil
}

func (g *Gate) decide(ctx context.Context, hook domain.Hook, rawURL string) domain.Effect {
	effect := g.pdp.Evaluate(g.Enabled(ctx), rawURL)
	g.metrics.Decisions.WithLabelValues(string(hook), string(effect)).Inc()

	if effect == domain.EffectDeny {
		g.logger.Debug("external request blocked",
			zap.String("hook", string(hook)),
			zap.String("url", rawURL),
			zap.String("trace_id", extractTraceID(ctx)))
		g.auditor.Log(audit.Event{
			ID:      uuid.NewString(),
			TraceID: extractTraceID(ctx),
			Kind:    audit.KindBlocked,
			Hook:    string(hook),
			Target:  rawURL,
			Mode:    string(domain.ModeOn),
			Status:  "DENIED",
		})
	}
	return effect
}

func (g *Gate) blocked(rawURL string) *domain.BlockedError {
	return &domain.BlockedError{
		Code:    domain.BlockedCode,
		Message: g.tr.T(i18n.MsgEnabled),
		URL:     rawURL,
	}
}

type nopAuditor struct{}

func (nopAuditor) Log(audit.Event) {}
