package engine

import (
	"context"

	"github.com/xela07ax/airplane-mode/internal/domain"
)

// Hooks: все точки расширения хоста, по одному методу на точку.
type Hooks interface {
	// pre-request
	DecideNetwork(ctx context.Context, rawURL string) error
	// фильтр адреса стилей и скриптов
	DecideAsset(ctx context.Context, src string) (string, bool)
	// фильтр разметки аватара
	DecideAvatar(ctx context.Context, req domain.AvatarRequest) string
	// инициализация админки
	DecideUpdateJobs(ctx context.Context, sched UpdateScheduler) error
	// инициализация запроса
	ToggleCheck(ctx context.Context, p *domain.Principal, rawURL string) (string, bool)
	// отрисовка админ-тулбара
	RenderToggle(ctx context.Context, p *domain.Principal, currentURL string) (*domain.ToggleNode, bool)
	// подключение стилей
	ToggleStylesheet(ctx context.Context, view domain.View) (domain.Asset, bool)

	Install(ctx context.Context) error
	Uninstall(ctx context.Context) error
}

var _ Hooks = (*Gate)(nil)
