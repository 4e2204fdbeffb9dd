package engine

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/xela07ax/airplane-mode/internal/domain"
)

// UpdateScheduler: часть хоста, которая регистрирует фоновые проверки обновлений.
type UpdateScheduler interface {
	// RemoveAction снимает обработчик с события. Отсутствующая регистрация не ошибка.
	RemoveAction(hook, callback string) error
	// ClearScheduledHook отменяет все запланированные запуски события.
	ClearScheduledHook(hook string) error
}

// UpdateActions: обработчики проверок обновлений тем, плагинов и ядра.
var UpdateActions = []domain.HookAction{
	{Hook: "load-update-core.php", Callback: "wp_update_themes"},
	{Hook: "load-themes.php", Callback: "wp_update_themes"},
	{Hook: "wp_update_themes", Callback: "wp_update_themes"},
	{Hook: "admin_init", Callback: "_maybe_update_themes"},

	{Hook: "load-update-core.php", Callback: "wp_update_plugins"},
	{Hook: "load-plugins.php", Callback: "wp_update_plugins"},
	{Hook: "wp_update_plugins", Callback: "wp_update_plugins"},
	{Hook: "admin_init", Callback: "_maybe_update_plugins"},

	{Hook: "wp_version_check", Callback: "wp_version_check"},
	{Hook: "admin_init", Callback: "_maybe_update_core"},
}

// UpdateCronHooks: запланированные события, которые очищаются.
var UpdateCronHooks = []string{
	"wp_update_themes",
	"wp_update_plugins",
	"wp_version_check",
	"wp_maybe_auto_update",
}

// DecideUpdateJobs: хук инициализации админки. Пока режим выключен, планировщик не трогается.
// Повторный вызов безопасен.
func (g *Gate) DecideUpdateJobs(ctx context.Context, sched UpdateScheduler) error {
	if !g.Enabled(ctx) {
		g.metrics.Decisions.WithLabelValues(string(domain.HookUpdateJobs), string(domain.EffectAllow)).Inc()
		return nil
	}
	g.metrics.Decisions.WithLabelValues(string(domain.HookUpdateJobs), string(domain.EffectDeny)).Inc()

	var errs []error
	for _, a := range UpdateActions {
		if err := sched.RemoveAction(a.Hook, a.Callback); err != nil {
			errs = append(errs, fmt.Errorf("remove %s/%s: %w", a.Hook, a.Callback, err))
		}
	}
	for _, hook := range UpdateCronHooks {
		if err := sched.ClearScheduledHook(hook); err != nil {
			errs = append(errs, fmt.Errorf("clear %s: %w", hook, err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		g.logger.Warn("update jobs partially suppressed", zap.Error(err))
		return err
	}
	g.logger.Debug("update jobs suppressed")
	return nil
}

// SuppressionPlan записывает, что нужно снять, для хостов вне процесса (Decision API).
type SuppressionPlan struct {
	Actions []domain.HookAction `json:"actions"`
	Cleared []string            `json:"cleared"`
}

func (p *SuppressionPlan) RemoveAction(hook, callback string) error {
	p.Actions = append(p.Actions, domain.HookAction{Hook: hook, Callback: callback})
	return nil
}

func (p *SuppressionPlan) ClearScheduledHook(hook string) error {
	p.Cleared = append(p.Cleared, hook)
	return nil
}
