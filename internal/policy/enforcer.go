package policy

import "github.com/xela07ax/airplane-mode/internal/domain"

// Enforcer: чистая логика принятия решения, без доступа к хранилищу.
// Состояние настройки подставляет вызывающий (engine.Gate).
type Enforcer interface {
	Evaluate(enabled bool, rawURL string) domain.Effect
}

// LocalOnly пропускает только локальные адреса, пока режим включен.
type LocalOnly struct{}

func (LocalOnly) Evaluate(enabled bool, rawURL string) domain.Effect {
	return Evaluate(enabled, rawURL)
}

// Evaluate: deny, если режим включен и адрес удаленный; иначе allow.
func Evaluate(enabled bool, rawURL string) domain.Effect {
	if enabled && !IsLocalURL(rawURL) {
		return domain.EffectDeny
	}
	return domain.EffectAllow
}
