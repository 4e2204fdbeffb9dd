package domain

// Effect: решение шлюза для конкретного адреса.
type Effect string

const (
	EffectAllow Effect = "ALLOW" // Пропустить запрос без изменений
	EffectDeny  Effect = "DENY"  // Заблокировать
)

// Hook: имя точки расширения хоста, в которой принято решение (метки метрик и аудита).
type Hook string

const (
	HookNetwork    Hook = "network"
	HookAsset      Hook = "asset"
	HookAvatar     Hook = "avatar"
	HookUpdateJobs Hook = "update_jobs"
	HookToggle     Hook = "toggle"
)

// Decision: результат проверки, который отдается наружу через Decision API.
type Decision struct {
	Hook   Hook   `json:"hook"`
	Effect Effect `json:"effect"`
	URL    string `json:"url,omitempty"`
	Mode   Mode   `json:"mode"`
}

func (d Decision) Allowed() bool {
	return d.Effect != EffectDeny
}
