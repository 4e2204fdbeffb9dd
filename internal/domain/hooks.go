package domain

// AvatarRequest: то, что хост передает в фильтр разметки аватара.
type AvatarRequest struct {
	Markup string `json:"markup"`
	Size   int    `json:"size"`
	Alt    string `json:"alt"`
}

// ToggleNode: пункт админ-тулбара с предавторизованной ссылкой переключения.
type ToggleNode struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Href  string `json:"href"`
	Mode  Mode   `json:"mode"` // Текущее состояние, не целевое
}

// Asset описывает стиль, который хост должен подключить.
type Asset struct {
	Handle  string `json:"handle"`
	URL     string `json:"url"`
	Version string `json:"version"`
}

// View: контекст отрисовки страницы хоста.
type View struct {
	Admin           bool `json:"admin"`
	AdminBarShowing bool `json:"admin_bar_showing"`
}

// HookAction: пара (событие, обработчик), которую хост должен снять с регистрации.
type HookAction struct {
	Hook     string `json:"hook"`
	Callback string `json:"callback"`
}
