package audit

import "time"

// Kind: тип записи в журнале.
type Kind string

const (
	KindToggle    Kind = "TOGGLE"    // Успешное переключение режима
	KindBlocked   Kind = "BLOCKED"   // Шлюз отказал внешнему запросу
	KindInstall   Kind = "INSTALL"
	KindUninstall Kind = "UNINSTALL"
)

type Event struct {
	ID      string `json:"id"`       // UUID события
	TraceID string `json:"trace_id"` // Сквозной ID запроса
	Kind    Kind   `json:"kind"`
	Hook    string `json:"hook"`   // Точка расширения, в которой принято решение
	Actor   string `json:"actor"`  // Кто переключил (пусто для блокировок)
	Target  string `json:"target"` // URL, на который шел запрос

	Mode      string    `json:"mode"`   // Режим после события
	Status    string    `json:"status"` // "SUCCESS", "DENIED"
	Timestamp time.Time `json:"timestamp"`
}
