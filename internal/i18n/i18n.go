// Package i18n содержит текстовый домен шлюза, то есть все строки, видимые пользователю хоста.
package i18n

import (
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Domain: имя текстового домена у хоста.
const Domain = "airplane-mode"

// Ключи сообщений. Английский текст одновременно служит ключом.
const (
	MsgEnabled   = "Airplane Mode is enabled"
	MsgToggleOn  = "Airplane Mode: ON"
	MsgToggleOff = "Airplane Mode: OFF"
)

var translations = map[language.Tag]map[string]string{
	language.English: {
		MsgEnabled:   MsgEnabled,
		MsgToggleOn:  MsgToggleOn,
		MsgToggleOff: MsgToggleOff,
	},
	language.Russian: {
		MsgEnabled:   "Режим полёта включён",
		MsgToggleOn:  "Режим полёта: ВКЛ",
		MsgToggleOff: "Режим полёта: ВЫКЛ",
	},
}

// supported: первый язык используется, если совпадений нет.
var supported = []language.Tag{language.English, language.Russian}

var (
	once    sync.Once
	builder *catalog.Builder
)

func load() *catalog.Builder {
	once.Do(func() {
		builder = catalog.NewBuilder(catalog.Fallback(language.English))
		for tag, msgs := range translations {
			for key, text := range msgs {
				// Ошибка возможна только для некорректного тега, а теги у нас константы
				_ = builder.SetString(tag, key, text)
			}
		}
	})
	return builder
}

// Translator печатает сообщения домена на выбранном языке.
type Translator struct {
	p *message.Printer
}

// Load подбирает ближайший поддерживаемый язык; неизвестные языки получают английский.
func Load(lang string) *Translator {
	cat := load()
	tag, _, _ := language.NewMatcher(supported).Match(language.Make(lang))
	return &Translator{p: message.NewPrinter(tag, message.Catalog(cat))}
}

// T возвращает перевод ключа. Неизвестный ключ печатается как есть.
func (t *Translator) T(key string) string {
	if t == nil {
		return key
	}
	return t.p.Sprintf(key)
}
