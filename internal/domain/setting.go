package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Mode: значение единственной настройки шлюза.
type Mode string

const (
	ModeOn  Mode = "on"  // Внешние запросы блокируются
	ModeOff Mode = "off" // Шлюз прозрачен
)

const (
	// SettingKey ключ в site-wide хранилище настроек хоста.
	SettingKey = "airplane-mode"

	// DefaultMode действует, пока настройка отсутствует (в том числе после uninstall).
	DefaultMode = ModeOn
)

var ErrInvalidMode = errors.New("invalid airplane mode value")

// ParseMode принимает только "on" или "off" (регистр и пробелы игнорируются).
func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case ModeOn:
		return ModeOn, nil
	case ModeOff:
		return ModeOff, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, raw)
}

// Opposite возвращает состояние, в которое переключит toggle.
func (m Mode) Opposite() Mode {
	if m == ModeOn {
		return ModeOff
	}
	return ModeOn
}

func ModeOf(enabled bool) Mode {
	if enabled {
		return ModeOn
	}
	return ModeOff
}
