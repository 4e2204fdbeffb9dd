package domain

import (
	"errors"
	"fmt"
)

// BlockedCode: тег ошибки, по которому хост отличает отказ шлюза от сетевого сбоя.
const BlockedCode = "airplane_mode_enabled"

var ErrAirplaneModeEnabled = errors.New(BlockedCode)

// BlockedError возвращается pre-request хуку, когда удаленный запрос запрещен.
type BlockedError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	URL     string `json:"url"`
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.URL)
}

// Is позволяет проверять errors.Is(err, ErrAirplaneModeEnabled) через любые обертки.
func (e *BlockedError) Is(target error) bool {
	return target == ErrAirplaneModeEnabled
}
