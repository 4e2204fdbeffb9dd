// Package nonce выдает и погашает одноразовые токены защиты от повтора (replay protection).
// Токен привязан к действию и субъекту (ID пользователя) и живет ограниченное время.
package nonce

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL: время жизни токена, если в конфиге не задано иное.
const DefaultTTL = 12 * time.Hour

type Store interface {
	Issue(ctx context.Context, action, subject string) (string, error)
	// Consume атомарно погашает токен. Повторный вызов с тем же токеном вернет false.
	Consume(ctx context.Context, action, subject, token string) (bool, error)
}

func newToken() string {
	return uuid.NewString()
}

// normalize приводит токен к виду, в котором он был выдан (uuid в нижнем регистре).
func normalize(token string) string {
	return strings.ToLower(strings.TrimSpace(token))
}
