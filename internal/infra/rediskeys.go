package infra

import "fmt"

const (
	// RedisNamespace Базовый префикс для изоляции данных проекта в Redis
	RedisNamespace = "airmde"
)

// Ключи (состояние)
const (
	RedisKeyOptions = RedisNamespace + ":site:"
	RedisKeyNonces  = RedisNamespace + ":nonce:"
)

// Каналы Pub/Sub (события)
const (
	// RedisChanOptionUpdate: канал инвалидации L1-кэша настроек на всех инстансах.
	RedisChanOptionUpdate = RedisNamespace + ":site:option-update"
)

// OptionKey ключ site-wide настройки
func OptionKey(name string) string {
	return RedisKeyOptions + name
}

// NonceKey ключ одноразового токена, привязанного к действию и субъекту
func NonceKey(action, subject, token string) string {
	return fmt.Sprintf("%s%s:%s:%s", RedisKeyNonces, action, subject, token)
}
