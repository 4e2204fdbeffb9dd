// Package store содержит адаптеры site-wide хранилища настроек хоста.
// Шлюз видит только интерфейс SettingsStore и не знает, где физически лежит значение.
package store

import "context"

// SettingsStore: key-value хранилище, которым владеет хост.
type SettingsStore interface {
	// Get возвращает значение и признак его наличия. Отсутствие ключа не ошибка.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// Add записывает значение, только если ключа еще нет. Возвращает true, если запись произошла.
	Add(ctx context.Context, key, value string) (bool, error)
	Delete(ctx context.Context, key string) error
}
