package nonce

import (
	"context"
	"sync"
	"time"
)

type Memory struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	tokens map[string]time.Time // key -> expiresAt
}

func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{
		ttl:    ttl,
		now:    time.Now,
		tokens: make(map[string]time.Time),
	}
}

func key(action, subject, token string) string {
	return action + "\x00" + subject + "\x00" + token
}

func (m *Memory) Issue(_ context.Context, action, subject string) (string, error) {
	token := newToken()
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.purgeLocked(now)
	m.tokens[key(action, subject, token)] = now.Add(m.ttl)
	return token, nil
}

func (m *Memory) Consume(_ context.Context, action, subject, token string) (bool, error) {
	token = normalize(token)
	if token == "" {
		return false, nil
	}
	k := key(action, subject, token)

	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	expiresAt, ok := m.tokens[k]
	// Просроченные токены чистим и здесь: процесс может долго только погашать
	m.purgeLocked(now)
	if !ok {
		return false, nil
	}
	delete(m.tokens, k)
	return now.Before(expiresAt), nil
}

func (m *Memory) purgeLocked(now time.Time) {
	for k, exp := range m.tokens {
		if !now.Before(exp) {
			delete(m.tokens, k)
		}
	}
}
