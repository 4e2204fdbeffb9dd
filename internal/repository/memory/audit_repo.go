package memory

import (
	"context"
	"sync"

	"github.com/xela07ax/airplane-mode/internal/audit"
)

// DefaultAuditCapacity: сколько последних событий хранит кольцо.
const DefaultAuditCapacity = 1000

// AuditRepo: кольцевой буфер событий аудита.
type AuditRepo struct {
	mu     sync.RWMutex
	events []audit.Event
	next   int
	full   bool
}

func NewAuditRepo(capacity int) *AuditRepo {
	if capacity <= 0 {
		capacity = DefaultAuditCapacity
	}
	return &AuditRepo{events: make([]audit.Event, capacity)}
}

func (r *AuditRepo) WriteBatch(_ context.Context, events []audit.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range events {
		r.events[r.next] = e
		r.next = (r.next + 1) % len(r.events)
		if r.next == 0 {
			r.full = true
		}
	}
	return nil
}

// FetchRecent возвращает последние события, новые первыми.
func (r *AuditRepo) FetchRecent(_ context.Context, limit int) ([]audit.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	size := r.next
	if r.full {
		size = len(r.events)
	}
	if limit <= 0 || limit > size {
		limit = size
	}

	out := make([]audit.Event, 0, limit)
	for i := 0; i < limit; i++ {
		idx := (r.next - 1 - i + len(r.events)) % len(r.events)
		out = append(out, r.events[idx])
	}
	return out, nil
}
