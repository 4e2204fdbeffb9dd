package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xela07ax/airplane-mode/internal/audit"
)

type AuditRepo struct {
	pool *pgxpool.Pool
}

func NewAuditRepo(pool *pgxpool.Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

var auditColumns = []string{"id", "trace_id", "kind", "hook", "actor", "target", "mode", "status", "created_at"}

// WriteBatch пишет пачку одной командой COPY.
func (r *AuditRepo) WriteBatch(ctx context.Context, events []audit.Event) error {
	if len(events) == 0 {
		return nil
	}

	_, err := r.pool.CopyFrom(ctx,
		pgx.Identifier{"audit_events"},
		auditColumns,
		pgx.CopyFromSlice(len(events), func(i int) ([]any, error) {
			e := events[i]
			return []any{e.ID, e.TraceID, string(e.Kind), e.Hook, e.Actor, e.Target, e.Mode, e.Status, e.Timestamp}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to copy audit events: %w", err)
	}
	return nil
}

// FetchRecent возвращает последние события, новые первыми.
func (r *AuditRepo) FetchRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	query := `
		SELECT id, trace_id, kind, hook, actor, target, mode, status, created_at
		FROM audit_events ORDER BY created_at DESC LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to fetch audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var e audit.Event
		var kind string
		if err := rows.Scan(&e.ID, &e.TraceID, &kind, &e.Hook, &e.Actor, &e.Target, &e.Mode, &e.Status, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan audit event: %w", err)
		}
		e.Kind = audit.Kind(kind)
		events = append(events, e)
	}
	return events, rows.Err()
}
