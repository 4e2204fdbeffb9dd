package service

import (
	"context"
	"fmt"

	"github.com/xela07ax/airplane-mode/internal/audit"
)

const (
	DefaultAuditLimit = 50
	MaxAuditLimit     = 500
)

type AuditService struct {
	repo audit.Reader
}

func NewAuditService(repo audit.Reader) *AuditService {
	return &AuditService{repo: repo}
}

// FetchLogs отдает последние события; limit приводится к [1, MaxAuditLimit].
func (s *AuditService) FetchLogs(ctx context.Context, limit int) ([]audit.Event, error) {
	switch {
	case limit <= 0:
		limit = DefaultAuditLimit
	case limit > MaxAuditLimit:
		limit = MaxAuditLimit
	}

	logs, err := s.repo.FetchRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("audit_service: failed to fetch logs: %w", err)
	}
	if logs == nil {
		logs = []audit.Event{}
	}
	return logs, nil
}
