package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/xela07ax/airplane-mode/internal/audit"
)

type AuditLogProvider interface {
	FetchLogs(ctx context.Context, limit int) ([]audit.Event, error)
}

type AuditHandler struct {
	service AuditLogProvider
}

func NewAuditHandler(s AuditLogProvider) *AuditHandler {
	return &AuditHandler{service: s}
}

// GetLogs GET /v1/audit?limit=50
func (h *AuditHandler) GetLogs(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "limit must be an integer")
			return
		}
		limit = n
	}

	logs, err := h.service.FetchLogs(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "failed to fetch audit logs")
		return
	}
	writeJSON(w, http.StatusOK, logs)
}
