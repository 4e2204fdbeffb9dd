package handler

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/xela07ax/airplane-mode/internal/domain"
	"github.com/xela07ax/airplane-mode/internal/infra/auth"
)

// AirplaneGate: то, что нужно админке от шлюза.
type AirplaneGate interface {
	Mode(ctx context.Context) domain.Mode
	RenderToggle(ctx context.Context, p *domain.Principal, currentURL string) (*domain.ToggleNode, bool)
	Install(ctx context.Context) error
	Uninstall(ctx context.Context) error
}

type AirplaneHandler struct {
	gate   AirplaneGate
	logger *zap.Logger
}

func NewAirplaneHandler(g AirplaneGate, logger *zap.Logger) *AirplaneHandler {
	return &AirplaneHandler{gate: g, logger: logger}
}

type statusResponse struct {
	Mode    domain.Mode        `json:"mode"`
	Enabled bool               `json:"enabled"`
	Toggle  *domain.ToggleNode `json:"toggle,omitempty"`
}

// Status GET /v1/airplane-mode?return_to=/wp-admin/
// return_to: страница, на которую ведет ссылка переключения.
func (h *AirplaneHandler) Status(w http.ResponseWriter, r *http.Request) {
	returnTo := r.URL.Query().Get("return_to")
	if returnTo == "" {
		returnTo = "/"
	}

	mode := h.gate.Mode(r.Context())
	resp := statusResponse{Mode: mode, Enabled: mode == domain.ModeOn}
	if node, ok := h.gate.RenderToggle(r.Context(), auth.PrincipalFromContext(r.Context()), returnTo); ok {
		resp.Toggle = node
	}
	writeJSON(w, http.StatusOK, resp)
}

// Install POST /v1/airplane-mode/install
func (h *AirplaneHandler) Install(w http.ResponseWriter, r *http.Request) {
	if err := h.gate.Install(r.Context()); err != nil {
		h.logger.Error("install failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal", "install failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Uninstall POST /v1/airplane-mode/uninstall
func (h *AirplaneHandler) Uninstall(w http.ResponseWriter, r *http.Request) {
	if err := h.gate.Uninstall(r.Context()); err != nil {
		h.logger.Error("uninstall failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal", "uninstall failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
