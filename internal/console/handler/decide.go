package handler

import (
	"errors"
	"net/http"

	"github.com/xela07ax/airplane-mode/internal/domain"
	"github.com/xela07ax/airplane-mode/internal/engine"
)

// DecideHandler: Decision API для хостов вне процесса.
type DecideHandler struct {
	hooks engine.Hooks
}

func NewDecideHandler(h engine.Hooks) *DecideHandler {
	return &DecideHandler{hooks: h}
}

type urlRequest struct {
	URL string `json:"url"`
}

type networkResponse struct {
	Allow   bool   `json:"allow"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Network POST /v1/decide/network
func (h *DecideHandler) Network(w http.ResponseWriter, r *http.Request) {
	var req urlRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := h.hooks.DecideNetwork(r.Context(), req.URL)
	var be *domain.BlockedError
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, networkResponse{Allow: true})
	case errors.As(err, &be):
		writeJSON(w, http.StatusForbidden, networkResponse{Allow: false, Code: be.Code, Message: be.Message})
	default:
		writeError(w, http.StatusInternalServerError, "internal", "decision failed")
	}
}

type assetResponse struct {
	Allow bool   `json:"allow"`
	Src   string `json:"src"`
}

// Asset POST /v1/decide/asset
func (h *DecideHandler) Asset(w http.ResponseWriter, r *http.Request) {
	var req urlRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	src, ok := h.hooks.DecideAsset(r.Context(), req.URL)
	writeJSON(w, http.StatusOK, assetResponse{Allow: ok, Src: src})
}

type avatarResponse struct {
	Markup string `json:"markup"`
}

// Avatar POST /v1/decide/avatar
func (h *DecideHandler) Avatar(w http.ResponseWriter, r *http.Request) {
	var req domain.AvatarRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, avatarResponse{Markup: h.hooks.DecideAvatar(r.Context(), req)})
}

type updateJobsResponse struct {
	Suppress bool                `json:"suppress"`
	Actions  []domain.HookAction `json:"actions"`
	Hooks    []string            `json:"hooks"`
}

// UpdateJobs POST /v1/decide/update-jobs
// Возвращает план: какие обработчики снять и какие события очистить.
func (h *DecideHandler) UpdateJobs(w http.ResponseWriter, r *http.Request) {
	plan := &engine.SuppressionPlan{}
	if err := h.hooks.DecideUpdateJobs(r.Context(), plan); err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "decision failed")
		return
	}
	resp := updateJobsResponse{
		Suppress: len(plan.Actions) > 0 || len(plan.Cleared) > 0,
		Actions:  plan.Actions,
		Hooks:    plan.Cleared,
	}
	if resp.Actions == nil {
		resp.Actions = []domain.HookAction{}
	}
	if resp.Hooks == nil {
		resp.Hooks = []string{}
	}
	writeJSON(w, http.StatusOK, resp)
}

type stylesheetResponse struct {
	Enqueue bool          `json:"enqueue"`
	Asset   *domain.Asset `json:"asset,omitempty"`
}

// Stylesheet POST /v1/decide/stylesheet
func (h *DecideHandler) Stylesheet(w http.ResponseWriter, r *http.Request) {
	var view domain.View
	if !decodeJSON(w, r, &view) {
		return
	}
	resp := stylesheetResponse{}
	if asset, ok := h.hooks.ToggleStylesheet(r.Context(), view); ok {
		resp.Enqueue = true
		resp.Asset = &asset
	}
	writeJSON(w, http.StatusOK, resp)
}
