package engine

import (
	"context"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xela07ax/airplane-mode/internal/audit"
	"github.com/xela07ax/airplane-mode/internal/domain"
	"github.com/xela07ax/airplane-mode/internal/i18n"
)

const (
	// ParamMode и ParamNonce: query-параметры ссылки переключения.
	ParamMode  = "airplane-mode"
	ParamNonce = "airmde_nonce"

	// NonceAction: действие, к которому привязан одноразовый токен.
	NonceAction = "airmde_nonce"

	ToggleNodeID = "airplane-mode-toggle"

	StylesheetHandle = "airplane-mode"
	StylesheetPath   = "lib/css/airplane-mode.min.css"
	Version          = "1.1.0"
)

// ToggleRequest: запрос на переключение от конкретного пользователя.
type ToggleRequest struct {
	Principal *domain.Principal
	Requested string // Сырое значение параметра airplane-mode
	Nonce     string
}

// Toggle сохраняет новый режим, если выполнены все условия:
// есть capability manage_options, токен действителен и погашен, режим on/off.
// Любое нарушенное условие дает false без изменения состояния.
func (g *Gate) Toggle(ctx context.Context, req ToggleRequest) bool {
	log := g.logger.With(zap.String("trace_id", extractTraceID(ctx)))

	if !req.Principal.Can(domain.CapManageOptions) {
		g.toggleResult("forbidden")
		log.Debug("toggle ignored: missing capability")
		return false
	}
	actor := req.Principal.UserID

	if req.Nonce == "" {
		g.toggleResult("bad_nonce")
		log.Debug("toggle ignored: empty nonce", zap.String("user_id", actor))
		return false
	}

	// Режим проверяем до погашения токена, чтобы опечатка не сжигала ссылку
	mode, err := domain.ParseMode(req.Requested)
	if err != nil {
		g.toggleResult("invalid_mode")
		log.Debug("toggle ignored: invalid mode", zap.String("user_id", actor), zap.String("requested", req.Requested))
		return false
	}

	ok, err := g.nonces.Consume(ctx, NonceAction, actor, req.Nonce)
	if err != nil {
		g.toggleResult("store_error")
		log.Warn("toggle ignored: nonce store failed", zap.String("user_id", actor), zap.Error(err))
		return false
	}
	if !ok {
		g.toggleResult("bad_nonce")
		log.Debug("toggle ignored: nonce rejected", zap.String("user_id", actor))
		return false
	}

	if err := g.settings.Set(ctx, domain.SettingKey, string(mode)); err != nil {
		g.toggleResult("store_error")
		log.Error("toggle failed: setting write", zap.String("user_id", actor), zap.Error(err))
		return false
	}

	g.toggleResult("success")
	log.Info("airplane mode switched", zap.String("user_id", actor), zap.String("mode", string(mode)))
	g.auditor.Log(audit.Event{
		ID:      uuid.NewString(),
		TraceID: extractTraceID(ctx),
		Kind:    audit.KindToggle,
		Hook:    string(domain.HookToggle),
		Actor:   actor,
		Mode:    string(mode),
		Status:  "SUCCESS",
	})
	return true
}

// ToggleCheck: хук инициализации запроса. При успешном переключении возвращает
// тот же URL без параметров переключения, куда хост должен сделать редирект.
func (g *Gate) ToggleCheck(ctx context.Context, p *domain.Principal, rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	q := u.Query()
	if !q.Has(ParamMode) && !q.Has(ParamNonce) {
		return "", false
	}

	if !g.Toggle(ctx, ToggleRequest{
		Principal: p,
		Requested: q.Get(ParamMode),
		Nonce:     q.Get(ParamNonce),
	}) {
		return "", false
	}

	return localRedirect(u), true
}

// localRedirect оставляет от адреса только путь и запрос на текущем хосте.
// Схема, host и userinfo отбрасываются, ведущие "//" в пути схлопываются в один "/",
// чтобы браузер не принял путь за protocol-relative адрес.
func localRedirect(u *url.URL) string {
	path := u.EscapedPath()
	if u.Opaque != "" {
		path = ""
	}
	path = "/" + strings.TrimLeft(path, "/")

	target := path
	if query := stripToggleParams(u.RawQuery); query != "" {
		target += "?" + query
	}
	return target
}

// stripToggleParams удаляет параметры переключения, сохраняя порядок и кодировку остальных.
func stripToggleParams(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}
	parts := strings.Split(rawQuery, "&")
	kept := parts[:0]
	for _, part := range parts {
		name, _, _ := strings.Cut(part, "=")
		if unescaped, err := url.QueryUnescape(name); err == nil {
			name = unescaped
		}
		if name == ParamMode || name == ParamNonce {
			continue
		}
		kept = append(kept, part)
	}
	return strings.Join(kept, "&")
}

// RenderToggle строит пункт админ-тулбара. Заголовок отражает текущее состояние,
// ссылка ведет в противоположное и несет свежий токен.
func (g *Gate) RenderToggle(ctx context.Context, p *domain.Principal, currentURL string) (*domain.ToggleNode, bool) {
	if !p.Can(domain.CapManageOptions) {
		return nil, false
	}

	u, err := url.Parse(currentURL)
	if err != nil {
		g.logger.Debug("toggle node skipped: bad current url", zap.String("url", currentURL), zap.Error(err))
		return nil, false
	}

	token, err := g.nonces.Issue(ctx, NonceAction, p.UserID)
	if err != nil {
		g.logger.Warn("toggle node skipped: nonce issue failed", zap.String("user_id", p.UserID), zap.Error(err))
		return nil, false
	}

	mode := g.Mode(ctx)
	title := g.tr.T(i18n.MsgToggleOff)
	if mode == domain.ModeOn {
		title = g.tr.T(i18n.MsgToggleOn)
	}

	q := u.Query()
	q.Set(ParamMode, string(mode.Opposite()))
	q.Set(ParamNonce, token)
	u.RawQuery = q.Encode()

	return &domain.ToggleNode{
		ID:    ToggleNodeID,
		Title: title,
		Href:  u.String(),
		Mode:  mode,
	}, true
}

// ToggleStylesheet отдает стиль кнопки только для админки или когда виден тулбар.
func (g *Gate) ToggleStylesheet(_ context.Context, view domain.View) (domain.Asset, bool) {
	if !view.Admin && !view.AdminBarShowing {
		return domain.Asset{}, false
	}
	return g.stylesheet, true
}

func (g *Gate) toggleResult(result string) {
	g.metrics.Toggles.WithLabelValues(result).Inc()
}
