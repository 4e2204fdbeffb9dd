package engine

import (
	"context"
	"fmt"
	"html"

	"github.com/xela07ax/airplane-mode/internal/domain"
)

// DefaultAvatar: прозрачный GIF 1x1, который подставляется вместо удаленного аватара.
const DefaultAvatar = "data:image/gif;base64,R0lGODlhAQABAIAAAAAAAP///yH5BAEAAAAALAAAAAABAAEAQAIBRAA7"

const avatarMarkup = `<img src="%s" class="avatar avatar-%d photo" height="%d" width="%d" alt="%s" />`

// DecideAvatar возвращает разметку без изменений, пока режим выключен.
func (g *Gate) DecideAvatar(ctx context.Context, req domain.AvatarRequest) string {
	if !g.Enabled(ctx) {
		g.metrics.Decisions.WithLabelValues(string(domain.HookAvatar), string(domain.EffectAllow)).Inc()
		return req.Markup
	}
	g.metrics.Decisions.WithLabelValues(string(domain.HookAvatar), string(domain.EffectDeny)).Inc()

	src := DefaultAvatar
	if g.avatarSrc != nil {
		if s := g.avatarSrc(ctx); s != "" {
			src = s
		}
	}
	size := req.Size
	if size < 0 {
		size = 0
	}
	return fmt.Sprintf(avatarMarkup, html.EscapeString(src), size, size, size, html.EscapeString(req.Alt))
}
