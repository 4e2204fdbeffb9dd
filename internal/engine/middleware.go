package engine

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/xela07ax/airplane-mode/internal/domain"
	"github.com/xela07ax/airplane-mode/internal/infra/auth"
)

// Тип для ключа в контексте (избегаем коллизий)
type ctxKey string

const traceIDKey ctxKey = "trace_id"

// TracingMiddleware инициализирует Trace-ID для каждого запроса
func TracingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 1. Пытаемся достать ID из заголовка (если пришел от хоста/прокси)
		traceID := r.Header.Get("X-Trace-ID")

		// 2. Если его нет, генерируем новый
		if traceID == "" {
			traceID = uuid.New().String()
		}

		// 3. Кладем в контекст и отдаем клиенту
		w.Header().Set("X-Trace-ID", traceID)
		next.ServeHTTP(w, r.WithContext(WithTraceID(r.Context(), traceID)))
	})
}

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// extractTraceID помогает безопасно достать ID в любом месте кода
func extractTraceID(ctx context.Context) string {
	if id, ok := ctx.Value(traceIDKey).(string); ok {
		return id
	}
	return "00000000-0000-0000-0000-000000000000" // Fallback
}

// TraceIDFromContext: то же для пакетов снаружи engine.
func TraceIDFromContext(ctx context.Context) string {
	return extractTraceID(ctx)
}

// ToggleChecker: хук инициализации запроса.
type ToggleChecker interface {
	ToggleCheck(ctx context.Context, p *domain.Principal, rawURL string) (string, bool)
}

// ToggleMiddleware переключает режим по параметрам ссылки из тулбара и делает 302
// на тот же адрес без них. Во всех остальных случаях запрос идет дальше без изменений.
// Должен стоять после auth-миддлвари, иначе principal в контексте не будет.
func ToggleMiddleware(tc ToggleChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := auth.PrincipalFromContext(r.Context())
			if target, ok := tc.ToggleCheck(r.Context(), p, r.URL.RequestURI()); ok {
				http.Redirect(w, r, target, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
