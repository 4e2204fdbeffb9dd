package auth

import (
	"context"
	"net/http"

	"github.com/xela07ax/airplane-mode/internal/domain"
	"go.uber.org/zap"
)

// TokenValidator: интерфейс, который реализует и консоль, и встроенные хосты
type TokenValidator interface {
	VerifyToken(tokenStr string) (*domain.CustomClaims, error)
}

// Тип для ключа в контексте (избегаем коллизий)
type ctxKey struct{}

// WithPrincipal кладет вызывающего в контекст запроса.
func WithPrincipal(ctx context.Context, p *domain.Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// PrincipalFromContext возвращает nil для анонимного запроса.
func PrincipalFromContext(ctx context.Context) *domain.Principal {
	p, _ := ctx.Value(ctxKey{}).(*domain.Principal)
	return p
}

func principalFromClaims(c *domain.CustomClaims) *domain.Principal {
	userID := c.UserID
	if userID == "" {
		userID = c.Subject
	}
	return &domain.Principal{UserID: userID, Scopes: c.Scopes}
}

// NewMiddleware пропускает только запросы с валидным токеном.
func NewMiddleware(v TokenValidator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := v.VerifyToken(authHeader)
			if err != nil {
				logger.Warn("auth failure", zap.Error(err))
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principalFromClaims(claims))))
		})
	}
}

// NewOptionalMiddleware распознает вызывающего, если токен есть, но не отказывает анонимам.
// Нужен для хуков, которые должны молча ничего не делать без прав (toggle).
func NewOptionalMiddleware(v TokenValidator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := v.VerifyToken(authHeader)
			if err != nil {
				logger.Debug("optional auth ignored invalid token", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principalFromClaims(claims))))
		})
	}
}

// RequireScope отказывает с 403, если у вызывающего нет нужной capability.
// Ставится после NewMiddleware.
func RequireScope(scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !PrincipalFromContext(r.Context()).Can(scope) {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
