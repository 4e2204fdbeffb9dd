package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xela07ax/airplane-mode/internal/console/handler"
	"github.com/xela07ax/airplane-mode/internal/domain"
	"github.com/xela07ax/airplane-mode/internal/engine"
	"github.com/xela07ax/airplane-mode/internal/infra"
	"github.com/xela07ax/airplane-mode/internal/infra/auth"
)

// Deps: всё, из чего собирается консоль.
type Deps struct {
	Config   *infra.Config
	Logger   *zap.Logger
	Gate     *engine.Gate
	Gatherer prometheus.Gatherer

	// Интерфейс для проверки токенов (RS256)
	Validator auth.TokenValidator

	AuthHandler     *handler.AuthHandler     // /auth/token
	AirplaneHandler *handler.AirplaneHandler // /v1/airplane-mode
	DecideHandler   *handler.DecideHandler   // /v1/decide
	AuditHandler    *handler.AuditHandler    // /v1/audit
}

type ConsoleServer struct {
	router *chi.Mux
	logger *zap.Logger
	deps   Deps
}

// NewConsoleServer инициализирует HTTP-поверхность шлюза со всеми зависимостями
func NewConsoleServer(d Deps) *ConsoleServer {
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}
	s := &ConsoleServer{
		router: chi.NewRouter(),
		logger: d.Logger.Named("console-api"),
		deps:   d,
	}
	s.routes()
	return s
}

func (s *ConsoleServer) routes() {
	r := s.router
	authCfg := s.deps.Config.Auth

	// --- 1. Глобальные инфраструктурные Middleware (для всех) ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.logger))
	r.Use(engine.TracingMiddleware)

	// Хук инициализации запроса: распознаем пользователя и обрабатываем ссылку из тулбара
	r.Use(auth.NewOptionalMiddleware(s.deps.Validator, s.logger))
	r.Use(engine.ToggleMiddleware(s.deps.Gate))

	// --- 2. ПУБЛИЧНЫЕ РОУТЫ (Открыты для всех) ---
	r.Group(func(r chi.Router) {
		// Логин доступен без токена, но с ограничением частоты
		r.With(rateLimit(rate.NewLimiter(rate.Limit(authCfg.LoginRate), authCfg.LoginBurst))).
			Post("/auth/token", s.deps.AuthHandler.Login)

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		r.Handle("/metrics", promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{}))
	})

	// --- 3. ЗАЩИЩЕННЫЙ ПЕРИМЕТР (Требуют RS256 токен) ---
	r.Group(func(r chi.Router) {
		r.Use(auth.NewMiddleware(s.deps.Validator, s.logger))

		// Decision API: любой аутентифицированный хост
		r.Route("/v1/decide", func(r chi.Router) {
			r.Post("/network", s.deps.DecideHandler.Network)
			r.Post("/asset", s.deps.DecideHandler.Asset)
			r.Post("/avatar", s.deps.DecideHandler.Avatar)
			r.Post("/update-jobs", s.deps.DecideHandler.UpdateJobs)
			r.Post("/stylesheet", s.deps.DecideHandler.Stylesheet)
		})

		// Администрирование: только manage_options
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireScope(domain.CapManageOptions))

			r.Route("/v1/airplane-mode", func(r chi.Router) {
				r.Get("/", s.deps.AirplaneHandler.Status)
				r.Post("/install", s.deps.AirplaneHandler.Install)
				r.Post("/uninstall", s.deps.AirplaneHandler.Uninstall)
			})

			// Аудит (Observability)
			r.Get("/v1/audit", s.deps.AuditHandler.GetLogs)
		})
	})
}

// ServeHTTP позволяет использовать ConsoleServer как стандартный http.Handler
func (s *ConsoleServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
