// Package server assembles the HTTP application: middleware, the workflow
// services and their handlers.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/diewo77/go-stages/auth"
	"github.com/diewo77/go-stages/httpx"
	"github.com/diewo77/go-stages/internal/config"
	"github.com/diewo77/go-stages/internal/handlers"
	"github.com/diewo77/go-stages/internal/metrics"
	"github.com/diewo77/go-stages/internal/middleware"
	"github.com/diewo77/go-stages/internal/policy"
	"github.com/diewo77/go-stages/internal/services"
	"github.com/diewo77/go-stages/internal/store"
	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

// Options configures New. Zero values fall back to in-process defaults.
type Options struct {
	DB        *gorm.DB
	Gate      *policy.AuthGate
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Limiter   middleware.Limiter
	RateLimit config.RateLimitConfig
	Now       func() time.Time
}

// App is the root http.Handler of the service.
type App struct {
	router  chi.Router
	db      *gorm.DB
	store   *store.Store
	gate    *policy.AuthGate
	log     *slog.Logger
	metrics *metrics.Metrics
}

func New(o Options) *App {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Gate == nil {
		o.Gate = policy.NewAuthGate(o.DB, 5*time.Minute)
	}
	if o.Limiter == nil {
		o.Limiter = middleware.NewMemoryLimiter()
	}
	if o.RateLimit.Limit <= 0 {
		o.RateLimit.Limit = 60
	}
	if o.RateLimit.Window <= 0 {
		o.RateLimit.Window = time.Minute
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	a := &App{
		router:  chi.NewRouter(),
		db:      o.DB,
		store:   store.New(o.DB),
		gate:    o.Gate,
		log:     o.Logger,
		metrics: o.Metrics,
	}
	a.setupRoutes(o)
	return a
}

func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

func (a *App) setupRoutes(o Options) {
	deps := services.Deps{
		Store:   a.store,
		Gate:    a.gate,
		Logger:  a.log,
		Metrics: a.metrics,
		Now:     o.Now,
	}
	tracker := services.NewCandidatureTracker(deps)
	signatures := services.NewSignatureCoordinator(deps)

	ententes := handlers.NewEntenteHandler(a.store, a.gate, signatures)
	ententes.Now = o.Now
	evaluations := handlers.NewEvaluationHandler(services.NewEvaluationGate(deps))
	candidatures := handlers.NewCandidatureHandler(a.store, tracker, services.NewConvocationScheduler(deps, tracker))
	notifications := handlers.NewNotificationHandler(services.NewNotificationService(deps))
	admin := handlers.NewAdminProfileHandler(a.db, a.gate)

	r := a.router
	r.Use(middleware.RequestID)
	r.Use(middleware.Recover(a.log))
	r.Use(middleware.Logging(a.log, a.metrics))
	r.Use(middleware.Prefs)

	r.Get("/health", a.health)
	r.Get("/healthz", a.health)
	r.Handle("/metrics", a.metrics.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Use(auth.Middleware)
		api.Use(auth.RequireAuth)
		api.Use(middleware.Actor(a.store.Users, a.log))
		api.Use(middleware.RateLimit(o.Limiter, o.RateLimit.Limit, o.RateLimit.Window))

		ententes.Register(api)
		evaluations.Register(api)
		candidatures.Register(api)
		notifications.Register(api)
		admin.Register(api)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
	})
}

// health pings the database.
func (a *App) health(w http.ResponseWriter, r *http.Request) {
	sqlDB, err := a.db.DB()
	if err == nil {
		err = sqlDB.PingContext(r.Context())
	}
	if err != nil {
		a.log.Warn("health check failed", "error", err)
		httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
