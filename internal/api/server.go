// Package api exposes the HTTP surface of the contact manager. Routes are
// declared with huma on top of a chi router; the owner identity is resolved
// by middleware and every operation is scoped to it.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/rolodexapp/rolodex-server/internal/config"
	"github.com/rolodexapp/rolodex-server/internal/ratelimit"
	"github.com/rolodexapp/rolodex-server/internal/store"
)

// Server is the HTTP API server.
type Server struct {
	store    *store.Store
	services *Services
	router   *chi.Mux
	api      huma.API
	logger   *slog.Logger
	identity IdentityResolver

	maxUploadBytes int64
	importLimiter  *ratelimit.KeyedRateLimiter
}

// Option customizes server construction.
type Option func(*Server)

// WithIdentityResolver overrides how the owner ID is read from requests.
func WithIdentityResolver(r IdentityResolver) Option {
	return func(s *Server) {
		s.identity = r
	}
}

// New creates the API server and registers all routes.
func New(cfg *config.Config, st *store.Store, services *Services, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		store:          st,
		services:       services,
		router:         chi.NewRouter(),
		logger:         logger,
		identity:       &HeaderIdentityResolver{},
		maxUploadBytes: cfg.Import.MaxUploadBytes,
		importLimiter:  ratelimit.New(cfg.Import.RatePerMinute, time.Minute, cfg.Import.RatePerMinute),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-User-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	s.router.Use(s.identityMiddleware)

	humaConfig := huma.DefaultConfig(cfg.Server.Name, "1.0.0")
	s.api = humachi.New(s.router, humaConfig)

	RegisterErrorHandler()
	s.registerRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases server-held resources.
func (s *Server) Close() {
	s.importLimiter.Stop()
}

func (s *Server) registerRoutes() {
	s.registerHealthRoutes()
	s.registerContactRoutes()
	s.registerTagRoutes()
	s.registerActivityRoutes()
	s.registerTransferRoutes()
	s.registerDashboardRoutes()
}
