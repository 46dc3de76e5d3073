// Package api provides the HTTP API server and handlers for streakboard.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/streakboard/streakboard-server/internal/http/response"
	"github.com/streakboard/streakboard-server/internal/logger"
	"github.com/streakboard/streakboard-server/internal/ratelimit"
)

// HealthCheck probes one backing component.
type HealthCheck func(ctx context.Context) error

// Options configures a Server.
type Options struct {
	// Location is the default timezone for streak endpoints called without tz.
	Location    *time.Location
	CORSOrigins []string
	// AuthLimiter throttles the auth endpoints per client IP. Nil disables it.
	AuthLimiter  *ratelimit.KeyedRateLimiter
	HealthChecks map[string]HealthCheck
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	services    *Services
	router      *chi.Mux
	api         huma.API
	logger      *slog.Logger
	authLimiter *ratelimit.KeyedRateLimiter
	defaultLoc  *time.Location
	checks      map[string]HealthCheck
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(services *Services, opts Options, log *slog.Logger) *Server {
	if log == nil {
		log = logger.Discard()
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	s := &Server{
		services:    services,
		router:      chi.NewRouter(),
		logger:      log,
		authLimiter: opts.AuthLimiter,
		defaultLoc:  loc,
		checks:      opts.HealthChecks,
	}

	s.setupMiddleware(opts.CORSOrigins)
	s.setupAPI()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, mainly for OpenAPI generation.
func (s *Server) API() huma.API {
	return s.api
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware(origins []string) {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Retry-After", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	s.router.Use(authMiddleware(s.services.Auth))

	s.router.NotFound(response.NotFound(s.logger))
	s.router.MethodNotAllowed(response.MethodNotAllowed(s.logger))
}

// setupAPI creates the huma API on top of the chi router.
func (s *Server) setupAPI() {
	humaConfig := huma.DefaultConfig("Streakboard API", "1.0.0")
	humaConfig.Info.Description = "To-do lists with streaks and a friends leaderboard."
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler(s.logger)
}

// setupRoutes registers all operations.
func (s *Server) setupRoutes() {
	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerUserRoutes()
	s.registerStreakRoutes()
	s.registerTaskRoutes()
	s.registerFollowRoutes()
	s.registerLeaderboardRoutes()
	s.registerQuoteRoutes()
}

// bearer marks an operation as requiring an access token.
var bearer = []map[string][]string{{"bearer": {}}}
