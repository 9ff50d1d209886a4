// Package api provides the HTTP API server and handlers for the Bookshelf application.
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

	"github.com/bookshelfapp/bookshelf-server/internal/auth"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
)

// Options tunes the HTTP surface.
type Options struct {
	CORSOrigins         []string
	ImportMaxBytes      int64
	ImportRatePerMinute int
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store         store.Store
	services      *Services
	tokens        *auth.TokenService
	router        *chi.Mux
	api           huma.API
	logger        *slog.Logger
	opts          Options
	importLimiter *RateLimiter
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st store.Store, services *Services, tokens *auth.TokenService, opts Options, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	s := &Server{
		store:         st,
		services:      services,
		tokens:        tokens,
		router:        router,
		logger:        logger,
		opts:          opts,
		importLimiter: NewRateLimiter(opts.ImportRatePerMinute, time.Minute, max(opts.ImportRatePerMinute, 1)),
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("Bookshelf API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)
	s.api = humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s.registerRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases background resources held by the server.
func (s *Server) Close() {
	s.importLimiter.Stop()
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.opts.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

// registerRoutes configures all HTTP routes.
func (s *Server) registerRoutes() {
	s.registerHealthRoutes()
	s.registerBookRoutes()
	s.registerStatsRoutes()
	s.registerGenreRoutes()
	s.registerTransferRoutes()
}
