package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/recipecrafter/backend/config"
	"github.com/pageza/recipecrafter/backend/internal/api"
	"github.com/pageza/recipecrafter/backend/internal/middleware"
	"github.com/pageza/recipecrafter/backend/internal/web"
)

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
	log    *zap.Logger
}

// New builds the router with the shared middleware chain, the JSON API and,
// when site is not nil, the server-rendered pages
func New(cfg *config.Config, deps api.Dependencies, site *web.Handler) (*Server, error) {
	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
		deps.Log = log
	}

	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(log, "/health", "/api/health", "/metrics"),
		middleware.Recovery(log),
		middleware.ErrorHandler(),
		middleware.CORS(cfg.AllowedOrigins),
	)
	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware())
	}

	api.RegisterRoutes(router, deps)
	if site != nil {
		if err := site.RegisterRoutes(router); err != nil {
			return nil, err
		}
	}

	return &Server{
		router: router,
		log:    log,
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			// Recipe generation may take up to a minute upstream
			WriteTimeout: 90 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
	}, nil
}

// Handler returns the router, used by tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens until Shutdown is called
func (s *Server) Start() error {
	s.log.Info("Starting server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down server")
	return s.http.Shutdown(ctx)
}
