// Package server exposes the health and checkpoints of running pipelines over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/DjordjeVuckovic/movies-etl/internal/apperr"
	"github.com/DjordjeVuckovic/movies-etl/internal/etl"
	mw "github.com/DjordjeVuckovic/movies-etl/pkg/middleware"
	pkgserver "github.com/DjordjeVuckovic/movies-etl/pkg/server"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	GracefulShutdownTimeout = 10 * time.Second
	healthCheckTimeout      = 3 * time.Second
)

// PipelineSource lists the pipelines the server reports on.
type PipelineSource interface {
	Pipelines() []etl.Pumper
}

type Server struct {
	Echo *echo.Echo

	cfg      *Config
	source   PipelineSource
	checkers map[string]pkgserver.HealthChecker
}

func NewServer(cfg *Config, source PipelineSource, checkers map[string]pkgserver.HealthChecker) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = apperr.OpsErrorHandler()

	s := &Server{
		Echo:     e,
		cfg:      cfg,
		source:   source,
		checkers: checkers,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddlewares() {
	s.Echo.Use(mw.Logger(mw.WithSkipPaths("/health")))
	s.Echo.Use(middleware.Recover())
}

func (s *Server) setupRoutes() {
	s.Echo.GET("/health", s.health)
	s.Echo.GET("/checkpoints", s.checkpoints)
	s.Echo.GET("/checkpoints/:name", s.pipelineCheckpoints)
}

// Run serves until ctx is done and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("Ops server listening", "port", s.cfg.Port)
		if err := s.Echo.Start(":" + s.cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), GracefulShutdownTimeout)
	defer cancel()

	return s.Echo.Shutdown(shutdownCtx)
}
