package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/DjordjeVuckovic/movies-etl/internal/etl"
	pkgserver "github.com/DjordjeVuckovic/movies-etl/pkg/server"
	"github.com/labstack/echo/v4"
)

type HealthResponse struct {
	Status    string                `json:"status"`
	Checks    map[string]bool       `json:"checks"`
	Pipelines map[string]etl.Status `json:"pipelines"`
}

func (s *Server) health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthCheckTimeout)
	defer cancel()

	checks, healthy := pkgserver.CheckAll(ctx, s.checkers)

	pipelines := map[string]etl.Status{}
	for _, p := range s.source.Pipelines() {
		pipelines[p.Name()] = p.Status()
	}

	res := HealthResponse{Status: "ok", Checks: checks, Pipelines: pipelines}
	if !healthy {
		res.Status = "degraded"
		return c.JSON(http.StatusServiceUnavailable, res)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) checkpoints(c echo.Context) error {
	out := map[string]map[string]any{}
	for _, p := range s.source.Pipelines() {
		cp, err := p.Checkpoints()
		if err != nil {
			return fmt.Errorf("failed to read checkpoints of %s: %w", p.Name(), err)
		}
		out[p.Name()] = cp
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) pipelineCheckpoints(c echo.Context) error {
	name := c.Param("name")
	for _, p := range s.source.Pipelines() {
		if p.Name() != name {
			continue
		}
		cp, err := p.Checkpoints()
		if err != nil {
			return fmt.Errorf("failed to read checkpoints of %s: %w", name, err)
		}
		return c.JSON(http.StatusOK, cp)
	}
	return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("pipeline %s not found", name))
}
