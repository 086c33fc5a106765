package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/sentiwatch/watchdog/internal/config"
	"github.com/sentiwatch/watchdog/internal/errors"
	"github.com/sentiwatch/watchdog/internal/livefeed"
	"github.com/sentiwatch/watchdog/internal/pipeline"
	"github.com/sentiwatch/watchdog/internal/postgres"
	"github.com/sentiwatch/watchdog/internal/trend"
)

// healthChecker is the minimal ping capability a dependency exposes for
// readiness probes. Nil checkers are skipped, so optional backends do
// not fail readiness.
type healthChecker interface {
	Ping(ctx context.Context) error
}

type Server struct {
	echo      *echo.Echo
	config    *config.Config
	pipeline  *pipeline.Orchestrator
	trends    *trend.Aggregator
	results   *postgres.ResultStore
	feed      *livefeed.Hub
	pgHealth  healthChecker
	rdbHealth healthChecker
	clock     clockwork.Clock
}

// NewServer wires routes and middleware. results, feed and the health
// checkers may be nil when the backing service is not configured.
func NewServer(cfg *config.Config, orch *pipeline.Orchestrator, trends *trend.Aggregator, results *postgres.ResultStore, feed *livefeed.Hub, pgHealth, rdbHealth healthChecker, clock clockwork.Clock) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(errors.Middleware())

	srv := &Server{
		echo:      e,
		config:    cfg,
		pipeline:  orch,
		trends:    trends,
		results:   results,
		feed:      feed,
		pgHealth:  pgHealth,
		rdbHealth: rdbHealth,
		clock:     clock,
	}

	srv.registerRoutes()
	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
