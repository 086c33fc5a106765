package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/version", s.handleVersion)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Ticket ingestion and lookup
	s.echo.POST("/api/tickets", s.handleSubmitTicket)
	s.echo.GET("/api/tickets/:id", s.handleGetTicket)

	// Trend statistics
	s.echo.GET("/api/trends", s.handleTrends)

	// Live alert feed
	s.echo.GET("/ws/feed", s.handleFeed)
}
