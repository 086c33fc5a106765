package server

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The feed carries no client-specific state; origin checks add
		// nothing here.
		return true
	},
}

func (s *Server) handleFeed(c echo.Context) error {
	if s.feed == nil {
		return echo.NewHTTPError(http.StatusNotFound, "live feed not enabled")
	}

	// Upgrade writes its own error response on failure.
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Warn("Failed to upgrade feed connection", "error", err)
		return nil
	}

	if err := s.feed.Register(conn); err != nil {
		// Register closed the connection already.
		slog.Warn("Feed registration rejected", "error", err)
		return nil
	}

	// Read loop to detect disconnects. The feed is push-only, so
	// inbound messages are discarded.
	go func() {
		defer s.feed.Unregister(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	return nil
}
