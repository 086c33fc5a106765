// Package livefeed pushes alert events to connected websocket clients.
//
// The hub is a single-goroutine actor: all client bookkeeping happens on
// its command channel, so no mutex guards the client map. Each client
// gets its own buffered writer goroutine; a slow client drops events
// rather than stalling the broadcast.
package livefeed

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sentiwatch/watchdog/internal/domain"
	"github.com/sentiwatch/watchdog/internal/metrics"
)

const writeDeadline = 5 * time.Second

type hubCmd interface{ hubCmd() }

type cmdRegister struct {
	conn  *websocket.Conn
	errCh chan error
}

func (cmdRegister) hubCmd() {}

type cmdUnregister struct {
	conn *websocket.Conn
}

func (cmdUnregister) hubCmd() {}

type cmdBroadcast struct {
	data []byte
}

func (cmdBroadcast) hubCmd() {}

type cmdClientCount struct {
	replyCh chan int
}

func (cmdClientCount) hubCmd() {}

type cmdStop struct{}

func (cmdStop) hubCmd() {}

// AlertEvent is the wire format pushed to feed clients.
type AlertEvent struct {
	Type       string    `json:"type"`
	TicketID   string    `json:"ticket_id"`
	Channel    string    `json:"channel"`
	Source     string    `json:"source"`
	Severity   string    `json:"severity"`
	Score      float64   `json:"score"`
	Confidence float64   `json:"confidence"`
	Tone       string    `json:"tone,omitempty"`
	DecidedAt  time.Time `json:"decided_at"`
}

// Hub fans alert events out to every connected client.
type Hub struct {
	cmdCh      chan hubCmd
	done       chan struct{}
	clients    map[*websocket.Conn]*clientWriter
	maxClients int
}

func NewHub(maxClients int) *Hub {
	h := &Hub{
		cmdCh:      make(chan hubCmd, 256),
		done:       make(chan struct{}),
		clients:    make(map[*websocket.Conn]*clientWriter),
		maxClients: maxClients,
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for cmd := range h.cmdCh {
		switch c := cmd.(type) {
		case cmdRegister:
			h.handleRegister(c)
		case cmdUnregister:
			h.handleUnregister(c.conn)
		case cmdBroadcast:
			h.handleBroadcast(c.data)
		case cmdClientCount:
			c.replyCh <- len(h.clients)
		case cmdStop:
			h.handleStop()
			close(h.done)
			h.drainPending()
			return
		}
	}
}

// drainPending answers commands that were already queued when the hub
// stopped, so their senders do not wait on a reply forever.
func (h *Hub) drainPending() {
	for {
		select {
		case cmd := <-h.cmdCh:
			switch c := cmd.(type) {
			case cmdRegister:
				c.conn.Close()
				c.errCh <- errFeedStopped
			case cmdClientCount:
				c.replyCh <- 0
			}
		default:
			return
		}
	}
}

func (h *Hub) handleRegister(c cmdRegister) {
	if len(h.clients) >= h.maxClients {
		slog.Warn("Rejecting feed client, max clients reached", "max_clients", h.maxClients)
		c.conn.Close()
		c.errCh <- fmt.Errorf("max feed clients (%d) reached", h.maxClients)
		return
	}

	h.clients[c.conn] = newClientWriter(c.conn)
	metrics.FeedClients.Set(float64(len(h.clients)))
	slog.Info("Feed client registered", "clients", len(h.clients))
	c.errCh <- nil
}

func (h *Hub) handleUnregister(conn *websocket.Conn) {
	cw, exists := h.clients[conn]
	if !exists {
		return
	}
	delete(h.clients, conn)
	cw.stop()
	metrics.FeedClients.Set(float64(len(h.clients)))
	slog.Info("Feed client unregistered", "clients", len(h.clients))
}

func (h *Hub) handleBroadcast(data []byte) {
	for _, cw := range h.clients {
		select {
		case cw.sendCh <- data:
		default:
			// Slow client; dropping beats blocking every other client.
			metrics.FeedEventsDropped.Inc()
		}
	}
}

func (h *Hub) handleStop() {
	for conn, cw := range h.clients {
		delete(h.clients, conn)
		cw.stop()
	}
	metrics.FeedClients.Set(0)
}

var errFeedStopped = fmt.Errorf("feed stopped")

// Register adds a websocket client to the feed.
func (h *Hub) Register(conn *websocket.Conn) error {
	errCh := make(chan error, 1)
	select {
	case h.cmdCh <- cmdRegister{conn: conn, errCh: errCh}:
	case <-h.done:
		conn.Close()
		return errFeedStopped
	}
	select {
	case err := <-errCh:
		return err
	case <-h.done:
		conn.Close()
		return errFeedStopped
	}
}

// Unregister removes a client and closes its writer.
func (h *Hub) Unregister(conn *websocket.Conn) {
	select {
	case h.cmdCh <- cmdUnregister{conn: conn}:
	case <-h.done:
	}
}

// Publish pushes one alert to all connected clients. It implements the
// pipeline's alert publisher capability and never blocks the caller.
func (h *Hub) Publish(alert domain.Alert) {
	event := AlertEvent{
		Type:       "alert",
		TicketID:   alert.Ticket.ID.String(),
		Channel:    alert.Ticket.Channel,
		Source:     alert.Ticket.Source,
		Severity:   alert.Decision.Severity.String(),
		Score:      alert.Sentiment.Score,
		Confidence: alert.Sentiment.Confidence,
		Tone:       string(alert.Recommendation.Tone),
		DecidedAt:  alert.Decision.DecidedAt,
	}

	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("Failed to encode alert event", "error", err)
		return
	}
	select {
	case h.cmdCh <- cmdBroadcast{data: data}:
	case <-h.done:
		// Shutting down; the event has nowhere to go.
		metrics.FeedEventsDropped.Inc()
	}
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	replyCh := make(chan int, 1)
	select {
	case h.cmdCh <- cmdClientCount{replyCh: replyCh}:
	case <-h.done:
		return 0
	}
	select {
	case n := <-replyCh:
		return n
	case <-h.done:
		return 0
	}
}

// Stop disconnects all clients and shuts the hub down. Safe to call
// more than once; publishes after Stop are dropped, not blocked.
func (h *Hub) Stop() {
	select {
	case h.cmdCh <- cmdStop{}:
	case <-h.done:
	}
}
