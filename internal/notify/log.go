package notify

import (
	"context"
	"log/slog"

	"github.com/sentiwatch/watchdog/internal/domain"
)

// LogSink writes alerts to the structured log. Used in development
// when no external sink is configured, so alert-worthy decisions are
// never invisible.
type LogSink struct{}

func (LogSink) Name() string { return "log" }

func (LogSink) Send(_ context.Context, alert domain.Alert) error {
	slog.Warn("Sentiment alert",
		"ticket_id", alert.Ticket.ID.String(),
		"channel", alert.Ticket.Channel,
		"source", alert.Ticket.Source,
		"severity", alert.Decision.Severity.String(),
		"score", alert.Sentiment.Score,
		"tone", string(alert.Recommendation.Tone),
	)
	return nil
}
