package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sentiwatch/watchdog/internal/domain"
)

// WebhookSink posts the full alert as JSON to a generic HTTP endpoint.
type WebhookSink struct {
	url    string
	client *http.Client
}

func NewWebhookSink(url string, client *http.Client) *WebhookSink {
	if client == nil {
		client = http.DefaultClient
	}
	return &WebhookSink{url: url, client: client}
}

func (w *WebhookSink) Name() string { return "webhook" }

type webhookPayload struct {
	TicketID  string                        `json:"ticket_id"`
	Channel   string                        `json:"channel"`
	Source    string                        `json:"source"`
	Severity  string                        `json:"severity"`
	Sentiment domain.SentimentResult        `json:"sentiment"`
	Advice    domain.ResponseRecommendation `json:"recommendation"`
}

func (w *WebhookSink) Send(ctx context.Context, alert domain.Alert) error {
	payload, err := json.Marshal(webhookPayload{
		TicketID:  alert.Ticket.ID.String(),
		Channel:   alert.Ticket.Channel,
		Source:    alert.Ticket.Source,
		Severity:  alert.Decision.Severity.String(),
		Sentiment: alert.Sentiment,
		Advice:    alert.Recommendation,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
