package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/sentiwatch/watchdog/internal/domain"
)

// SlackSink posts alerts to a Slack incoming webhook.
type SlackSink struct {
	webhookURL string
	client     *http.Client
}

func NewSlackSink(webhookURL string, client *http.Client) *SlackSink {
	if client == nil {
		client = http.DefaultClient
	}
	return &SlackSink{webhookURL: webhookURL, client: client}
}

func (s *SlackSink) Name() string { return "slack" }

func (s *SlackSink) Send(ctx context.Context, alert domain.Alert) error {
	payload, err := json.Marshal(map[string]string{
		"text": formatSlackMessage(alert),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("slack webhook request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("slack webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func formatSlackMessage(alert domain.Alert) string {
	var b strings.Builder

	switch alert.Decision.Severity {
	case domain.SeverityCritical:
		b.WriteString("*CRITICAL: very negative customer sentiment detected*\n")
	case domain.SeverityHigh:
		b.WriteString("*HIGH: negative customer sentiment alert*\n")
	default:
		b.WriteString("*Customer sentiment alert*\n")
	}

	fmt.Fprintf(&b, "Ticket: %s\n", alert.Ticket.ID)
	fmt.Fprintf(&b, "Channel: %s / %s\n", alert.Ticket.Channel, alert.Ticket.Source)
	fmt.Fprintf(&b, "Priority: %s\n", alert.Ticket.Priority)
	fmt.Fprintf(&b, "Sentiment: %.3f (confidence %.2f, %s)\n",
		alert.Sentiment.Score, alert.Sentiment.Confidence, alert.Sentiment.Method)
	fmt.Fprintf(&b, "Suggested tone: %s\n", alert.Recommendation.Tone)

	if preview := alert.Ticket.Content; preview != "" {
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		fmt.Fprintf(&b, "Preview: %s", preview)
	}

	return b.String()
}
