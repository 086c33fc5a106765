package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/resend/resend-go/v2"

	"github.com/sentiwatch/watchdog/internal/domain"
)

// EmailSink sends alert emails via the Resend API.
type EmailSink struct {
	client *resend.Client
	from   string
	to     []string
}

func NewEmailSink(apiKey, from string, to []string) *EmailSink {
	return &EmailSink{
		client: resend.NewClient(apiKey),
		from:   from,
		to:     to,
	}
}

func (e *EmailSink) Name() string { return "email" }

func (e *EmailSink) Send(ctx context.Context, alert domain.Alert) error {
	if len(e.to) == 0 {
		return fmt.Errorf("no recipients configured")
	}

	params := &resend.SendEmailRequest{
		From:    e.from,
		To:      e.to,
		Subject: fmt.Sprintf("[%s] Customer sentiment alert for %s/%s", strings.ToUpper(alert.Decision.Severity.String()), alert.Ticket.Channel, alert.Ticket.Source),
		Text:    formatEmailBody(alert),
	}

	if _, err := e.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("resend send failed: %w", err)
	}
	return nil
}

func formatEmailBody(alert domain.Alert) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Ticket %s on %s/%s needs attention.\n\n", alert.Ticket.ID, alert.Ticket.Channel, alert.Ticket.Source)
	fmt.Fprintf(&b, "Severity: %s\n", alert.Decision.Severity)
	fmt.Fprintf(&b, "Sentiment: %.3f (confidence %.2f, method %s)\n", alert.Sentiment.Score, alert.Sentiment.Confidence, alert.Sentiment.Method)
	fmt.Fprintf(&b, "Suggested tone: %s\n", alert.Recommendation.Tone)

	if len(alert.Recommendation.TalkingPoints) > 0 {
		b.WriteString("\nTalking points:\n")
		for _, p := range alert.Recommendation.TalkingPoints {
			fmt.Fprintf(&b, "- %s\n", p)
		}
	}

	if alert.Ticket.Content != "" {
		preview := alert.Ticket.Content
		if len(preview) > 500 {
			preview = preview[:500] + "..."
		}
		fmt.Fprintf(&b, "\nContent:\n%s\n", preview)
	}

	return b.String()
}
