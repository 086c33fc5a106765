package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AttemptOutcome is the terminal state of one sink delivery.
type AttemptOutcome string

const (
	OutcomePending   AttemptOutcome = "pending"
	OutcomeDelivered AttemptOutcome = "delivered"
	OutcomeFailed    AttemptOutcome = "failed"
)

// NotificationAttempt records a single sink's delivery result for an
// alert. A terminal failure is recorded here, never silently dropped.
type NotificationAttempt struct {
	TicketID  uuid.UUID      `json:"ticket_id"`
	Sink      string         `json:"sink"`
	Attempts  int            `json:"attempts"`
	Outcome   AttemptOutcome `json:"outcome"`
	LastError string         `json:"last_error,omitempty"`
	Duration  time.Duration  `json:"-"`
}

// Alert is the payload handed to notification sinks.
type Alert struct {
	Ticket         Ticket
	Sentiment      SentimentResult
	Decision       AlertDecision
	Recommendation ResponseRecommendation
}

// Sink delivers one alert to an external notification target. A Sink
// implementation handles a single attempt; retries live in the
// dispatcher.
type Sink interface {
	Name() string
	Send(ctx context.Context, alert Alert) error
}

// Dispatcher fans an alert out to all configured sinks, one attempt
// record per sink, retrying each independently.
type Dispatcher interface {
	Dispatch(ctx context.Context, alert Alert) []NotificationAttempt
}
