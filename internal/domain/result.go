package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TicketState is the pipeline state machine position for one ticket.
// Received is the only entry state; Done and Rejected are terminal.
type TicketState string

const (
	StateReceived     TicketState = "received"
	StateScored       TicketState = "scored"
	StateAssessed     TicketState = "assessed"
	StateSuppressed   TicketState = "suppressed"
	StateNotified     TicketState = "notified"
	StateNotifyFailed TicketState = "notify_failed"
	StateRecorded     TicketState = "recorded"
	StateDone         TicketState = "done"
	StateRejected     TicketState = "rejected"
)

// ProcessResult is the per-ticket outcome surfaced to callers. Every
// submitted ticket yields exactly one, even on partial failure, so a
// caller can always tell "processed with issues" from "never
// processed".
type ProcessResult struct {
	TicketID       uuid.UUID              `json:"ticket_id"`
	State          TicketState            `json:"state"`
	Sentiment      *SentimentResult       `json:"sentiment,omitempty"`
	Decision       *AlertDecision         `json:"decision,omitempty"`
	Recommendation ResponseRecommendation `json:"recommendation"`
	Notifications  []NotificationAttempt  `json:"notifications,omitempty"`
	Annotations    []string               `json:"annotations,omitempty"`
	ProcessedAt    time.Time              `json:"processed_at"`
	Elapsed        time.Duration          `json:"-"`
}

// ResultStore is the opaque persistence capability for finished
// results. Schema and querying live outside the pipeline core.
type ResultStore interface {
	Save(ctx context.Context, result ProcessResult) error
}
