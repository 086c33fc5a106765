package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Severity is the ordered alert classification. Higher values are more
// urgent; comparisons use the numeric ordering.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityNone:
		return "none"
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so severities render as
// their names in JSON output.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, accepting the
// names produced by MarshalText.
func (s *Severity) UnmarshalText(text []byte) error {
	switch string(text) {
	case "none":
		*s = SeverityNone
	case "low":
		*s = SeverityLow
	case "medium":
		*s = SeverityMedium
	case "high":
		*s = SeverityHigh
	case "critical":
		*s = SeverityCritical
	default:
		return fmt.Errorf("unknown severity %q", text)
	}
	return nil
}

// AlertWorthy reports whether a decision at this severity should
// reserve the cooldown key and dispatch notifications.
func (s Severity) AlertWorthy() bool {
	return s >= SeverityMedium
}

// DecisionFactors records the inputs that contributed to a decision,
// retained for auditability.
type DecisionFactors struct {
	SentimentScore float64      `json:"sentiment_score"`
	MaxEmotion     float64      `json:"max_emotion"`
	Priority       Priority     `json:"priority"`
	CustomerTier   CustomerTier `json:"customer_tier,omitempty"`
}

// AlertDecision is the risk assessor's outcome for one ticket.
type AlertDecision struct {
	TicketID          uuid.UUID       `json:"ticket_id"`
	Severity          Severity        `json:"severity"`
	Suppressed        bool            `json:"suppressed"`
	SuppressionReason string          `json:"suppression_reason,omitempty"`
	Factors           DecisionFactors `json:"factors"`
	DecidedAt         time.Time       `json:"decided_at"`
}

// Assessor maps a scored ticket to an alert decision. The assessor
// consults the cooldown tracker for alert-worthy severities; a
// suppressed decision keeps its computed severity for trend accuracy
// but must never reach a notification sink.
type Assessor interface {
	Assess(ctx context.Context, ticket Ticket, sentiment SentimentResult) (AlertDecision, error)
}

// CooldownTracker is the per-key suppression window. CheckAndReserve
// reports whether the caller may alert for key; when it may, the key's
// record is atomically updated to expire at now + window. Absent keys
// are treated as expired.
type CooldownTracker interface {
	CheckAndReserve(ctx context.Context, key string, window time.Duration) (bool, error)
}
