// Package assess maps scored tickets to alert decisions.
package assess

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/sentiwatch/watchdog/internal/domain"
	"github.com/sentiwatch/watchdog/internal/metrics"
)

// Thresholds are the severity bounds on the [-1, 1] sentiment scale.
// Negative = unfavorable. A score at or below a bound takes that
// severity (closed lower bound), so a score exactly at HighBelow is
// high, not medium.
type Thresholds struct {
	CriticalBelow     float64
	HighBelow         float64
	MediumBelow       float64
	EmotionAlertAbove float64
}

// Assessor implements domain.Assessor: an ordered rule cascade where
// each rule can only raise severity, followed by the cooldown check
// for alert-worthy outcomes.
type Assessor struct {
	thresholds Thresholds
	cooldowns  domain.CooldownTracker
	window     time.Duration
	clock      clockwork.Clock
}

func NewAssessor(thresholds Thresholds, cooldowns domain.CooldownTracker, window time.Duration, clock clockwork.Clock) *Assessor {
	return &Assessor{
		thresholds: thresholds,
		cooldowns:  cooldowns,
		window:     window,
		clock:      clock,
	}
}

// Assess computes the severity and reserves the ticket's cooldown key
// when the decision is alert-worthy. A suppressed decision keeps its
// computed severity so trend statistics stay accurate; it only loses
// the right to notify.
func (a *Assessor) Assess(ctx context.Context, ticket domain.Ticket, sentiment domain.SentimentResult) (domain.AlertDecision, error) {
	severity := a.severity(ticket, sentiment)

	decision := domain.AlertDecision{
		TicketID: ticket.ID,
		Severity: severity,
		Factors: domain.DecisionFactors{
			SentimentScore: sentiment.Score,
			MaxEmotion:     sentiment.Emotions.Max(),
			Priority:       ticket.Priority,
			CustomerTier:   ticket.CustomerTier,
		},
		DecidedAt: a.clock.Now(),
	}

	if severity.AlertWorthy() {
		proceed, err := a.cooldowns.CheckAndReserve(ctx, ticket.CooldownKey(), a.window)
		if err != nil {
			return decision, fmt.Errorf("cooldown check for %s: %w", ticket.CooldownKey(), err)
		}
		if !proceed {
			decision.Suppressed = true
			decision.SuppressionReason = "cooldown active"
		}
	}

	metrics.AlertDecisionsTotal.WithLabelValues(severity.String(), fmt.Sprintf("%t", decision.Suppressed)).Inc()

	return decision, nil
}

// severity runs the rule cascade. Rules are independently sufficient
// to raise severity and never lower it, which makes severity monotone
// in sentiment negativity.
func (a *Assessor) severity(ticket domain.Ticket, sentiment domain.SentimentResult) domain.Severity {
	switch {
	case sentiment.Score <= a.thresholds.CriticalBelow,
		ticket.Priority == domain.PriorityUrgent:
		return domain.SeverityCritical

	case sentiment.Score <= a.thresholds.HighBelow,
		sentiment.Emotions.Max() > a.thresholds.EmotionAlertAbove:
		return domain.SeverityHigh

	case sentiment.Score <= a.thresholds.MediumBelow:
		return domain.SeverityMedium

	case ticket.Priority == domain.PriorityHigh:
		return domain.SeverityLow

	default:
		return domain.SeverityNone
	}
}
