// Package advisor produces response-tone recommendations for assessed
// tickets.
package advisor

import (
	"github.com/sentiwatch/watchdog/internal/domain"
)

// Advisor implements domain.Advisor with a rule-based tone and
// talking-point selection. Free-form text generation stays behind the
// domain.Advisor interface as a pluggable capability.
type Advisor struct{}

func New() *Advisor {
	return &Advisor{}
}

// Advise returns the recommendation for a decided ticket. Severity
// none yields a neutral no-action recommendation.
func (a *Advisor) Advise(ticket domain.Ticket, sentiment domain.SentimentResult, decision domain.AlertDecision) domain.ResponseRecommendation {
	if decision.Severity == domain.SeverityNone {
		return domain.ResponseRecommendation{Tone: domain.ToneNeutral}
	}

	rec := domain.ResponseRecommendation{
		Tone:             tone(sentiment),
		TalkingPoints:    talkingPoints(sentiment),
		PriorityActions:  priorityActions(ticket, sentiment, decision),
		EscalationNeeded: decision.Severity >= domain.SeverityHigh || ticket.Priority == domain.PriorityUrgent,
		FollowUpRequired: sentiment.Score < -0.3 || sentiment.Emotions.Frustration > 0.4,
	}
	return rec
}

func tone(sentiment domain.SentimentResult) domain.Tone {
	switch {
	case sentiment.Score < -0.5 || sentiment.Emotions.Anger > 0.5:
		return domain.ToneEmpathetic
	case sentiment.Score < -0.2 || sentiment.Emotions.Frustration > 0.3:
		return domain.ToneUnderstanding
	case sentiment.Emotions.Confusion > 0.3:
		return domain.ToneExplanatory
	default:
		return domain.ToneProfessional
	}
}

func talkingPoints(sentiment domain.SentimentResult) []string {
	var points []string

	if sentiment.Score < -0.3 {
		points = append(points, "Acknowledge the customer's frustration and commit to resolving the issue.")
	}
	if sentiment.Emotions.Confusion > 0.3 {
		points = append(points, "Walk through the resolution step by step.")
	}
	if sentiment.Emotions.Anger > 0.3 {
		points = append(points, "Assure the customer the matter is being taken seriously.")
	}

	for _, topic := range sentiment.Topics {
		switch topic {
		case "billing":
			points = append(points, "Review the billing history and explain any charges in detail.")
		case "technical":
			points = append(points, "Confirm the technical issue is being investigated and share a timeline.")
		case "refund":
			points = append(points, "Explain the refund policy and the next steps.")
		}
	}

	if len(points) == 0 {
		points = append(points, "Follow standard support procedures.")
	}
	return points
}

func priorityActions(ticket domain.Ticket, sentiment domain.SentimentResult, decision domain.AlertDecision) []string {
	var actions []string

	if decision.Severity >= domain.SeverityCritical {
		actions = append(actions, "Respond within one hour.")
	}
	if sentiment.Emotions.Anger > 0.5 {
		actions = append(actions, "Consider a phone call or direct outreach.")
	}
	if ticket.Priority == domain.PriorityHigh || ticket.Priority == domain.PriorityUrgent {
		actions = append(actions, "Escalate to senior support if unresolved.")
	}
	if ticket.CustomerTier == domain.TierEnterprise {
		actions = append(actions, "Notify the account manager.")
	}

	actions = append(actions, "Provide a clear timeline for resolution.")
	return actions
}
