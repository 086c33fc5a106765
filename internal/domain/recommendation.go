package domain

// Tone is the suggested register for the support agent's reply.
type Tone string

const (
	ToneEmpathetic    Tone = "empathetic_calm"
	ToneUnderstanding Tone = "understanding_supportive"
	ToneExplanatory   Tone = "clear_explanatory"
	ToneProfessional  Tone = "professional_friendly"
	ToneNeutral       Tone = "neutral"
)

// ResponseRecommendation is the advisor's guidance for replying to a
// ticket. For severity none it carries ToneNeutral and no actions.
type ResponseRecommendation struct {
	Tone             Tone     `json:"tone"`
	TalkingPoints    []string `json:"talking_points,omitempty"`
	PriorityActions  []string `json:"priority_actions,omitempty"`
	EscalationNeeded bool     `json:"escalation_needed"`
	FollowUpRequired bool     `json:"follow_up_required"`
}

// Advisor produces a response recommendation for an assessed ticket.
// Invoked only for severity >= low; generation beyond tone + talking
// points is a pluggable capability behind this interface.
type Advisor interface {
	Advise(ticket Ticket, sentiment SentimentResult, decision AlertDecision) ResponseRecommendation
}
