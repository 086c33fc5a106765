package advisor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sentiwatch/watchdog/internal/domain"
)

func TestAdvise_SeverityNoneIsNeutral(t *testing.T) {
	rec := New().Advise(domain.Ticket{}, domain.SentimentResult{Score: 0.5}, domain.AlertDecision{Severity: domain.SeverityNone})

	assert.Equal(t, domain.ToneNeutral, rec.Tone)
	assert.Empty(t, rec.TalkingPoints)
	assert.Empty(t, rec.PriorityActions)
	assert.False(t, rec.EscalationNeeded)
}

func TestAdvise_ToneSelection(t *testing.T) {
	tests := []struct {
		name      string
		sentiment domain.SentimentResult
		tone      domain.Tone
	}{
		{"very negative", domain.SentimentResult{Score: -0.8}, domain.ToneEmpathetic},
		{"angry", domain.SentimentResult{Score: 0, Emotions: domain.EmotionScores{Anger: 0.6}}, domain.ToneEmpathetic},
		{"mildly negative", domain.SentimentResult{Score: -0.35}, domain.ToneUnderstanding},
		{"frustrated", domain.SentimentResult{Score: 0, Emotions: domain.EmotionScores{Frustration: 0.4}}, domain.ToneUnderstanding},
		{"confused", domain.SentimentResult{Score: 0, Emotions: domain.EmotionScores{Confusion: 0.4}}, domain.ToneExplanatory},
		{"neutral-ish", domain.SentimentResult{Score: 0.1}, domain.ToneProfessional},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := New().Advise(domain.Ticket{}, tt.sentiment, domain.AlertDecision{Severity: domain.SeverityLow})
			assert.Equal(t, tt.tone, rec.Tone)
		})
	}
}

func TestAdvise_EscalationAndFollowUp(t *testing.T) {
	rec := New().Advise(
		domain.Ticket{Priority: domain.PriorityNormal},
		domain.SentimentResult{Score: -0.6},
		domain.AlertDecision{Severity: domain.SeverityHigh},
	)
	assert.True(t, rec.EscalationNeeded)
	assert.True(t, rec.FollowUpRequired)

	rec = New().Advise(
		domain.Ticket{Priority: domain.PriorityNormal},
		domain.SentimentResult{Score: -0.25},
		domain.AlertDecision{Severity: domain.SeverityLow},
	)
	assert.False(t, rec.EscalationNeeded)
	assert.False(t, rec.FollowUpRequired)
}

func TestAdvise_TopicTalkingPoints(t *testing.T) {
	rec := New().Advise(
		domain.Ticket{},
		domain.SentimentResult{Score: -0.4, Topics: []string{"billing"}},
		domain.AlertDecision{Severity: domain.SeverityMedium},
	)

	found := false
	for _, p := range rec.TalkingPoints {
		if p == "Review the billing history and explain any charges in detail." {
			found = true
		}
	}
	assert.True(t, found, "billing topic must add a billing talking point")
}

func TestAdvise_EnterpriseTierAction(t *testing.T) {
	rec := New().Advise(
		domain.Ticket{CustomerTier: domain.TierEnterprise},
		domain.SentimentResult{Score: -0.6},
		domain.AlertDecision{Severity: domain.SeverityHigh},
	)
	assert.Contains(t, rec.PriorityActions, "Notify the account manager.")
}
