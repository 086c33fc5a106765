package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Method identifies which scoring method produced a SentimentResult.
type Method string

const (
	// MethodLexicon is the lexicon-based method tuned for short texts.
	MethodLexicon Method = "lexicon"
	// MethodModel is the heavier weighted method used for long or
	// ambiguous texts. Runs the lexicon method as well and derives
	// confidence from inter-method agreement.
	MethodModel Method = "model"
)

// EmotionScores holds per-emotion intensities in [0, 1].
type EmotionScores struct {
	Anger       float64 `json:"anger"`
	Confusion   float64 `json:"confusion"`
	Delight     float64 `json:"delight"`
	Frustration float64 `json:"frustration"`
}

// Max returns the largest emotion intensity.
func (e EmotionScores) Max() float64 {
	m := e.Anger
	for _, v := range []float64{e.Confusion, e.Delight, e.Frustration} {
		if v > m {
			m = v
		}
	}
	return m
}

// SentimentResult is the scorer's verdict for one ticket. Written once
// by the pipeline run that owns it.
type SentimentResult struct {
	TicketID   uuid.UUID     `json:"ticket_id"`
	Score      float64       `json:"score"`      // [-1, 1], negative = unfavorable
	Confidence float64       `json:"confidence"` // [0, 1]
	Method     Method        `json:"method"`
	Positive   float64       `json:"positive"`
	Negative   float64       `json:"negative"`
	Neutral    float64       `json:"neutral"`
	Emotions   EmotionScores `json:"emotions"`
	Topics     []string      `json:"topics,omitempty"`
	Keywords   []string      `json:"keywords,omitempty"`
	ComputedAt time.Time     `json:"computed_at"`
}

// Scorer computes a sentiment result for a ticket's content.
// It fails only on malformed input (empty or over the configured
// length); content it cannot classify well yields a low-confidence
// result instead of an error.
type Scorer interface {
	Score(ctx context.Context, ticket Ticket) (SentimentResult, error)
}
