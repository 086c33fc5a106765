package domain

import (
	"context"
	"time"
)

// BucketKey identifies one trend bucket: a fixed time interval for a
// (channel, source) pair.
type BucketKey struct {
	Start   time.Time
	Channel string
	Source  string
}

// TrendAggregate holds incrementally maintained sentiment statistics
// for one bucket. Mean and variance use Welford's update, so a ticket
// is O(1) to record and history is never re-scanned.
type TrendAggregate struct {
	Key         BucketKey `json:"-"`
	Tickets     int64     `json:"tickets"`
	Alerts      int64     `json:"alerts"`
	Suppressed  int64     `json:"suppressed"`
	Mean        float64   `json:"mean"`
	M2          float64   `json:"-"`
	Variance    float64   `json:"variance"`
	LastUpdated time.Time `json:"last_updated"`
}

// Observe folds one sentiment score into the aggregate.
func (a *TrendAggregate) Observe(score float64) {
	a.Tickets++
	delta := score - a.Mean
	a.Mean += delta / float64(a.Tickets)
	a.M2 += delta * (score - a.Mean)
	if a.Tickets > 1 {
		a.Variance = a.M2 / float64(a.Tickets-1)
	}
}

// TrendRecorder accepts one record call per processed ticket.
type TrendRecorder interface {
	Record(ctx context.Context, ticket Ticket, sentiment SentimentResult, decision AlertDecision) error
}

// TrendStore is the opaque bucket-store capability the aggregator
// flushes to. Storage format is not part of the pipeline core.
type TrendStore interface {
	Upsert(ctx context.Context, key BucketKey, agg TrendAggregate) error
}
