// Package trend maintains rolling sentiment statistics per time bucket.
package trend

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/sentiwatch/watchdog/internal/domain"
	apperrors "github.com/sentiwatch/watchdog/internal/errors"
	"github.com/sentiwatch/watchdog/internal/metrics"
)

// retention bounds how long finished buckets stay in memory.
const retention = 24 * time.Hour

// Aggregator implements domain.TrendRecorder with incremental
// (Welford) mean/variance updates: O(1) per ticket, no re-scan of
// history. Updates for the same bucket are serialized behind the
// mutex; correctness does not depend on arrival order, only on every
// ticket being counted exactly once. The orchestrator guarantees a
// single Record call per ticket.
type Aggregator struct {
	mu         sync.Mutex
	buckets    map[domain.BucketKey]*domain.TrendAggregate
	bucketSize time.Duration
	store      domain.TrendStore
	clock      clockwork.Clock
}

// NewAggregator creates an aggregator flushing to store. store may be
// nil, in which case aggregates live in memory only.
func NewAggregator(bucketSize time.Duration, store domain.TrendStore, clock clockwork.Clock) *Aggregator {
	return &Aggregator{
		buckets:    make(map[domain.BucketKey]*domain.TrendAggregate),
		bucketSize: bucketSize,
		store:      store,
		clock:      clock,
	}
}

// Record folds one processed ticket into its bucket and upserts the
// bucket to the store. A store failure surfaces as an aggregation
// error; the caller logs it without failing the ticket's own result.
func (a *Aggregator) Record(ctx context.Context, ticket domain.Ticket, sentiment domain.SentimentResult, decision domain.AlertDecision) error {
	key := domain.BucketKey{
		Start:   ticket.ReceivedAt.Truncate(a.bucketSize),
		Channel: ticket.Channel,
		Source:  ticket.Source,
	}

	a.mu.Lock()
	agg, ok := a.buckets[key]
	if !ok {
		agg = &domain.TrendAggregate{Key: key}
		a.buckets[key] = agg
		metrics.TrendActiveBuckets.Set(float64(len(a.buckets)))
	}

	agg.Observe(sentiment.Score)
	if decision.Severity.AlertWorthy() {
		if decision.Suppressed {
			agg.Suppressed++
		} else {
			agg.Alerts++
		}
	}
	agg.LastUpdated = a.clock.Now()
	snapshot := *agg
	a.mu.Unlock()

	if a.store != nil {
		if err := a.store.Upsert(ctx, key, snapshot); err != nil {
			metrics.TrendRecordsTotal.WithLabelValues("store_error").Inc()
			return apperrors.AggregationError("failed to upsert trend bucket", err).
				WithContext("channel", key.Channel).
				WithContext("source", key.Source)
		}
	}

	metrics.TrendRecordsTotal.WithLabelValues("ok").Inc()
	return nil
}

// Snapshot returns copies of all buckets whose interval starts within
// the given look-back window, newest first.
func (a *Aggregator) Snapshot(window time.Duration) []domain.TrendAggregate {
	cutoff := a.clock.Now().Add(-window)

	a.mu.Lock()
	defer a.mu.Unlock()

	var out []domain.TrendAggregate
	for _, agg := range a.buckets {
		if agg.Key.Start.Add(a.bucketSize).After(cutoff) {
			out = append(out, *agg)
		}
	}
	return out
}

// Prune drops buckets past the retention horizon. Returns the number
// of buckets removed.
func (a *Aggregator) Prune() int {
	cutoff := a.clock.Now().Add(-retention)

	a.mu.Lock()
	defer a.mu.Unlock()

	removed := 0
	for key := range a.buckets {
		if key.Start.Add(a.bucketSize).Before(cutoff) {
			delete(a.buckets, key)
			removed++
		}
	}
	metrics.TrendActiveBuckets.Set(float64(len(a.buckets)))
	return removed
}
