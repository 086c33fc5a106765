package trend

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentiwatch/watchdog/internal/domain"
)

type capturingStore struct {
	mu      sync.Mutex
	upserts int
	last    domain.TrendAggregate
}

func (s *capturingStore) Upsert(_ context.Context, _ domain.BucketKey, agg domain.TrendAggregate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts++
	s.last = agg
	return nil
}

func trendTicket(clock clockwork.Clock) domain.Ticket {
	return domain.Ticket{
		ID:         uuid.New(),
		Channel:    "chat",
		Source:     "intercom",
		ReceivedAt: clock.Now(),
	}
}

func record(t *testing.T, a *Aggregator, ticket domain.Ticket, score float64, decision domain.AlertDecision) {
	t.Helper()
	require.NoError(t, a.Record(context.Background(), ticket, domain.SentimentResult{Score: score}, decision))
}

func TestRecord_WelfordMeanVariance(t *testing.T) {
	clock := clockwork.NewFakeClock()
	a := NewAggregator(time.Hour, nil, clock)

	scores := []float64{-0.8, -0.2, 0.4, 0.6, -0.5}
	for _, s := range scores {
		record(t, a, trendTicket(clock), s, domain.AlertDecision{})
	}

	buckets := a.Snapshot(time.Hour)
	require.Len(t, buckets, 1)
	agg := buckets[0]

	// Reference mean and sample variance computed directly.
	var sum float64
	for _, s := range scores {
		sum += s
	}
	mean := sum / float64(len(scores))
	var sq float64
	for _, s := range scores {
		sq += (s - mean) * (s - mean)
	}
	variance := sq / float64(len(scores)-1)

	assert.Equal(t, int64(len(scores)), agg.Tickets)
	assert.InDelta(t, mean, agg.Mean, 1e-9)
	assert.InDelta(t, variance, agg.Variance, 1e-9)
}

func TestRecord_AlertAndSuppressionCounts(t *testing.T) {
	clock := clockwork.NewFakeClock()
	a := NewAggregator(time.Hour, nil, clock)

	record(t, a, trendTicket(clock), -0.8, domain.AlertDecision{Severity: domain.SeverityCritical})
	record(t, a, trendTicket(clock), -0.8, domain.AlertDecision{Severity: domain.SeverityCritical, Suppressed: true})
	record(t, a, trendTicket(clock), 0.5, domain.AlertDecision{Severity: domain.SeverityNone})

	buckets := a.Snapshot(time.Hour)
	require.Len(t, buckets, 1)
	assert.Equal(t, int64(3), buckets[0].Tickets)
	assert.Equal(t, int64(1), buckets[0].Alerts)
	assert.Equal(t, int64(1), buckets[0].Suppressed)
}

func TestRecord_BucketsByChannelSourceAndTime(t *testing.T) {
	clock := clockwork.NewFakeClock()
	a := NewAggregator(time.Hour, nil, clock)

	record(t, a, trendTicket(clock), 0.1, domain.AlertDecision{})

	other := trendTicket(clock)
	other.Channel = "email"
	record(t, a, other, 0.1, domain.AlertDecision{})

	clock.Advance(time.Hour)
	record(t, a, trendTicket(clock), 0.1, domain.AlertDecision{})

	assert.Len(t, a.Snapshot(3*time.Hour), 3)
}

func TestRecord_UpsertsToStore(t *testing.T) {
	clock := clockwork.NewFakeClock()
	store := &capturingStore{}
	a := NewAggregator(time.Hour, store, clock)

	record(t, a, trendTicket(clock), -0.4, domain.AlertDecision{Severity: domain.SeverityMedium})

	assert.Equal(t, 1, store.upserts)
	assert.Equal(t, int64(1), store.last.Tickets)
}

// Recording the same ticket twice makes the aggregate diverge from the
// single-record truth, which is why the orchestrator must call Record
// exactly once per ticket.
func TestRecord_DoubleRecordDiverges(t *testing.T) {
	clock := clockwork.NewFakeClock()
	single := NewAggregator(time.Hour, nil, clock)
	double := NewAggregator(time.Hour, nil, clock)

	ticket := trendTicket(clock)
	decision := domain.AlertDecision{Severity: domain.SeverityHigh}

	record(t, single, ticket, -0.6, decision)

	record(t, double, ticket, -0.6, decision)
	record(t, double, ticket, -0.6, decision)

	s := single.Snapshot(time.Hour)[0]
	d := double.Snapshot(time.Hour)[0]

	assert.NotEqual(t, s.Tickets, d.Tickets)
	assert.NotEqual(t, s.Alerts, d.Alerts)
}

func TestRecord_ConcurrentUpdatesCountedExactlyOnce(t *testing.T) {
	clock := clockwork.NewFakeClock()
	a := NewAggregator(time.Hour, nil, clock)

	const n = 100
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, a.Record(context.Background(), trendTicket(clock), domain.SentimentResult{Score: -0.5}, domain.AlertDecision{Severity: domain.SeverityHigh}))
		}()
	}
	wg.Wait()

	buckets := a.Snapshot(time.Hour)
	require.Len(t, buckets, 1)
	assert.Equal(t, int64(n), buckets[0].Tickets)
	assert.Equal(t, int64(n), buckets[0].Alerts)
	assert.InDelta(t, -0.5, buckets[0].Mean, 1e-9)
	assert.True(t, math.Abs(buckets[0].Variance) < 1e-9)
}

func TestPrune(t *testing.T) {
	clock := clockwork.NewFakeClock()
	a := NewAggregator(time.Hour, nil, clock)

	record(t, a, trendTicket(clock), 0.2, domain.AlertDecision{})
	clock.Advance(26 * time.Hour)
	record(t, a, trendTicket(clock), 0.2, domain.AlertDecision{})

	assert.Equal(t, 1, a.Prune())
	assert.Len(t, a.Snapshot(48*time.Hour), 1)
}
