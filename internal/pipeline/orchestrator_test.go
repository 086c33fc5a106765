package pipeline

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentiwatch/watchdog/internal/advisor"
	"github.com/sentiwatch/watchdog/internal/assess"
	"github.com/sentiwatch/watchdog/internal/cooldown"
	"github.com/sentiwatch/watchdog/internal/domain"
	"github.com/sentiwatch/watchdog/internal/errors"
	"github.com/sentiwatch/watchdog/internal/notify"
	"github.com/sentiwatch/watchdog/internal/sentiment"
	"github.com/sentiwatch/watchdog/internal/trend"
)

type captureSink struct {
	mu     sync.Mutex
	alerts []domain.Alert
	err    error
}

func (s *captureSink) Name() string { return "capture" }

func (s *captureSink) Send(_ context.Context, alert domain.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.alerts = append(s.alerts, alert)
	return nil
}

func (s *captureSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.alerts)
}

type captureStore struct {
	mu      sync.Mutex
	results []domain.ProcessResult
	err     error
}

func (s *captureStore) Save(_ context.Context, result domain.ProcessResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.results = append(s.results, result)
	return nil
}

// testEnv wires the real pipeline components around a capture sink, so
// scenario tests exercise the same path production does.
type testEnv struct {
	clock   *clockwork.FakeClock
	tracker *cooldown.MemoryTracker
	trends  *trend.Aggregator
	sink    *captureSink
	store   *captureStore
	orch    *Orchestrator
}

func newTestEnv(cfg Config) *testEnv {
	clock := clockwork.NewFakeClock()
	tracker := cooldown.NewMemoryTracker(clock)
	trends := trend.NewAggregator(time.Hour, nil, clock)
	sink := &captureSink{}
	store := &captureStore{}

	scorer := sentiment.NewScorer(sentiment.Config{ShortTextBelow: 120, MaxContentLength: 10000}, clock)
	assessor := assess.NewAssessor(assess.Thresholds{
		CriticalBelow:     -0.7,
		HighBelow:         -0.5,
		MediumBelow:       -0.3,
		EmotionAlertAbove: 0.5,
	}, tracker, 15*time.Minute, clock)
	dispatcher := notify.NewDispatcher([]domain.Sink{sink}, 3, time.Millisecond, time.Second, clock)

	return &testEnv{
		clock:   clock,
		tracker: tracker,
		trends:  trends,
		sink:    sink,
		store:   store,
		orch:    New(cfg, scorer, assessor, advisor.New(), dispatcher, trends, store, nil, clock),
	}
}

func ticket(clock clockwork.Clock, content string) domain.Ticket {
	return domain.Ticket{
		ID:         uuid.New(),
		Channel:    "email",
		Source:     "support",
		Priority:   domain.PriorityNormal,
		Content:    content,
		ReceivedAt: clock.Now(),
	}
}

func TestProcess_NegativeTicketNotifies(t *testing.T) {
	env := newTestEnv(Config{MaxConcurrentTickets: 4, TicketTimeout: 5 * time.Second})

	result, err := env.orch.Process(context.Background(), ticket(env.clock, "This service is absolutely terrible!"))
	require.NoError(t, err)

	assert.Equal(t, domain.StateDone, result.State)
	require.NotNil(t, result.Sentiment)
	assert.Negative(t, result.Sentiment.Score)
	require.NotNil(t, result.Decision)
	assert.True(t, result.Decision.Severity >= domain.SeverityHigh)
	assert.False(t, result.Decision.Suppressed)

	require.Len(t, result.Notifications, 1)
	assert.Equal(t, domain.OutcomeDelivered, result.Notifications[0].Outcome)
	assert.Equal(t, 1, env.sink.count())

	assert.NotEmpty(t, result.Recommendation.Tone)

	buckets := env.trends.Snapshot(time.Hour)
	require.Len(t, buckets, 1)
	assert.Equal(t, int64(1), buckets[0].Tickets)
	assert.Equal(t, int64(1), buckets[0].Alerts)
}

func TestProcess_SecondTicketInWindowSuppressed(t *testing.T) {
	env := newTestEnv(Config{MaxConcurrentTickets: 4, TicketTimeout: 5 * time.Second})
	ctx := context.Background()

	first, err := env.orch.Process(ctx, ticket(env.clock, "This service is absolutely terrible!"))
	require.NoError(t, err)
	require.False(t, first.Decision.Suppressed)

	env.clock.Advance(time.Minute)

	second, err := env.orch.Process(ctx, ticket(env.clock, "This service is absolutely terrible!"))
	require.NoError(t, err)

	assert.Equal(t, domain.StateDone, second.State)
	assert.True(t, second.Decision.Suppressed)
	assert.Equal(t, "cooldown active", second.Decision.SuppressionReason)
	assert.Empty(t, second.Notifications)
	assert.Equal(t, 1, env.sink.count(), "suppressed alert must not reach the sink")

	buckets := env.trends.Snapshot(time.Hour)
	require.Len(t, buckets, 1)
	assert.Equal(t, int64(2), buckets[0].Tickets)
	assert.Equal(t, int64(1), buckets[0].Alerts)
	assert.Equal(t, int64(1), buckets[0].Suppressed)
}

func TestProcess_EmptyContentRejected(t *testing.T) {
	env := newTestEnv(Config{MaxConcurrentTickets: 4, TicketTimeout: 5 * time.Second})

	tk := ticket(env.clock, "   ")
	result, err := env.orch.Process(context.Background(), tk)

	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindAnalysis))
	assert.Equal(t, domain.StateRejected, result.State)
	assert.Nil(t, result.Sentiment)
	assert.Nil(t, result.Decision)

	_, reserved := env.tracker.Expiry(tk.CooldownKey())
	assert.False(t, reserved, "rejected ticket must not reserve a cooldown")
	assert.Empty(t, env.trends.Snapshot(time.Hour), "rejected ticket must not reach trends")
	assert.Equal(t, 0, env.sink.count())
}

func TestProcess_PositiveTicketRecordedWithoutAlert(t *testing.T) {
	env := newTestEnv(Config{MaxConcurrentTickets: 4, TicketTimeout: 5 * time.Second})

	result, err := env.orch.Process(context.Background(), ticket(env.clock, "Love the app!"))
	require.NoError(t, err)

	assert.Equal(t, domain.StateDone, result.State)
	assert.Equal(t, domain.SeverityNone, result.Decision.Severity)
	assert.Empty(t, result.Notifications)
	assert.Equal(t, 0, env.sink.count())

	// Even severity none carries the advisor's neutral recommendation.
	assert.Equal(t, domain.ToneNeutral, result.Recommendation.Tone)
	assert.Empty(t, result.Recommendation.PriorityActions)

	buckets := env.trends.Snapshot(time.Hour)
	require.Len(t, buckets, 1)
	assert.Equal(t, int64(1), buckets[0].Tickets)
	assert.Equal(t, int64(0), buckets[0].Alerts)
	assert.Positive(t, buckets[0].Mean)
}

func TestProcess_ResultPersisted(t *testing.T) {
	env := newTestEnv(Config{MaxConcurrentTickets: 4, TicketTimeout: 5 * time.Second})

	result, err := env.orch.Process(context.Background(), ticket(env.clock, "Love the app!"))
	require.NoError(t, err)

	env.store.mu.Lock()
	defer env.store.mu.Unlock()
	require.Len(t, env.store.results, 1)
	assert.Equal(t, result.TicketID, env.store.results[0].TicketID)
	assert.Equal(t, domain.StateDone, env.store.results[0].State)
}

func TestProcess_StoreFailureOnlyAnnotates(t *testing.T) {
	env := newTestEnv(Config{MaxConcurrentTickets: 4, TicketTimeout: 5 * time.Second})
	env.store.err = assert.AnError

	result, err := env.orch.Process(context.Background(), ticket(env.clock, "Love the app!"))
	require.NoError(t, err)

	assert.Equal(t, domain.StateDone, result.State)
	require.Len(t, result.Annotations, 1)
	assert.Contains(t, result.Annotations[0], "result persistence failed")
}

func TestProcess_AllSinksFailingMarksNotifyFailed(t *testing.T) {
	env := newTestEnv(Config{MaxConcurrentTickets: 4, TicketTimeout: 5 * time.Second})
	env.sink.err = assert.AnError

	result, err := env.orch.Process(context.Background(), ticket(env.clock, "This service is absolutely terrible!"))
	require.NoError(t, err)

	assert.Equal(t, domain.StateDone, result.State)
	require.Len(t, result.Notifications, 1)
	assert.Equal(t, domain.OutcomeFailed, result.Notifications[0].Outcome)
	assert.Equal(t, 3, result.Notifications[0].Attempts)
	assert.Contains(t, result.Annotations, "all notification sinks failed")
}

type gateScorer struct {
	mu          sync.Mutex
	inFlight    int
	maxInFlight int
	release     chan struct{}
}

func (g *gateScorer) Score(_ context.Context, _ domain.Ticket) (domain.SentimentResult, error) {
	g.mu.Lock()
	g.inFlight++
	if g.inFlight > g.maxInFlight {
		g.maxInFlight = g.inFlight
	}
	g.mu.Unlock()

	<-g.release

	g.mu.Lock()
	g.inFlight--
	g.mu.Unlock()
	return domain.SentimentResult{}, nil
}

func TestProcess_ConcurrencyBounded(t *testing.T) {
	clock := clockwork.NewFakeClock()
	scorer := &gateScorer{release: make(chan struct{})}
	tracker := cooldown.NewMemoryTracker(clock)
	assessor := assess.NewAssessor(assess.Thresholds{CriticalBelow: -0.7, HighBelow: -0.5, MediumBelow: -0.3, EmotionAlertAbove: 0.5}, tracker, 15*time.Minute, clock)
	dispatcher := notify.NewDispatcher(nil, 1, time.Millisecond, time.Second, clock)
	trends := trend.NewAggregator(time.Hour, nil, clock)

	orch := New(Config{MaxConcurrentTickets: 2, TicketTimeout: 5 * time.Second},
		scorer, assessor, advisor.New(), dispatcher, trends, nil, nil, clock)

	const n = 6
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := orch.Process(context.Background(), ticket(clock, "hello"))
			assert.NoError(t, err)
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(scorer.release)
	wg.Wait()

	scorer.mu.Lock()
	defer scorer.mu.Unlock()
	assert.LessOrEqual(t, scorer.maxInFlight, 2, "in-flight tickets must respect the bound")
}

type slowScorer struct {
	delay  time.Duration
	result domain.SentimentResult
}

func (s *slowScorer) Score(ctx context.Context, _ domain.Ticket) (domain.SentimentResult, error) {
	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
	}
	return s.result, nil
}

func TestProcess_TimeoutFinalizesWithPartialResult(t *testing.T) {
	clock := clockwork.NewFakeClock()
	scorer := &slowScorer{delay: time.Second, result: domain.SentimentResult{Score: -0.9}}
	tracker := cooldown.NewMemoryTracker(clock)
	assessor := assess.NewAssessor(assess.Thresholds{CriticalBelow: -0.7, HighBelow: -0.5, MediumBelow: -0.3, EmotionAlertAbove: 0.5}, tracker, 15*time.Minute, clock)
	sink := &captureSink{}
	dispatcher := notify.NewDispatcher([]domain.Sink{sink}, 1, time.Millisecond, time.Second, clock)
	trends := trend.NewAggregator(time.Hour, nil, clock)

	orch := New(Config{MaxConcurrentTickets: 2, TicketTimeout: 20 * time.Millisecond},
		scorer, assessor, advisor.New(), dispatcher, trends, nil, nil, clock)

	result, err := orch.Process(context.Background(), ticket(clock, "irrelevant"))
	require.NoError(t, err)

	assert.Equal(t, domain.StateDone, result.State)
	require.NotNil(t, result.Sentiment)
	assert.Nil(t, result.Decision, "assessment must not run after the budget expired")
	require.Len(t, result.Annotations, 1)
	assert.Contains(t, result.Annotations[0], "timeout")
	assert.Equal(t, 0, sink.count())
}

func TestProcess_CanceledWhileWaitingForSlot(t *testing.T) {
	clock := clockwork.NewFakeClock()
	scorer := &gateScorer{release: make(chan struct{})}
	tracker := cooldown.NewMemoryTracker(clock)
	assessor := assess.NewAssessor(assess.Thresholds{CriticalBelow: -0.7, HighBelow: -0.5, MediumBelow: -0.3, EmotionAlertAbove: 0.5}, tracker, 15*time.Minute, clock)
	dispatcher := notify.NewDispatcher(nil, 1, time.Millisecond, time.Second, clock)
	trends := trend.NewAggregator(time.Hour, nil, clock)

	orch := New(Config{MaxConcurrentTickets: 1, TicketTimeout: 5 * time.Second},
		scorer, assessor, advisor.New(), dispatcher, trends, nil, nil, clock)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := orch.Process(context.Background(), ticket(clock, "hold the slot"))
		assert.NoError(t, err)
	}()

	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := orch.Process(ctx, ticket(clock, "never admitted"))
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindInternal))

	close(scorer.release)
	wg.Wait()
}

type feedRecorder struct {
	mu     sync.Mutex
	alerts []domain.Alert
}

func (f *feedRecorder) Publish(alert domain.Alert) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alerts = append(f.alerts, alert)
}

func TestProcess_PublishesAlertsToFeed(t *testing.T) {
	env := newTestEnv(Config{MaxConcurrentTickets: 4, TicketTimeout: 5 * time.Second})
	feed := &feedRecorder{}
	env.orch.feed = feed

	_, err := env.orch.Process(context.Background(), ticket(env.clock, "This service is absolutely terrible!"))
	require.NoError(t, err)
	_, err = env.orch.Process(context.Background(), ticket(env.clock, "Love the app!"))
	require.NoError(t, err)

	feed.mu.Lock()
	defer feed.mu.Unlock()
	require.Len(t, feed.alerts, 1, "only alert-worthy, unsuppressed tickets reach the feed")
	assert.Equal(t, "This service is absolutely terrible!", feed.alerts[0].Ticket.Content)
}
