// Package notify delivers alerts to the configured notification sinks.
package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/sentiwatch/watchdog/internal/domain"
	"github.com/sentiwatch/watchdog/internal/logging"
	"github.com/sentiwatch/watchdog/internal/metrics"
	"github.com/sentiwatch/watchdog/internal/platform/retry"
)

// Dispatcher implements domain.Dispatcher. Every sink gets its own
// goroutine and its own retry budget; one sink exhausting its retries
// never blocks or rolls back another sink's delivery.
type Dispatcher struct {
	sinks       []domain.Sink
	maxAttempts int
	backoffBase time.Duration
	sinkTimeout time.Duration
	clock       clockwork.Clock
}

func NewDispatcher(sinks []domain.Sink, maxAttempts int, backoffBase, sinkTimeout time.Duration, clock clockwork.Clock) *Dispatcher {
	return &Dispatcher{
		sinks:       sinks,
		maxAttempts: maxAttempts,
		backoffBase: backoffBase,
		sinkTimeout: sinkTimeout,
		clock:       clock,
	}
}

// Dispatch fans the alert out to all sinks and blocks until every sink
// has either delivered or exhausted its retries. It returns one
// attempt record per sink; terminal failures are recorded, never
// swallowed.
func (d *Dispatcher) Dispatch(ctx context.Context, alert domain.Alert) []domain.NotificationAttempt {
	attempts := make([]domain.NotificationAttempt, len(d.sinks))

	var wg sync.WaitGroup
	for i, sink := range d.sinks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			attempts[i] = d.deliver(ctx, sink, alert)
		}()
	}
	wg.Wait()

	return attempts
}

func (d *Dispatcher) deliver(ctx context.Context, sink domain.Sink, alert domain.Alert) domain.NotificationAttempt {
	attempt := domain.NotificationAttempt{
		TicketID: alert.Ticket.ID,
		Sink:     sink.Name(),
		Outcome:  domain.OutcomePending,
	}

	start := d.clock.Now()
	policy := retry.Policy{
		MaxAttempts: d.maxAttempts,
		BaseBackoff: d.backoffBase,
		OnRetry: func(n int, err error, backoff time.Duration) {
			logging.WithSink(sink.Name()).Warn("Sink delivery failed, retrying",
				"ticket_id", alert.Ticket.ID.String(),
				"attempt", n,
				"backoff", backoff.String(),
				"error", err)
		},
	}

	err := retry.DoVoid(ctx, policy, classify, func() error {
		attempt.Attempts++
		sendCtx, cancel := context.WithTimeout(ctx, d.sinkTimeout)
		defer cancel()
		return sink.Send(sendCtx, alert)
	})

	attempt.Duration = d.clock.Since(start)
	metrics.SinkDeliveryDuration.WithLabelValues(sink.Name()).Observe(attempt.Duration.Seconds())

	if err != nil {
		attempt.Outcome = domain.OutcomeFailed
		attempt.LastError = err.Error()
		metrics.SinkAttemptsTotal.WithLabelValues(sink.Name(), string(domain.OutcomeFailed)).Inc()
		logging.WithSink(sink.Name()).Error("Sink delivery terminally failed",
			"ticket_id", alert.Ticket.ID.String(),
			"attempts", attempt.Attempts,
			"error", err)
		return attempt
	}

	attempt.Outcome = domain.OutcomeDelivered
	metrics.SinkAttemptsTotal.WithLabelValues(sink.Name(), string(domain.OutcomeDelivered)).Inc()
	return attempt
}

// classify keeps retrying transient sink errors, including per-attempt
// timeouts. Cancellation is permanent: the pipeline run is gone. A
// parent deadline that fires mid-backoff is caught by the retry loop
// itself.
func classify(err error) retry.Action {
	if errors.Is(err, context.Canceled) {
		return retry.Stop
	}
	return retry.Retry
}
