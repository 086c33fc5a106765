// Package pipeline runs tickets through the score, assess, notify and
// record stages. The orchestrator is the only component that references
// more than one domain capability.
package pipeline

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/semaphore"

	"github.com/sentiwatch/watchdog/internal/domain"
	"github.com/sentiwatch/watchdog/internal/errors"
	"github.com/sentiwatch/watchdog/internal/logging"
	"github.com/sentiwatch/watchdog/internal/metrics"
)

// AlertPublisher receives every alert that cleared suppression, after
// its sink fan-out has finished. Used for the live feed.
type AlertPublisher interface {
	Publish(alert domain.Alert)
}

// Config bounds a single orchestrator instance.
type Config struct {
	MaxConcurrentTickets int
	TicketTimeout        time.Duration
}

// Orchestrator implements the per-ticket state machine. Concurrency is
// bounded by a weighted semaphore; Process blocks while all slots are
// taken, which is the backpressure callers observe.
type Orchestrator struct {
	scorer     domain.Scorer
	assessor   domain.Assessor
	advisor    domain.Advisor
	dispatcher domain.Dispatcher
	trends     domain.TrendRecorder
	results    domain.ResultStore
	feed       AlertPublisher
	sem        *semaphore.Weighted
	timeout    time.Duration
	clock      clockwork.Clock
}

// New creates the orchestrator. results and feed may be nil when
// persistence or the live feed are not configured.
func New(cfg Config, scorer domain.Scorer, assessor domain.Assessor, advisor domain.Advisor, dispatcher domain.Dispatcher, trends domain.TrendRecorder, results domain.ResultStore, feed AlertPublisher, clock clockwork.Clock) *Orchestrator {
	return &Orchestrator{
		scorer:     scorer,
		assessor:   assessor,
		advisor:    advisor,
		dispatcher: dispatcher,
		trends:     trends,
		results:    results,
		feed:       feed,
		sem:        semaphore.NewWeighted(int64(cfg.MaxConcurrentTickets)),
		timeout:    cfg.TicketTimeout,
		clock:      clock,
	}
}

// Process runs one ticket to a terminal state and returns its result.
// Every accepted ticket yields exactly one result, even on partial
// failure; the only error return without a meaningful result is a
// caller context that died while waiting for a concurrency slot.
func (o *Orchestrator) Process(ctx context.Context, ticket domain.Ticket) (domain.ProcessResult, error) {
	if err := o.sem.Acquire(ctx, 1); err != nil {
		return domain.ProcessResult{}, errors.InternalError("acquiring pipeline slot", err).
			WithContext("ticket_id", ticket.ID.String())
	}
	defer o.sem.Release(1)

	metrics.TicketsInFlight.Inc()
	defer metrics.TicketsInFlight.Dec()

	tctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	start := o.clock.Now()
	result, err := o.run(tctx, ticket)
	result.Elapsed = o.clock.Since(start)
	result.ProcessedAt = o.clock.Now()

	metrics.TicketsProcessedTotal.WithLabelValues(string(result.State)).Inc()
	metrics.TicketProcessingDuration.Observe(result.Elapsed.Seconds())

	o.persist(ctx, &result)

	return result, err
}

// run advances the state machine. A stage deadline finalizes the ticket
// with whatever stages already completed; only a scoring failure
// rejects it outright.
func (o *Orchestrator) run(ctx context.Context, ticket domain.Ticket) (domain.ProcessResult, error) {
	log := logging.WithTicket(ticket.ID.String())
	result := domain.ProcessResult{
		TicketID: ticket.ID,
		State:    domain.StateReceived,
	}

	sentiment, err := o.scorer.Score(ctx, ticket)
	if err != nil {
		result.State = domain.StateRejected
		result.Annotations = append(result.Annotations, err.Error())
		log.Warn("ticket rejected", "error", err)
		return result, err
	}
	result.State = domain.StateScored
	result.Sentiment = &sentiment

	if timedOut(ctx) {
		return o.finalizeTimeout(result, "scored", log), nil
	}

	decision, err := o.assessor.Assess(ctx, ticket, sentiment)
	if err != nil {
		// A broken cooldown backend must not lose the ticket. Alert
		// anyway and note the degraded check; duplicates beat silence.
		result.Annotations = append(result.Annotations,
			fmt.Sprintf("cooldown check degraded: %v", err))
		log.Error("cooldown check failed, proceeding without suppression", "error", err)
	}
	result.State = domain.StateAssessed
	result.Decision = &decision

	// The advisor handles severity none itself with a neutral
	// no-action recommendation.
	result.Recommendation = o.advisor.Advise(ticket, sentiment, decision)

	if timedOut(ctx) {
		return o.finalizeTimeout(result, "assessed", log), nil
	}

	switch {
	case !decision.Severity.AlertWorthy():
		// Nothing to notify; fall through to recording.

	case decision.Suppressed:
		result.State = domain.StateSuppressed
		log.Info("alert suppressed",
			"severity", decision.Severity.String(),
			"reason", decision.SuppressionReason)

	default:
		alert := domain.Alert{
			Ticket:         ticket,
			Sentiment:      sentiment,
			Decision:       decision,
			Recommendation: result.Recommendation,
		}
		result.Notifications = o.dispatcher.Dispatch(ctx, alert)
		if allFailed(result.Notifications) {
			result.State = domain.StateNotifyFailed
			result.Annotations = append(result.Annotations, "all notification sinks failed")
		} else {
			result.State = domain.StateNotified
		}
		if o.feed != nil {
			o.feed.Publish(alert)
		}
	}

	if err := o.trends.Record(ctx, ticket, sentiment, decision); err != nil {
		// Aggregation failures never fail the ticket.
		result.Annotations = append(result.Annotations,
			fmt.Sprintf("trend recording failed: %v", err))
		log.Error("trend recording failed", "error", err)
	} else {
		result.State = domain.StateRecorded
	}
	result.State = domain.StateDone
	return result, nil
}

// finalizeTimeout closes out a ticket whose budget expired after the
// named stage. The partial result is kept and surfaced as done.
func (o *Orchestrator) finalizeTimeout(result domain.ProcessResult, afterStage string, log *slog.Logger) domain.ProcessResult {
	metrics.TicketTimeoutsTotal.Inc()
	terr := errors.TimeoutError(
		fmt.Sprintf("processing exceeded budget after %s stage", afterStage),
		context.DeadlineExceeded)
	result.Annotations = append(result.Annotations, terr.Error())
	result.State = domain.StateDone
	log.Warn("ticket processing timed out", "after_stage", afterStage)
	return result
}

// persist saves the finished result when a store is configured. Uses
// the caller context rather than the expired per-ticket one so timed
// out tickets still get persisted.
func (o *Orchestrator) persist(ctx context.Context, result *domain.ProcessResult) {
	if o.results == nil {
		return
	}
	if err := o.results.Save(ctx, *result); err != nil {
		result.Annotations = append(result.Annotations,
			fmt.Sprintf("result persistence failed: %v", err))
		logging.WithTicket(result.TicketID.String()).Error("saving result", "error", err)
	}
}

func timedOut(ctx context.Context) bool {
	return stderrors.Is(ctx.Err(), context.DeadlineExceeded)
}

func allFailed(attempts []domain.NotificationAttempt) bool {
	if len(attempts) == 0 {
		return false
	}
	for _, a := range attempts {
		if a.Outcome == domain.OutcomeDelivered {
			return false
		}
	}
	return true
}
