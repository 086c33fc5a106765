// Package metrics defines the Prometheus collectors for the pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline metrics
var (
	// TicketsProcessedTotal tracks finished pipeline runs by terminal state
	TicketsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchdog_tickets_processed_total",
			Help: "Finished pipeline runs by terminal state",
		},
		[]string{"state"},
	)

	// TicketProcessingDuration tracks end-to-end pipeline latency in seconds
	TicketProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "watchdog_ticket_processing_duration_seconds",
			Help:    "End-to-end pipeline duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	// TicketsInFlight tracks pipeline runs currently holding a concurrency slot
	TicketsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "watchdog_tickets_in_flight",
			Help: "Pipeline runs currently holding a concurrency slot",
		},
	)

	// TicketTimeoutsTotal tracks pipeline runs finalized by timeout
	TicketTimeoutsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "watchdog_ticket_timeouts_total",
			Help: "Pipeline runs finalized with a partial result after timeout",
		},
	)
)

// Scoring metrics
var (
	// SentimentScoredTotal tracks scored tickets by method
	SentimentScoredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchdog_sentiment_scored_total",
			Help: "Scored tickets by method",
		},
		[]string{"method"},
	)

	// SentimentScore observes the distribution of sentiment scores
	SentimentScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "watchdog_sentiment_score",
			Help:    "Distribution of sentiment scores",
			Buckets: []float64{-1, -.7, -.5, -.3, -.1, .1, .3, .5, .7, 1},
		},
	)
)

// Alerting metrics
var (
	// AlertDecisionsTotal tracks alert decisions by severity and suppression
	AlertDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchdog_alert_decisions_total",
			Help: "Alert decisions by severity and suppression outcome",
		},
		[]string{"severity", "suppressed"},
	)

	// SinkAttemptsTotal tracks sink deliveries by sink and outcome
	SinkAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchdog_sink_attempts_total",
			Help: "Notification sink deliveries by sink and outcome",
		},
		[]string{"sink", "outcome"},
	)

	// SinkDeliveryDuration tracks per-sink delivery latency including retries
	SinkDeliveryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "watchdog_sink_delivery_duration_seconds",
			Help:    "Per-sink delivery duration in seconds, retries included",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"sink"},
	)
)

// Trend metrics
var (
	// TrendRecordsTotal tracks trend bucket updates by status
	TrendRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchdog_trend_records_total",
			Help: "Trend bucket updates by status",
		},
		[]string{"status"},
	)

	// TrendActiveBuckets tracks trend buckets currently held in memory
	TrendActiveBuckets = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "watchdog_trend_active_buckets",
			Help: "Trend buckets currently held in memory",
		},
	)
)

// Live feed metrics
var (
	// FeedClients tracks currently connected live feed clients
	FeedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "watchdog_feed_clients",
			Help: "Currently connected live feed clients",
		},
	)

	// FeedEventsDropped tracks alert events dropped for slow feed clients
	FeedEventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "watchdog_feed_events_dropped_total",
			Help: "Alert events dropped because a feed client's buffer was full",
		},
	)
)

// Redis metrics
var (
	// RedisOpsTotal tracks Redis commands by operation and status
	RedisOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchdog_redis_ops_total",
			Help: "Redis commands by operation and status",
		},
		[]string{"operation", "status"},
	)

	// RedisOpDuration tracks Redis command latency by operation
	RedisOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "watchdog_redis_op_duration_seconds",
			Help:    "Redis command duration in seconds by operation",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		},
		[]string{"operation"},
	)

	// RedisConnectionErrors tracks failed Redis dials
	RedisConnectionErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "watchdog_redis_connection_errors_total",
			Help: "Failed Redis connection attempts",
		},
	)

	// CircuitBreakerState exposes the current breaker state (0 closed, 1 half-open, 2 open)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "watchdog_circuit_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"component"},
	)

	// CircuitBreakerStateChanges tracks breaker transitions by target state
	CircuitBreakerStateChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchdog_circuit_breaker_state_changes_total",
			Help: "Circuit breaker transitions by target state",
		},
		[]string{"component", "state"},
	)
)
