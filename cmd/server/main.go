package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"

	"github.com/sentiwatch/watchdog/internal/advisor"
	"github.com/sentiwatch/watchdog/internal/assess"
	"github.com/sentiwatch/watchdog/internal/config"
	"github.com/sentiwatch/watchdog/internal/cooldown"
	"github.com/sentiwatch/watchdog/internal/domain"
	"github.com/sentiwatch/watchdog/internal/livefeed"
	"github.com/sentiwatch/watchdog/internal/logging"
	"github.com/sentiwatch/watchdog/internal/notify"
	"github.com/sentiwatch/watchdog/internal/pipeline"
	"github.com/sentiwatch/watchdog/internal/postgres"
	"github.com/sentiwatch/watchdog/internal/redis"
	"github.com/sentiwatch/watchdog/internal/sentiment"
	"github.com/sentiwatch/watchdog/internal/server"
	"github.com/sentiwatch/watchdog/internal/trend"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(cfg *config.Config) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := postgres.RunMigrationsWithLock(ctx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return pool
}

// setupRedis returns nil when no REDIS_URL is configured; the caller
// falls back to in-process cooldown tracking.
func setupRedis(ctx context.Context, cfg *config.Config) *redis.Client {
	if cfg.RedisURL == "" {
		slog.Info("No REDIS_URL configured, cooldown state will be process-local")
		return nil
	}

	client, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

// setupSinks builds every notification sink the configuration enables.
// With none configured, alerts go to the structured log so a local
// instance still shows what it would have sent.
func setupSinks(cfg *config.Config) []domain.Sink {
	var sinks []domain.Sink

	if cfg.SlackWebhookURL != "" {
		sinks = append(sinks, notify.NewSlackSink(cfg.SlackWebhookURL, nil))
	}
	if cfg.AlertWebhookURL != "" {
		sinks = append(sinks, notify.NewWebhookSink(cfg.AlertWebhookURL, nil))
	}
	if cfg.ResendAPIKey != "" && cfg.AlertEmailFrom != "" && cfg.AlertEmailTo != "" {
		recipients := strings.Split(cfg.AlertEmailTo, ",")
		for i := range recipients {
			recipients[i] = strings.TrimSpace(recipients[i])
		}
		sinks = append(sinks, notify.NewEmailSink(cfg.ResendAPIKey, cfg.AlertEmailFrom, recipients))
	}

	if len(sinks) == 0 {
		slog.Warn("No notification sinks configured, alerts will only be logged")
		sinks = append(sinks, notify.LogSink{})
	}

	return sinks
}

func runGracefulShutdown(srv *server.Server, hub *livefeed.Hub) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		hub.Stop()

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	pool := setupDB(cfg)
	defer pool.Close()

	redisClient := setupRedis(context.Background(), cfg)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	var tracker domain.CooldownTracker
	var trendStore domain.TrendStore
	if redisClient != nil {
		tracker = redis.NewCooldownStore(redisClient.Underlying())
		trendStore = redis.NewTrendStore(redisClient.Underlying())
	} else {
		tracker = cooldown.NewMemoryTracker(clock)
	}

	scorer := sentiment.NewScorer(sentiment.Config{
		ShortTextBelow:   cfg.ShortTextBelow,
		MaxContentLength: cfg.MaxContentLength,
	}, clock)

	assessor := assess.NewAssessor(assess.Thresholds{
		CriticalBelow:     cfg.CriticalBelow,
		HighBelow:         cfg.HighBelow,
		MediumBelow:       cfg.MediumBelow,
		EmotionAlertAbove: cfg.EmotionAlertAbove,
	}, tracker, cfg.CooldownWindow, clock)

	dispatcher := notify.NewDispatcher(setupSinks(cfg), cfg.NotifyMaxAttempts, cfg.NotifyBackoffBase, cfg.NotifySinkTimeout, clock)
	trends := trend.NewAggregator(cfg.TrendBucketSize, trendStore, clock)
	results := postgres.NewResultStore(pool)
	hub := livefeed.NewHub(cfg.FeedMaxClients)

	orch := pipeline.New(pipeline.Config{
		MaxConcurrentTickets: cfg.MaxConcurrentTickets,
		TicketTimeout:        cfg.TicketTimeout,
	}, scorer, assessor, advisor.New(), dispatcher, trends, results, hub, clock)

	// Pass nil explicitly when Redis is absent to avoid a typed-nil
	// health checker.
	var srv *server.Server
	if redisClient != nil {
		srv = server.NewServer(cfg, orch, trends, results, hub, pool, redisClient, clock)
	} else {
		srv = server.NewServer(cfg, orch, trends, results, hub, pool, nil, clock)
	}

	done := runGracefulShutdown(srv, hub)

	slog.Info("Server starting", "port", cfg.Port)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
