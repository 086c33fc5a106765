package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

// Config holds all resolved runtime settings. Thresholds are
// configuration, never constants baked into pipeline logic.
type Config struct {
	AppEnv      string `env:"APP_ENV" default:"development"`
	Port        string `env:"PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`
	LogLevel    string `env:"LOG_LEVEL" default:"info"`
	LogFormat   string `env:"LOG_FORMAT" default:"text"`

	// Severity thresholds on the [-1, 1] sentiment scale. Negative =
	// unfavorable; a score at or below a threshold takes that
	// severity (closed lower bound).
	CriticalBelow float64 `env:"SENTIMENT_CRITICAL_BELOW" default:"-0.7"`
	HighBelow     float64 `env:"SENTIMENT_HIGH_BELOW" default:"-0.5"`
	MediumBelow   float64 `env:"SENTIMENT_MEDIUM_BELOW" default:"-0.3"`

	// EmotionAlertAbove raises severity to high when any emotion
	// sub-score exceeds it.
	EmotionAlertAbove float64 `env:"EMOTION_ALERT_ABOVE" default:"0.5"`

	CooldownWindow time.Duration `env:"ALERT_COOLDOWN_WINDOW" default:"15m"`

	MaxConcurrentTickets int           `env:"MAX_CONCURRENT_TICKETS" default:"10"`
	TicketTimeout        time.Duration `env:"TICKET_TIMEOUT" default:"5s"`
	MaxContentLength     int           `env:"MAX_CONTENT_LENGTH" default:"10000"`

	// ShortTextBelow selects the lexicon method for texts shorter than
	// this many runes (unless flagged ambiguous).
	ShortTextBelow int `env:"SHORT_TEXT_BELOW" default:"120"`

	NotifyMaxAttempts int           `env:"NOTIFY_MAX_ATTEMPTS" default:"3"`
	NotifyBackoffBase time.Duration `env:"NOTIFY_BACKOFF_BASE" default:"500ms"`
	NotifySinkTimeout time.Duration `env:"NOTIFY_SINK_TIMEOUT" default:"10s"`

	TrendBucketSize time.Duration `env:"TREND_BUCKET_SIZE" default:"1h"`

	FeedMaxClients int `env:"FEED_MAX_CLIENTS" default:"50"`

	SlackWebhookURL string `env:"SLACK_WEBHOOK_URL"`
	AlertWebhookURL string `env:"ALERT_WEBHOOK_URL"`
	ResendAPIKey    string `env:"RESEND_API_KEY"`
	AlertEmailFrom  string `env:"ALERT_EMAIL_FROM"`
	AlertEmailTo    string `env:"ALERT_EMAIL_TO"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks invariants that are fatal at startup. An invalid
// threshold ordering silently changes alerting semantics, so the
// process refuses to start instead.
func Validate(cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.CriticalBelow > cfg.HighBelow || cfg.HighBelow > cfg.MediumBelow {
		return fmt.Errorf("severity thresholds must be ordered critical <= high <= medium, got %.2f / %.2f / %.2f",
			cfg.CriticalBelow, cfg.HighBelow, cfg.MediumBelow)
	}
	if cfg.MediumBelow >= 0 {
		return fmt.Errorf("SENTIMENT_MEDIUM_BELOW must be negative, got %.2f", cfg.MediumBelow)
	}
	if cfg.EmotionAlertAbove <= 0 || cfg.EmotionAlertAbove > 1 {
		return fmt.Errorf("EMOTION_ALERT_ABOVE must be in (0, 1], got %.2f", cfg.EmotionAlertAbove)
	}

	if cfg.MaxConcurrentTickets < 1 {
		return fmt.Errorf("MAX_CONCURRENT_TICKETS must be at least 1, got %d", cfg.MaxConcurrentTickets)
	}
	if cfg.TicketTimeout <= 0 {
		return fmt.Errorf("TICKET_TIMEOUT must be positive, got %v", cfg.TicketTimeout)
	}
	if cfg.MaxContentLength < 1 {
		return fmt.Errorf("MAX_CONTENT_LENGTH must be at least 1, got %d", cfg.MaxContentLength)
	}
	if cfg.NotifyMaxAttempts < 1 {
		return fmt.Errorf("NOTIFY_MAX_ATTEMPTS must be at least 1, got %d", cfg.NotifyMaxAttempts)
	}
	if cfg.CooldownWindow <= 0 {
		return fmt.Errorf("ALERT_COOLDOWN_WINDOW must be positive, got %v", cfg.CooldownWindow)
	}
	if cfg.TrendBucketSize <= 0 {
		return fmt.Errorf("TREND_BUCKET_SIZE must be positive, got %v", cfg.TrendBucketSize)
	}
	if cfg.FeedMaxClients < 1 {
		return fmt.Errorf("FEED_MAX_CLIENTS must be at least 1, got %d", cfg.FeedMaxClients)
	}

	return nil
}
