package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentiwatch/watchdog/internal/advisor"
	"github.com/sentiwatch/watchdog/internal/assess"
	"github.com/sentiwatch/watchdog/internal/config"
	"github.com/sentiwatch/watchdog/internal/cooldown"
	"github.com/sentiwatch/watchdog/internal/domain"
	"github.com/sentiwatch/watchdog/internal/notify"
	"github.com/sentiwatch/watchdog/internal/pipeline"
	"github.com/sentiwatch/watchdog/internal/sentiment"
	"github.com/sentiwatch/watchdog/internal/trend"
)

type recordingSink struct {
	mu     sync.Mutex
	alerts []domain.Alert
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Send(_ context.Context, alert domain.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, alert)
	return nil
}

func newTestServer(t *testing.T) (*Server, *recordingSink) {
	t.Helper()

	cfg := &config.Config{
		Port:                 "8080",
		CriticalBelow:        -0.7,
		HighBelow:            -0.5,
		MediumBelow:          -0.3,
		EmotionAlertAbove:    0.5,
		CooldownWindow:       15 * time.Minute,
		MaxConcurrentTickets: 4,
		TicketTimeout:        5 * time.Second,
		MaxContentLength:     10000,
		ShortTextBelow:       120,
		NotifyMaxAttempts:    3,
		NotifyBackoffBase:    time.Millisecond,
		NotifySinkTimeout:    time.Second,
		TrendBucketSize:      time.Hour,
		FeedMaxClients:       10,
	}

	clock := clockwork.NewFakeClock()
	sink := &recordingSink{}

	scorer := sentiment.NewScorer(sentiment.Config{
		ShortTextBelow:   cfg.ShortTextBelow,
		MaxContentLength: cfg.MaxContentLength,
	}, clock)
	tracker := cooldown.NewMemoryTracker(clock)
	assessor := assess.NewAssessor(assess.Thresholds{
		CriticalBelow:     cfg.CriticalBelow,
		HighBelow:         cfg.HighBelow,
		MediumBelow:       cfg.MediumBelow,
		EmotionAlertAbove: cfg.EmotionAlertAbove,
	}, tracker, cfg.CooldownWindow, clock)
	dispatcher := notify.NewDispatcher([]domain.Sink{sink}, cfg.NotifyMaxAttempts, cfg.NotifyBackoffBase, cfg.NotifySinkTimeout, clock)
	trends := trend.NewAggregator(cfg.TrendBucketSize, nil, clock)

	orch := pipeline.New(pipeline.Config{
		MaxConcurrentTickets: cfg.MaxConcurrentTickets,
		TicketTimeout:        cfg.TicketTimeout,
	}, scorer, assessor, advisor.New(), dispatcher, trends, nil, nil, clock)

	return NewServer(cfg, orch, trends, nil, nil, nil, nil, clock), sink
}

func postTicket(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/tickets", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}

func TestSubmitTicket_NegativeContentAlerts(t *testing.T) {
	srv, sink := newTestServer(t)

	rec := postTicket(t, srv, `{
		"channel": "email",
		"source": "support",
		"content": "This service is absolutely terrible!"
	}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result domain.ProcessResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, domain.StateDone, result.State)
	require.NotNil(t, result.Sentiment)
	assert.Negative(t, result.Sentiment.Score)
	require.NotNil(t, result.Decision)
	assert.False(t, result.Decision.Suppressed)
	require.Len(t, result.Notifications, 1)
	assert.Equal(t, domain.OutcomeDelivered, result.Notifications[0].Outcome)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	assert.Len(t, sink.alerts, 1)
}

func TestSubmitTicket_PositiveContentNoAlert(t *testing.T) {
	srv, sink := newTestServer(t)

	rec := postTicket(t, srv, `{
		"channel": "email",
		"source": "support",
		"content": "Love the app!"
	}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var result domain.ProcessResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, domain.SeverityNone, result.Decision.Severity)
	assert.Empty(t, result.Notifications)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	assert.Empty(t, sink.alerts)
}

func TestSubmitTicket_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing content", `{"channel": "email", "source": "support"}`},
		{"whitespace content", `{"channel": "email", "source": "support", "content": "   "}`},
		{"missing channel", `{"source": "support", "content": "hello"}`},
		{"missing source", `{"channel": "email", "content": "hello"}`},
		{"unknown priority", `{"channel": "email", "source": "support", "content": "hello", "priority": "asap"}`},
		{"malformed JSON", `{"channel": `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t)
			rec := postTicket(t, srv, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

			var resp map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, "validation", resp["kind"])
		})
	}
}

func TestSubmitTicket_OverlongContentRejected(t *testing.T) {
	srv, _ := newTestServer(t)

	body := `{"channel": "email", "source": "support", "content": "` +
		strings.Repeat("a", 10001) + `"}`
	rec := postTicket(t, srv, body)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "analysis", resp["kind"])
}

func TestTrends(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := postTicket(t, srv, `{
		"channel": "email",
		"source": "support",
		"content": "This service is absolutely terrible!"
	}`)
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/trends?window=1h", nil)
	rec = httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp trendsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "1h", resp.Window)
	require.Len(t, resp.Buckets, 1)
	assert.Equal(t, "email", resp.Buckets[0].Channel)
	assert.Equal(t, int64(1), resp.Buckets[0].Tickets)
	assert.Equal(t, int64(1), resp.Buckets[0].Alerts)
}

func TestTrends_InvalidWindow(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/trends?window=7d", nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTrends_DefaultWindow(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/trends", nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp trendsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "24h", resp.Window)
	assert.Empty(t, resp.Buckets)
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/health/live", "/health/ready", "/version"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		srv.echo.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestGetTicket_WithoutStore(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/tickets/00000000-0000-0000-0000-000000000000", nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
