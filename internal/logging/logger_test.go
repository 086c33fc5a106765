package logging

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The helpers must work before InitLogger runs, since library
// consumers and test packages never call it.
func TestHelpersWorkWithoutInit(t *testing.T) {
	require.NotNil(t, Logger)

	assert.NotNil(t, WithTicket("t-1"))
	assert.NotNil(t, WithSink("slack"))
	assert.NotNil(t, WithError(assert.AnError))
}

func TestInitLogger(t *testing.T) {
	prev := Logger
	defer func() {
		Logger = prev
		slog.SetDefault(prev)
	}()

	tests := []struct {
		level   string
		enabled slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			InitLogger(tt.level, "text")
			require.NotNil(t, Logger)
			assert.True(t, Logger.Enabled(context.Background(), tt.enabled))
		})
	}
}
