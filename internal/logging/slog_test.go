package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(level slog.Level) (*SlogLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: level})
	return NewSlogLogger(slog.New(h)), &buf
}

func TestSlogLogger_DebugFollowsLevel(t *testing.T) {
	ctx := context.Background()

	quiet, buf := newBufferLogger(slog.LevelInfo)
	quiet.Debug(ctx, "cache loaded", "tasks", 3)
	assert.Empty(t, buf.String())

	verbose, buf := newBufferLogger(slog.LevelDebug)
	verbose.Debug(ctx, "cache loaded", "tasks", 3)
	out := buf.String()
	assert.Contains(t, out, "level=DEBUG")
	assert.Contains(t, out, `msg="cache loaded"`)
	assert.Contains(t, out, "tasks=3")
}

func TestSlogLogger_WithCarriesSessionFields(t *testing.T) {
	log, buf := newBufferLogger(slog.LevelDebug)
	ctx := context.Background()

	sessLog := log.With("session_id", "5f0c", "user_id", int64(42))
	sessLog.Warn(ctx, "access to foreign task", "task_id", int64(7))
	log.Info(ctx, "plain")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	assert.Contains(t, lines[0], "level=WARN")
	assert.Contains(t, lines[0], "session_id=5f0c")
	assert.Contains(t, lines[0], "user_id=42")
	assert.Contains(t, lines[0], "task_id=7")

	// the parent logger is not affected
	assert.NotContains(t, lines[1], "session_id")
	assert.Contains(t, lines[1], "level=INFO")
}

func TestSlogLogger_ErrorLevel(t *testing.T) {
	log, buf := newBufferLogger(slog.LevelWarn)
	ctx := context.Background()

	log.Info(ctx, "dropped")
	log.Error(ctx, "load tasks failed", "error", "connection refused")

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, `error="connection refused"`)
}

func TestDiscard(t *testing.T) {
	var log Logger = Discard()
	ctx := context.Background()

	assert.NotPanics(t, func() {
		log.Debug(ctx, "d")
		log.Info(ctx, "i")
		log.Warn(ctx, "w")
		log.Error(ctx, "e", "k", "v")
		log.With("session_id", "x").Info(ctx, "still nothing")
	})
}
