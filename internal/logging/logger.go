// Package logging is the structured logger taskkeeper writes through. The
// backend is chosen at startup by New: log/slog or zap.
package logging

import "context"

// Logger takes a message plus key/value pairs, e.g.
//
//	log.Info(ctx, "user logged in", "session_id", id, "user_id", userID)
//
// Services attach session_id and user_id so one login can be followed
// through the log.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)

	// Error is used for store failures; args carry the underlying error.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that adds args to every entry.
	With(args ...any) Logger
}
