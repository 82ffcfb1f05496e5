// Package logging is the structured logger shared by the server and the
// client. Both binaries log through slog; tests use Nop.
package logging

import "context"

// Logger takes alternating key/value args after the message:
//
//	log.Info(ctx, "record created", "id", rec.ID, "category", rec.Category)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a logger that adds args to every record.
	With(args ...any) Logger
}
