package logx

import (
	"context"

	"pkt.systems/pslog"
)

type contextKey int

const (
	runKey contextKey = iota
	accountKey
)

// Ctx returns the logger bound to the provided context.
func Ctx(ctx context.Context) pslog.Logger {
	return pslog.Ctx(ctx)
}

// WithRun annotates the logger with the batch run id if present.
func WithRun(ctx context.Context, runID string) pslog.Logger {
	log := pslog.Ctx(ctx)
	if runID != "" {
		if current, ok := ctx.Value(runKey).(string); ok && current == runID {
			return log
		}
		log = log.With("run", runID)
	}
	return log
}

// WithAccount annotates the logger with a masked account identifier.
func WithAccount(ctx context.Context, masked string) pslog.Logger {
	log := pslog.Ctx(ctx)
	if masked != "" {
		if current, ok := ctx.Value(accountKey).(string); ok && current == masked {
			return log
		}
		log = log.With("account", masked)
	}
	return log
}

// WithState annotates the logger with a check-in state name.
func WithState(log pslog.Logger, state string) pslog.Logger {
	if state != "" {
		log = log.With("state", state)
	}
	return log
}

// ContextWithRunLogger attaches the logger and run marker to the context.
func ContextWithRunLogger(ctx context.Context, log pslog.Logger, runID string) context.Context {
	ctx = pslog.ContextWithLogger(ctx, log)
	if runID == "" {
		return ctx
	}
	return context.WithValue(ctx, runKey, runID)
}

// ContextWithAccountLogger attaches the logger and account marker to the context.
func ContextWithAccountLogger(ctx context.Context, log pslog.Logger, masked string) context.Context {
	ctx = pslog.ContextWithLogger(ctx, log)
	if masked == "" {
		return ctx
	}
	return context.WithValue(ctx, accountKey, masked)
}
