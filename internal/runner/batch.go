package runner

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"pkt.systems/leafcheck/internal/browser"
	"pkt.systems/leafcheck/internal/logx"
	"pkt.systems/leafcheck/schema"
)

// AccountRunner processes one credential.
type AccountRunner interface {
	Run(ctx context.Context, cred schema.Credential) schema.AccountResult
}

// Notifier receives the finished summary.
type Notifier interface {
	Dispatch(ctx context.Context, summary schema.RunSummary) error
}

// Coordinator runs accounts one after another with a random pause between
// them and reports the aggregate.
type Coordinator struct {
	Accounts  AccountRunner
	Notifier  Notifier
	JitterMin time.Duration
	JitterMax time.Duration

	// Test hooks; zero values use the real clock and randomness.
	Sleep func(ctx context.Context, d time.Duration) error
	Rand  func(n int64) int64
	Now   func() time.Time
	NewID func() string
}

// Run processes creds in order and returns one result per credential, even
// when ctx ends early.
func (c *Coordinator) Run(ctx context.Context, creds []schema.Credential) schema.RunSummary {
	runID := c.newID()
	log := logx.WithRun(ctx, runID)
	ctx = logx.ContextWithRunLogger(ctx, log, runID)
	ctx, span := tracer.Start(ctx, "runner.batch", trace.WithAttributes(
		attribute.String("run.id", runID),
		attribute.Int("run.accounts", len(creds)),
	))
	defer span.End()

	summary := schema.RunSummary{RunID: runID, Started: c.now()}
	log.Info("batch start", "accounts", len(creds))
	for i, cred := range creds {
		if err := ctx.Err(); err != nil {
			summary.Add(schema.AccountResult{
				Account: cred.Masked(),
				Outcome: schema.Errored(DetailException, err),
				Balance: schema.BalancePlaceholder,
			})
			continue
		}
		log.Info("account start", "index", i+1, "total", len(creds))
		summary.Add(c.runAccount(ctx, cred))

		if i < len(creds)-1 {
			wait := c.jitter()
			log.Info("account jitter", "wait", wait.String())
			if err := c.sleep(ctx, wait); err != nil {
				log.Warn("batch interrupted", "err", err)
			}
		}
	}
	summary.Finished = c.now()
	span.SetAttributes(attribute.Int("run.succeeded", summary.Succeeded))
	log.Info("batch finished",
		"total", summary.Total,
		"succeeded", summary.Succeeded,
		"elapsed", summary.Finished.Sub(summary.Started).String(),
	)

	if c.Notifier != nil {
		// The report still goes out when the batch was interrupted.
		_ = c.Notifier.Dispatch(context.WithoutCancel(ctx), summary)
	}
	return summary
}

func (c *Coordinator) runAccount(ctx context.Context, cred schema.Credential) (result schema.AccountResult) {
	defer func() {
		if rec := recover(); rec != nil {
			logx.Ctx(ctx).Error("account crashed", "panic", fmt.Sprint(rec))
			result = schema.AccountResult{
				Account: cred.Masked(),
				Outcome: schema.Errored(DetailCrashed, fmt.Errorf("%v", rec)),
				Balance: schema.BalancePlaceholder,
			}
		}
	}()
	return c.Accounts.Run(ctx, cred)
}

// jitter draws uniformly from [JitterMin, JitterMax].
func (c *Coordinator) jitter() time.Duration {
	lo, hi := c.JitterMin, c.JitterMax
	if lo < 0 {
		lo = 0
	}
	if hi <= lo {
		return lo
	}
	draw := c.Rand
	if draw == nil {
		draw = rand.Int64N
	}
	return lo + time.Duration(draw(int64(hi-lo)+1))
}

func (c *Coordinator) sleep(ctx context.Context, d time.Duration) error {
	if c.Sleep != nil {
		return c.Sleep(ctx, d)
	}
	return browser.Sleep(ctx, d)
}

func (c *Coordinator) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Coordinator) newID() string {
	if c.NewID != nil {
		return c.NewID()
	}
	return uuid.NewString()
}
