package runner

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"pkt.systems/leafcheck/internal/browser"
	"pkt.systems/leafcheck/internal/checkin"
	"pkt.systems/leafcheck/internal/logx"
	"pkt.systems/leafcheck/schema"
)

var tracer = otel.Tracer("pkt.systems/leafcheck/internal/runner")

// Outcome details produced outside the check-in flow.
const (
	DetailLoginFailed = "登录失败"
	DetailException   = "异常: "
	DetailCrashed     = "脚本崩溃: "
)

// Session is a browser page owned by one account run.
type Session interface {
	checkin.Page
	Close() error
}

// Opener starts a fresh session.
type Opener func(ctx context.Context) (Session, error)

// BrowserOpener opens chromedp sessions with opts.
func BrowserOpener(opts browser.Options) Opener {
	return func(ctx context.Context) (Session, error) {
		s, err := browser.Open(ctx, opts)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// Runner sequences login, check-in and balance fetch for one account.
type Runner struct {
	Open Opener
	Flow *checkin.Flow
}

// Run processes cred and always returns a result; panics and errors become
// an OutcomeError with the balance placeholder.
func (r *Runner) Run(ctx context.Context, cred schema.Credential) (result schema.AccountResult) {
	masked := cred.Masked()
	log := logx.WithAccount(ctx, masked)
	ctx = logx.ContextWithAccountLogger(ctx, log, masked)
	ctx, span := tracer.Start(ctx, "runner.account")
	defer span.End()

	result = schema.AccountResult{Account: masked, Balance: schema.BalancePlaceholder}
	defer func() {
		if rec := recover(); rec != nil {
			log.Error("account run panicked", "panic", fmt.Sprint(rec))
			result.Outcome = schema.Errored(DetailException, fmt.Errorf("%v", rec))
			result.Balance = schema.BalancePlaceholder
		}
		span.SetAttributes(attribute.String("checkin.outcome", string(result.Outcome.Kind)))
	}()

	session, err := r.Open(ctx)
	if err != nil {
		log.Error("browser open failed", "err", err)
		result.Outcome = schema.Errored(DetailException, err)
		return result
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.Warn("browser close failed", "err", err)
		}
	}()

	if err := r.Flow.Authenticate(ctx, session, cred); err != nil {
		result.Outcome = schema.Errored(DetailLoginFailed, nil)
		return result
	}
	result.Outcome = r.Flow.CheckIn(ctx, session)
	result.Balance = r.Flow.Balance(ctx, session)
	log.Info("account done", "outcome", string(result.Outcome.Kind), "balance", result.Balance)
	return result
}
