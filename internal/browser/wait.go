package browser

import (
	"context"
	"time"
)

// Condition reports whether a polled predicate holds.
type Condition func(ctx context.Context) (bool, error)

// Poll evaluates cond immediately and then every interval until it holds or
// timeout elapses. It returns false without error on timeout; a zero timeout
// evaluates cond exactly once. Errors from cond and context cancellation end
// the poll early.
func Poll(ctx context.Context, timeout, interval time.Duration, cond Condition) (bool, error) {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	deadline := time.Now().Add(timeout)
	for {
		ok, err := cond(ctx)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false, nil
		}
		wait := min(interval, remaining)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false, ctx.Err()
		case <-timer.C:
		}
	}
}

// Sleep pauses for d unless ctx ends first. It is used only where no
// concrete readiness predicate exists.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
