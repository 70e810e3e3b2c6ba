package schedule

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewRejectsInvalidSpec(t *testing.T) {
	if _, err := New(context.Background(), "not a cron", func(context.Context) {}); err == nil {
		t.Fatalf("expected parse error")
	}
	if err := Validate("0 0 8 * *"); err == nil {
		t.Fatalf("five-field spec should be rejected without seconds")
	}
	if err := Validate("0 30 8 * * *"); err != nil {
		t.Fatalf("valid spec rejected: %v", err)
	}
	if err := Validate("@daily"); err != nil {
		t.Fatalf("descriptor rejected: %v", err)
	}
}

func TestRunNowPassesContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "v")
	var got any
	s, err := New(ctx, "0 0 8 * * *", func(ctx context.Context) { got = ctx.Value(key{}) })
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	s.RunNow()
	if got != "v" {
		t.Fatalf("job did not receive the scheduler context")
	}
}

func TestRunNowSkipsWhileRunning(t *testing.T) {
	var runs atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	s, err := New(context.Background(), "0 0 8 * * *", func(context.Context) {
		runs.Add(1)
		close(started)
		<-release
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	done := make(chan struct{})
	go func() {
		s.RunNow()
		close(done)
	}()
	<-started
	s.RunNow()
	close(release)
	<-done
	if n := runs.Load(); n != 1 {
		t.Fatalf("overlapping trigger should be skipped, got %d runs", n)
	}
}

func TestRunNowRecoversPanic(t *testing.T) {
	s, err := New(context.Background(), "0 0 8 * * *", func(context.Context) { panic("boom") })
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	s.RunNow()
}

func TestSchedulerFires(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping timed scheduler test in short mode")
	}
	fired := make(chan struct{}, 4)
	s, err := New(context.Background(), "* * * * * *", func(context.Context) {
		select {
		case fired <- struct{}{}:
		default:
		}
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-fired:
		case <-time.After(3 * time.Second):
			t.Errorf("scheduler did not fire")
		}
		cancel()
	}()
	s.Run(ctx, false)
}

func TestRunWaitsForRunOnStartJob(t *testing.T) {
	var finished atomic.Bool
	started := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s, err := New(ctx, "0 0 8 * * *", func(context.Context) {
		close(started)
		time.Sleep(200 * time.Millisecond)
		finished.Store(true)
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	go func() {
		<-started
		cancel()
	}()
	s.Run(ctx, true)
	if !finished.Load() {
		t.Fatalf("Run returned before the run-on-start job finished")
	}
}
