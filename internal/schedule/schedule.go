package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"pkt.systems/pslog"
)

// Job is one scheduled batch.
type Job func(ctx context.Context)

// Scheduler fires a single job on a cron spec with a seconds field. A
// trigger that arrives while the job is still running is skipped, so runs
// never overlap.
type Scheduler struct {
	cron *cron.Cron
	id   cron.EntryID
	log  pslog.Logger

	// manual tracks RunNow calls, which cron's own job waiter does not see.
	manual sync.WaitGroup
}

// New parses spec and binds job to ctx.
func New(ctx context.Context, spec string, job Job) (*Scheduler, error) {
	log := pslog.Ctx(ctx)
	logger := cronLogger{log: log}
	c := cron.New(
		cron.WithSeconds(),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	id, err := c.AddFunc(spec, func() { job(ctx) })
	if err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", spec, err)
	}
	return &Scheduler{cron: c, id: id, log: log}, nil
}

// Validate reports whether spec parses with the scheduler's parser.
func Validate(spec string) error {
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(spec); err != nil {
		return fmt.Errorf("parse schedule %q: %w", spec, err)
	}
	return nil
}

// Start begins firing in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started", "next", s.Next().Format(time.RFC3339))
}

// Stop halts new triggers and returns a context done when a running job ends.
func (s *Scheduler) Stop() context.Context {
	ctx := s.cron.Stop()
	s.log.Info("scheduler stopped")
	return ctx
}

// Next returns the next activation time, zero before Start.
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.id).Next
}

// RunNow runs the job synchronously through the same skip/recover chain as
// scheduled triggers.
func (s *Scheduler) RunNow() {
	s.manual.Add(1)
	defer s.manual.Done()
	s.runEntry()
}

func (s *Scheduler) runEntry() {
	entry := s.cron.Entry(s.id)
	if entry.WrappedJob == nil {
		return
	}
	entry.WrappedJob.Run()
}

// Run starts the scheduler, optionally runs the job once immediately, and
// blocks until ctx ends and any running job, scheduled or immediate, has
// finished.
func (s *Scheduler) Run(ctx context.Context, runOnStart bool) {
	s.Start()
	if runOnStart {
		s.manual.Add(1)
		go func() {
			defer s.manual.Done()
			s.runEntry()
		}()
	}
	<-ctx.Done()
	<-s.Stop().Done()
	s.manual.Wait()
}

type cronLogger struct {
	log pslog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug("cron "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error("cron "+msg, append(keysAndValues, "err", err)...)
}
