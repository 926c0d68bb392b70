package daemon

import (
	"context"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"

	"github.com/mahyarmirrashed/afd/internal/sweeper"
)

// Sweeper runs a single sweep.
type Sweeper interface {
	Sweep(ctx context.Context) (sweeper.Report, error)
}

// SchedulerOption customises a Scheduler.
type SchedulerOption func(*Scheduler)

// WithClock sets the clock the wait between sweeps is measured on.
func WithClock(c clockwork.Clock) SchedulerOption {
	return func(s *Scheduler) { s.clock = c }
}

// WithWake sets a channel that ends the current wait early.
func WithWake(wake <-chan struct{}) SchedulerOption {
	return func(s *Scheduler) { s.wake = wake }
}

// WithLogger sets the logger records are written to.
func WithLogger(l log.FieldLogger) SchedulerOption {
	return func(s *Scheduler) { s.log = l }
}

// Scheduler repeats a sweep forever, waiting a fixed interval in between.
type Scheduler struct {
	sweeper  Sweeper
	interval time.Duration
	clock    clockwork.Clock
	wake     <-chan struct{}
	log      log.FieldLogger
}

// NewScheduler creates a scheduler that runs sw every interval.
func NewScheduler(sw Sweeper, interval time.Duration, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		sweeper:  sw,
		interval: interval,
		clock:    clockwork.NewRealClock(),
		log:      log.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run sweeps, waits, and repeats. A failed sweep is logged and does not stop
// the loop. Run only returns once ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		s.RunOnce(ctx)
		s.drainWake()

		if err := s.wait(ctx); err != nil {
			return err
		}
	}
}

// RunOnce performs one sweep and logs its outcome.
func (s *Scheduler) RunOnce(ctx context.Context) (sweeper.Report, error) {
	s.log.Info("Starting sweep...")

	report, err := s.sweeper.Sweep(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			s.log.Warn("Sweep interrupted by shutdown")
		} else {
			s.log.Errorf("Sweep failed: %v", err)
		}
		return report, err
	}

	entry := s.log.WithFields(log.Fields{
		"scanned":  report.Scanned,
		"moved":    report.Moved,
		"replaced": report.Replaced,
		"skipped":  report.Skipped,
		"failures": len(report.Failures()),
	})
	if report.Err() != nil {
		entry.Warn("Sweep complete with errors")
	} else {
		entry.Info("Sweep complete.")
	}
	return report, nil
}

// drainWake drops wake-ups that arrived while a sweep was running; that
// sweep already served them.
func (s *Scheduler) drainWake() {
	for {
		select {
		case <-s.wake:
		default:
			return
		}
	}
}

// wait blocks for the configured interval. A wake signal ends it early and
// returns nil so the next sweep starts right away.
func (s *Scheduler) wait(ctx context.Context) error {
	s.log.Debugf("Next sweep in %s", s.interval)

	select {
	case <-s.clock.After(s.interval):
		return nil
	case <-s.wake:
		s.log.Warn("Wait interrupted, sweeping now")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
