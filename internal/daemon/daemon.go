package daemon

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/mahyarmirrashed/afd/internal/config"
	"github.com/mahyarmirrashed/afd/internal/sweeper"
)

// RunDaemon runs the main daemon process; it blocks until a termination
// signal arrives or ctx is cancelled. SIGHUP wakes the scheduler for an
// immediate sweep.
func RunDaemon(ctx context.Context, cfg *config.Config) error {
	sw, err := sweeper.New(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Signal handling for graceful shutdown and early wake-ups
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(signals)

	wake := make(chan struct{}, 1)
	go handleSignals(ctx, signals, wake, cancel)

	log.Infof("Watching %d folder(s) under %s every %s", len(cfg.FolderNames), cfg.RootPath, cfg.Interval())
	if cfg.DryRun {
		log.Info("Dry run: nothing will be moved or deleted")
	}

	scheduler := NewScheduler(sw, cfg.Interval(), WithWake(wake))
	err = scheduler.Run(ctx)

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		log.Info("Daemon stopping")
		return nil
	}
	return err
}

// RunOnce performs a single sweep and returns its sweep-level error, or the
// combined entry-local errors if the sweep itself completed.
func RunOnce(ctx context.Context, cfg *config.Config) error {
	sw, err := sweeper.New(cfg)
	if err != nil {
		return err
	}

	report, err := NewScheduler(sw, cfg.Interval()).RunOnce(ctx)
	if err != nil {
		return err
	}
	return report.Err()
}

// handleSignals turns SIGHUP into a wake-up and any other signal into a
// shutdown.
func handleSignals(ctx context.Context, signals <-chan os.Signal, wake chan<- struct{}, shutdown context.CancelFunc) {
	for {
		select {
		case sig := <-signals:
			if sig == syscall.SIGHUP {
				log.Infof("Received signal: %s, waking up...", sig)
				select {
				case wake <- struct{}{}:
				default:
				}
				continue
			}
			log.Infof("Received signal: %s, shutting down...", sig)
			shutdown()
			return
		case <-ctx.Done():
			return
		}
	}
}
