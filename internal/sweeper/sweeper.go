package sweeper

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/mahyarmirrashed/afd/internal/config"
	"github.com/mahyarmirrashed/afd/internal/excluder"
	"github.com/mahyarmirrashed/afd/internal/utils"
	"github.com/mahyarmirrashed/afd/pkg/retention"
)

// Report summarises one sweep.
type Report struct {
	Scanned  int // Entries looked at
	Moved    int // Entries relocated to the holding area
	Replaced int // Pre-existing holding area files deleted
	Skipped  int // Entries left alone because they matched an exclude pattern

	errs error
}

// Err returns the entry-local failures of the sweep combined into one error,
// or nil if there were none.
func (r Report) Err() error { return r.errs }

// Failures lists the entry-local failures individually.
func (r Report) Failures() []error { return multierr.Errors(r.errs) }

// Option customises a Sweeper.
type Option func(*Sweeper)

// WithClock sets the clock used to compute the deletion threshold.
func WithClock(c clockwork.Clock) Option {
	return func(s *Sweeper) { s.clock = c }
}

// WithLogger sets the logger records are written to.
func WithLogger(l log.FieldLogger) Option {
	return func(s *Sweeper) { s.log = l }
}

// WithNotifier replaces the desktop notification hook.
func WithNotifier(fn func(message string)) Option {
	return func(s *Sweeper) { s.notify = fn }
}

// Sweeper moves aged entries out of the watched folders into the holding area.
type Sweeper struct {
	cfg    *config.Config
	ex     *excluder.Excluder
	clock  clockwork.Clock
	log    log.FieldLogger
	notify func(message string)
}

// New creates a Sweeper for a validated configuration.
func New(cfg *config.Config, opts ...Option) (*Sweeper, error) {
	ex, err := excluder.New(cfg.Exclude, cfg.RootPath)
	if err != nil {
		return nil, &config.ConfigError{Key: config.KeyExclude, Err: err}
	}

	s := &Sweeper{
		cfg:    cfg,
		ex:     ex,
		clock:  clockwork.NewRealClock(),
		log:    log.StandardLogger(),
		notify: func(message string) {
			utils.SendNotification(cfg.Notifications, "afd", message)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Sweep runs one pass over every watched folder in configured order.
//
// A folder that cannot be listed aborts the sweep with a *FolderScanError;
// relocations already done in earlier folders stand. Failures on single
// entries are logged and collected in the returned Report.
func (s *Sweeper) Sweep(ctx context.Context) (Report, error) {
	var report Report

	threshold := retention.Threshold(s.clock.Now(), s.cfg.DeletionFrequencyDays)
	s.log.Debugf("Sweeping entries modified before %s", threshold.Format(time.RFC3339))

	for _, folder := range s.cfg.FolderPaths() {
		entries, err := os.ReadDir(folder)
		if err != nil {
			return report, &FolderScanError{Folder: folder, Err: err}
		}

		for _, entry := range entries {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			s.processEntry(filepath.Join(folder, entry.Name()), threshold, &report)
		}
	}

	return report, nil
}

// processEntry relocates path to the holding area if it is aged.
func (s *Sweeper) processEntry(path string, threshold time.Time, report *Report) {
	report.Scanned++

	if s.ex.IsExcluded(path) {
		s.log.Debugf("Excluded: %s", prettyPath(path))
		report.Skipped++
		return
	}

	info, err := os.Lstat(path)
	if err != nil {
		s.fail(report, &FileOperationError{Op: "stat", Path: path, Err: err})
		return
	}

	if !retention.IsAged(info.ModTime(), threshold) {
		return
	}

	target := filepath.Join(s.cfg.TempPath, filepath.Base(path))

	if s.cfg.DryRun {
		out := fmt.Sprintf("[dry run] Would move %s -> %s", prettyPath(path), prettyPath(target))
		s.log.Info(out)
		s.notify(out)
		return
	}

	// A failed delete is recorded but the overwriting move is still attempted.
	deleted, err := removeIfExists(target)
	if err != nil {
		s.fail(report, &FileOperationError{Op: "delete", Path: target, Err: err})
	} else if deleted {
		report.Replaced++
		s.log.WithField("path", prettyPath(target)).Infof("Deleted existing %s from holding area", prettyPath(target))
	}

	if err := moveFile(path, target, info); err != nil {
		s.fail(report, &FileOperationError{Op: "move", Path: path, Target: target, Err: err})
		return
	}

	report.Moved++
	out := fmt.Sprintf("Moved %s -> %s", prettyPath(path), prettyPath(target))
	s.log.WithField("path", prettyPath(path)).Info(out)
	s.notify(out)
}

func (s *Sweeper) fail(report *Report, err *FileOperationError) {
	report.errs = multierr.Append(report.errs, err)
	s.log.WithField("op", err.Op).Error(err.Error())
	if err.Op != "stat" {
		s.notify(err.Error())
	}
}

// removeIfExists deletes path, treating absence as success.
// Returns true if something was deleted.
func removeIfExists(path string) (bool, error) {
	err := os.Remove(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func prettyPath(path string) string { return filepath.ToSlash(path) }
