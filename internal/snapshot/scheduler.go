// Package snapshot runs the recurring auto-snapshot of the store.
package snapshot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/abhisek/qbank/internal/bridge"
	"github.com/abhisek/qbank/internal/store"
)

// Interval bounds and defaults.
const (
	MinInterval     = time.Minute
	MaxInterval     = 24 * time.Hour
	DefaultInterval = 10 * time.Minute
	DefaultKeep     = 50
)

// JournalAction is the action name used for scheduler entries in the
// bridge journal.
const JournalAction = "autoSnapshot"

// Snapshotter is the part of the store the scheduler drives.
type Snapshotter interface {
	Snapshot(ctx context.Context) ([]string, error)
	PruneSnapshots(ctx context.Context, keep int) ([]string, error)
}

// Notifier delivers the outcome of a tick to the UI.
type Notifier interface {
	Push(payload any) error
	PushFailure(msg string) error
}

// Scheduler periodically snapshots the store while enabled.
type Scheduler struct {
	store    Snapshotter
	notifier Notifier
	journal  bridge.Recorder
	logger   *slog.Logger
	now      func() time.Time

	enabled atomic.Bool
	keep    int

	mu       sync.Mutex
	cron     *gocron.Scheduler
	job      *gocron.Job
	interval time.Duration
	ctx      context.Context
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithInterval sets the tick interval; it is clamped by ClampInterval.
func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) { s.interval = ClampInterval(d) }
}

// WithKeep sets how many snapshot stamps survive pruning. Zero keeps all.
func WithKeep(n int) Option {
	return func(s *Scheduler) { s.keep = n }
}

// WithEnabled sets the initial enabled state. Schedulers start enabled.
func WithEnabled(on bool) Option {
	return func(s *Scheduler) { s.enabled.Store(on) }
}

// WithJournal records every tick that runs.
func WithJournal(rec bridge.Recorder) Option {
	return func(s *Scheduler) { s.journal = rec }
}

// WithLogger sets the logger. A nil logger means slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// WithClock overrides the time source used for journal timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// ClampInterval limits d to [MinInterval, MaxInterval]. Zero or negative
// values mean DefaultInterval.
func ClampInterval(d time.Duration) time.Duration {
	switch {
	case d <= 0:
		return DefaultInterval
	case d < MinInterval:
		return MinInterval
	case d > MaxInterval:
		return MaxInterval
	}
	return d
}

// New creates a stopped scheduler.
func New(st Snapshotter, n Notifier, opts ...Option) *Scheduler {
	s := &Scheduler{
		store:    st,
		notifier: n,
		now:      time.Now,
		keep:     DefaultKeep,
		interval: DefaultInterval,
		cron:     gocron.NewScheduler(time.Local),
	}
	s.enabled.Store(true)
	for _, o := range opts {
		o(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.cron.SingletonModeAll()
	return s
}

// Start schedules the first tick one interval from now. Ticks run with ctx.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ctx = ctx
	if err := s.scheduleLocked(); err != nil {
		return err
	}
	s.cron.StartAsync()
	s.logger.Info("auto-snapshot scheduler started", "interval", s.interval, "enabled", s.enabled.Load())
	return nil
}

// Stop halts the scheduler, waiting for a running tick to finish.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// Interval returns the current tick interval.
func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// Enabled reports whether ticks take snapshots.
func (s *Scheduler) Enabled() bool {
	return s.enabled.Load()
}

// SetEnabled turns auto-snapshots on or off. The timer keeps running; a
// disabled tick does nothing.
func (s *Scheduler) SetEnabled(on bool) {
	s.enabled.Store(on)
	s.logger.Info("auto-snapshots toggled", "enabled", on)
}

// SetInterval changes the tick interval, clamped, and reschedules if the
// scheduler has been started.
func (s *Scheduler) SetInterval(d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d = ClampInterval(d)
	if d == s.interval {
		return nil
	}
	s.interval = d
	if s.job == nil {
		return nil
	}
	return s.scheduleLocked()
}

func (s *Scheduler) scheduleLocked() error {
	if s.job != nil {
		s.cron.RemoveByReference(s.job)
		s.job = nil
	}
	job, err := s.cron.Every(s.interval).WaitForSchedule().Do(s.run)
	if err != nil {
		return fmt.Errorf("schedule auto-snapshot: %w", err)
	}
	s.job = job
	return nil
}

func (s *Scheduler) run() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}
	s.Tick(ctx)
}

// Tick performs one auto-snapshot if enabled. Failures are logged, journaled
// and pushed; they are never retried before the next tick.
func (s *Scheduler) Tick(ctx context.Context) {
	if !s.enabled.Load() {
		return
	}

	start := s.now()
	files, err := s.store.Snapshot(ctx)
	if err == nil && s.keep > 0 {
		if removed, perr := s.store.PruneSnapshots(ctx, s.keep); perr != nil {
			s.logger.Warn("failed to prune snapshots", "error", perr)
		} else if len(removed) > 0 {
			s.logger.Debug("pruned snapshots", "removed", len(removed))
		}
	}
	s.record(ctx, start, err)

	if err != nil {
		s.logger.Warn("auto-snapshot failed", "error", err)
		if perr := s.notifier.PushFailure("Auto-snapshot failed: " + err.Error()); perr != nil {
			s.logger.Warn("failed to push snapshot failure", "error", perr)
		}
		return
	}

	s.logger.Info("auto-snapshot written", "files", files)
	if perr := s.notifier.Push(bridge.Push{Type: bridge.PushTypeAutoSnapshot, Files: files}); perr != nil {
		s.logger.Warn("failed to push snapshot result", "error", perr)
	}
}

func (s *Scheduler) record(ctx context.Context, start time.Time, err error) {
	if s.journal == nil {
		return
	}
	entry := store.JournalEntry{
		Timestamp: start,
		Action:    JournalAction,
		Success:   err == nil,
		LatencyMs: s.now().Sub(start).Milliseconds(),
	}
	if err != nil {
		entry.Error = err.Error()
	}
	if jerr := s.journal.Append(context.WithoutCancel(ctx), entry); jerr != nil {
		s.logger.Warn("failed to journal auto-snapshot", "error", jerr)
	}
}
