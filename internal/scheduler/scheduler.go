// Package scheduler persists calendar snapshots on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/zapponejosh/churchyear/internal/calendar"
	"github.com/zapponejosh/churchyear/internal/precedence"
)

// Store receives snapshots. *database.DB implements it.
type Store interface {
	SaveHolyDays(ctx context.Context, year int, days []calendar.HolyDay) error
	SaveResolvedDays(ctx context.Context, days []precedence.ResolvedDay) error
}

// Result describes one snapshotted year.
type Result struct {
	Year         int `json:"year"`
	HolyDays     int `json:"holy_days"`
	ResolvedDays int `json:"resolved_days"`
}

// Snapshotter resolves whole civil years and hands them to a Store.
type Snapshotter struct {
	store      Store
	resolver   *precedence.Resolver
	yearsAhead int
	logger     *slog.Logger
	now        func() time.Time
}

// NewSnapshotter creates a Snapshotter that covers the current year plus
// yearsAhead following years on each Run.
func NewSnapshotter(store Store, resolver *precedence.Resolver, yearsAhead int, logger *slog.Logger) *Snapshotter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Snapshotter{
		store:      store,
		resolver:   resolver,
		yearsAhead: yearsAhead,
		logger:     logger,
		now:        time.Now,
	}
}

// SnapshotYear stores the holy days and every resolved day of year.
func (s *Snapshotter) SnapshotYear(ctx context.Context, year int) (Result, error) {
	holy, err := calendar.HolyDaysFor(year)
	if err != nil {
		return Result{}, err
	}

	days, err := s.resolver.ResolveRange(ctx,
		calendar.Date(year, time.January, 1), calendar.Date(year, time.December, 31))
	if err != nil {
		return Result{}, fmt.Errorf("resolve %d: %w", year, err)
	}

	if err := s.store.SaveHolyDays(ctx, year, holy); err != nil {
		return Result{}, fmt.Errorf("save holy days %d: %w", year, err)
	}
	if err := s.store.SaveResolvedDays(ctx, days); err != nil {
		return Result{}, fmt.Errorf("save resolved days %d: %w", year, err)
	}

	return Result{Year: year, HolyDays: len(holy), ResolvedDays: len(days)}, nil
}

// Run snapshots the current year and the configured years ahead. It stops
// at the first failure.
func (s *Snapshotter) Run(ctx context.Context) ([]Result, error) {
	start := time.Now()
	first := s.now().Year()

	results := make([]Result, 0, s.yearsAhead+1)
	for year := first; year <= first+s.yearsAhead; year++ {
		res, err := s.SnapshotYear(ctx, year)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}

	s.logger.Info("snapshot complete",
		slog.Int("from_year", first),
		slog.Int("years", len(results)),
		slog.Duration("duration", time.Since(start)),
	)
	return results, nil
}

// Scheduler runs a Snapshotter on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	snap    *Snapshotter
	timeout time.Duration
	logger  *slog.Logger
}

// New registers the snapshot job under spec, a standard five-field cron
// expression or descriptor such as "@daily". Overlapping runs are skipped.
func New(spec string, snap *Snapshotter, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cl := cronLogger{logger: logger}

	s := &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		snap:    snap,
		timeout: 10 * time.Minute,
		logger:  logger,
	}

	if _, err := s.cron.AddFunc(spec, s.runOnce); err != nil {
		return nil, fmt.Errorf("schedule snapshot %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if _, err := s.snap.Run(ctx); err != nil {
		s.logger.Error("scheduled snapshot failed", slog.Any("error", err))
	}
}

// Start begins running the schedule in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	for _, e := range s.cron.Entries() {
		s.logger.Info("snapshot scheduled", slog.Time("next", e.Next))
	}
}

// Stop halts the schedule. The returned context is done once a running
// snapshot has finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append([]any{slog.Any("error", err)}, keysAndValues...)...)
}
