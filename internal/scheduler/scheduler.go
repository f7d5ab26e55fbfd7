// Package scheduler drives the periodic rebuild of the job store. The loop
// alternates between running a full pass over every configured term and
// sleeping for the scrape interval, for the lifetime of the process.
package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/job-finders/app/internal/jobs"
	"github.com/job-finders/app/internal/metrics"
	"github.com/job-finders/app/internal/store"
)

// ScrapeFunc produces one term's jobs; in production it is the memoized
// scraper.
type ScrapeFunc func(ctx context.Context, term string) ([]jobs.Job, error)

// Config controls cycle cadence and the term list.
type Config struct {
	Interval time.Duration
	Terms    []string
}

// Scheduler is the store's sole writer.
type Scheduler struct {
	scrape ScrapeFunc
	store  *store.Store
	cfg    Config
	clock  jobs.Clock
	logger *zap.Logger
}

// New constructs a Scheduler.
func New(scrape ScrapeFunc, st *store.Store, cfg Config, clock jobs.Clock, logger *zap.Logger) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = 3 * time.Hour
	}
	return &Scheduler{
		scrape: scrape,
		store:  st,
		cfg:    cfg,
		clock:  clock,
		logger: logger,
	}
}

// Run executes one cycle immediately so the store is populated at startup,
// then sleeps between cycles until the context finishes. Cancellation
// stops scheduling new cycles; it does not chase in-flight work.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		s.Cycle(ctx)
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped", zap.Error(ctx.Err()))
			return
		case <-time.After(s.cfg.Interval):
		}
	}
}

// Cycle rebuilds the store from scratch: every term is scraped into a
// fresh snapshot which replaces the previous one only after the full pass
// completes. Readers never observe a partially built cycle.
func (s *Scheduler) Cycle(ctx context.Context) {
	start := s.clock.Now()
	snap := store.NewSnapshot()
	for _, term := range s.cfg.Terms {
		snap.Merge(s.scrapeTerm(ctx, term))
	}
	if ctx.Err() != nil {
		// Interrupted pass; keep the previous complete snapshot.
		return
	}
	s.store.Swap(snap)

	duration := s.clock.Now().Sub(start)
	metrics.ObserveCycle(duration, snap.Len())
	s.logger.Info("scrape cycle complete",
		zap.Int("jobs", snap.Len()),
		zap.Int("terms", len(s.cfg.Terms)),
		zap.Duration("duration", duration),
	)
}

// scrapeTerm isolates one term's failure: an error or panic is recovered
// at the term boundary and contributes zero jobs for this cycle only.
func (s *Scheduler) scrapeTerm(ctx context.Context, term string) (out []jobs.Job) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("term scrape panicked",
				zap.String("term", term),
				zap.Any("panic", r),
			)
			metrics.ObserveTermFailure(term)
			out = nil
		}
	}()

	list, err := s.scrape(ctx, term)
	if err != nil {
		s.logger.Warn("term scrape failed", zap.String("term", term), zap.Error(err))
		metrics.ObserveTermFailure(term)
		return nil
	}
	return list
}
