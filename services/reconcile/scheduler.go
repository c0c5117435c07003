// Package reconcile runs the periodic repair jobs: re-verifying payments whose
// webhook never arrived and rebuilding course student counters.
package reconcile

import (
	"context"
	"fmt"
	"time"

	"skillchain/logger"
	"skillchain/services/payments"
	"skillchain/services/stats"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type Reconciler interface {
	ReconcilePending(ctx context.Context, olderThan time.Duration) (*payments.ReconcileReport, error)
}

type Options struct {
	ReconcileSpec  string // cron spec for payment reconciliation
	RebuildSpec    string // cron spec for the counter rebuild
	ReconcileAfter time.Duration
	JobTimeout     time.Duration
}

// Summary is what one manual or scheduled run did
type Summary struct {
	Payments      *payments.ReconcileReport `json:"payments"`
	CountersFixed int64                     `json:"countersFixed"`
}

type Scheduler struct {
	cron     *cron.Cron
	db       *gorm.DB
	payments Reconciler
	opts     Options
	log      zerolog.Logger
}

// New registers both jobs. Runs of the same job never overlap.
func New(db *gorm.DB, reconciler Reconciler, opts Options) (*Scheduler, error) {
	if opts.ReconcileAfter <= 0 {
		opts.ReconcileAfter = 15 * time.Minute
	}
	if opts.JobTimeout <= 0 {
		opts.JobTimeout = 5 * time.Minute
	}

	s := &Scheduler{
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		db:       db,
		payments: reconciler,
		opts:     opts,
		log:      logger.For("scheduler"),
	}

	if _, err := s.cron.AddFunc(opts.ReconcileSpec, s.reconcileJob); err != nil {
		return nil, fmt.Errorf("reconcile schedule %q: %w", opts.ReconcileSpec, err)
	}
	if _, err := s.cron.AddFunc(opts.RebuildSpec, s.rebuildJob); err != nil {
		return nil, fmt.Errorf("rebuild schedule %q: %w", opts.RebuildSpec, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().
		Str("reconcile", s.opts.ReconcileSpec).
		Str("rebuild", s.opts.RebuildSpec).
		Msg("scheduler started")
}

// Stop halts scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) reconcileJob() {
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.JobTimeout)
	defer cancel()
	if _, err := s.ReconcilePayments(ctx); err != nil {
		s.log.Error().Err(err).Msg("payment reconciliation failed")
	}
}

func (s *Scheduler) rebuildJob() {
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.JobTimeout)
	defer cancel()
	if _, err := s.RebuildCounters(ctx); err != nil {
		s.log.Error().Err(err).Msg("counter rebuild failed")
	}
}

func (s *Scheduler) ReconcilePayments(ctx context.Context) (*payments.ReconcileReport, error) {
	return s.payments.ReconcilePending(ctx, s.opts.ReconcileAfter)
}

func (s *Scheduler) RebuildCounters(ctx context.Context) (int64, error) {
	changed, err := stats.RebuildCourseCounters(ctx, s.db)
	if err != nil {
		return changed, err
	}
	if changed > 0 {
		s.log.Warn().Int64("courses", changed).Msg("course student counters repaired")
	}
	return changed, nil
}

// RunNow runs both jobs once, in order.
func (s *Scheduler) RunNow(ctx context.Context) (*Summary, error) {
	report, err := s.ReconcilePayments(ctx)
	if err != nil {
		return nil, err
	}
	fixed, err := s.RebuildCounters(ctx)
	if err != nil {
		return nil, err
	}
	return &Summary{Payments: report, CountersFixed: fixed}, nil
}
