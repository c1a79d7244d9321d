package scheduler

import (
	"context"
	"log/slog"
	"time"

	"attraction_sync/internal/domain"
	"attraction_sync/internal/service"
)

// Syncer runs one ingestion attempt.
type Syncer interface {
	Run(ctx context.Context, params service.RunParams) (*domain.RunResult, error)
}

// Pruner applies version retention.
type Pruner interface {
	PruneAll(ctx context.Context, keep int) (int, error)
}

// Config holds the standing trigger intervals and the parameters each trigger
// submits.
type Config struct {
	FullInterval        time.Duration
	IncrementalInterval time.Duration
	PruneInterval       time.Duration
	KeepVersions        int
	RunTimeout          time.Duration

	FullParams        service.RunParams
	IncrementalParams service.RunParams
}

// Scheduler owns the standing triggers: a periodic full run, a more frequent
// incremental run, and version retention pruning.
type Scheduler struct {
	syncer Syncer
	pruner Pruner
	cfg    Config
	logger *slog.Logger
}

func NewScheduler(syncer Syncer, pruner Pruner, cfg Config, logger *slog.Logger) *Scheduler {
	if cfg.RunTimeout == 0 {
		cfg.RunTimeout = 30 * time.Minute
	}
	return &Scheduler{
		syncer: syncer,
		pruner: pruner,
		cfg:    cfg,
		logger: logger,
	}
}

// Start blocks until ctx is cancelled. The first full run fires immediately;
// the other triggers wait for their first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started",
		"full_interval", s.cfg.FullInterval,
		"incremental_interval", s.cfg.IncrementalInterval,
		"prune_interval", s.cfg.PruneInterval,
	)

	s.runSync(ctx, s.cfg.FullParams)

	fullTicker := time.NewTicker(s.cfg.FullInterval)
	defer fullTicker.Stop()
	incrementalTicker := time.NewTicker(s.cfg.IncrementalInterval)
	defer incrementalTicker.Stop()
	pruneTicker := time.NewTicker(s.cfg.PruneInterval)
	defer pruneTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-fullTicker.C:
			s.runSync(ctx, s.cfg.FullParams)
		case <-incrementalTicker.C:
			s.runSync(ctx, s.cfg.IncrementalParams)
		case <-pruneTicker.C:
			s.runPrune(ctx)
		}
	}
}

func (s *Scheduler) runSync(ctx context.Context, params service.RunParams) {
	syncCtx, cancel := context.WithTimeout(ctx, s.cfg.RunTimeout)
	defer cancel()

	if _, err := s.syncer.Run(syncCtx, params); err != nil {
		s.logger.Error("scheduled sync failed", "kind", params.RunKind, "error", err)
	}
}

func (s *Scheduler) runPrune(ctx context.Context) {
	pruneCtx, cancel := context.WithTimeout(ctx, s.cfg.RunTimeout)
	defer cancel()

	deleted, err := s.pruner.PruneAll(pruneCtx, s.cfg.KeepVersions)
	if err != nil {
		s.logger.Error("version prune failed", "error", err)
		return
	}
	s.logger.Info("version prune completed", "deleted", deleted)
}
