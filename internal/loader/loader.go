// Package loader persists transformed attraction records with duplicate
// detection, change detection, and version archiving.
package loader

import (
	"context"
	"fmt"
	"log/slog"

	"attraction_sync/internal/domain"
	"attraction_sync/internal/storage/postgres"
)

//go:generate mockgen -source=loader.go -destination=mocks/mocks.go -package=mocks

type AttractionStore interface {
	GetBySourceExternalID(ctx context.Context, sourceID, externalID string) (*domain.Attraction, error)
	Insert(ctx context.Context, rec *domain.Attraction) error
	Update(ctx context.Context, rec *domain.Attraction) error
}

// Archiver snapshots a record's pre-mutation state. Satisfied by the
// versioning service.
type Archiver interface {
	Archive(ctx context.Context, rec *domain.Attraction) (*domain.AttractionVersion, error)
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Publisher notifies downstream consumers of accepted mutations. Publish
// failures never fail the load.
type Publisher interface {
	Publish(ctx context.Context, rec *domain.Attraction, isNew bool) error
}

// DefaultBatchSize bounds per-transaction work in LoadBatches. Chunking never
// changes final counts.
const DefaultBatchSize = 100

type Loader struct {
	attractions AttractionStore
	archiver    Archiver
	txManager   TransactionManager
	publisher   Publisher // optional
	logger      *slog.Logger
}

func New(
	attractions AttractionStore,
	archiver Archiver,
	txManager TransactionManager,
	publisher Publisher,
	logger *slog.Logger,
) *Loader {
	return &Loader{
		attractions: attractions,
		archiver:    archiver,
		txManager:   txManager,
		publisher:   publisher,
		logger:      logger,
	}
}

// Load persists records one transaction at a time. A duplicate-insert race is
// counted as a skip; any other per-record failure is counted as an error and
// processing continues. One bad record never aborts the batch.
func (l *Loader) Load(ctx context.Context, records []*domain.Attraction) *domain.LoadResult {
	result := &domain.LoadResult{TotalProcessed: len(records)}

	for _, rec := range records {
		outcome, err := l.loadOne(ctx, rec)
		switch {
		case err == nil:
			switch outcome {
			case outcomeSaved:
				result.Saved++
				l.publish(ctx, rec, true)
			case outcomeUpdated:
				result.Updated++
				l.publish(ctx, rec, false)
			case outcomeSkipped:
				result.Skipped++
			}
		case postgres.IsDuplicateErr(err):
			// Lost the insert race with a concurrent run; the record exists.
			result.Skipped++
			l.logger.Debug("duplicate insert treated as skip",
				"source", rec.SourceID,
				"external_id", rec.ExternalID,
			)
		default:
			msg := fmt.Sprintf("load %s/%s: %v", rec.SourceID, rec.ExternalID, err)
			result.Errors = append(result.Errors, msg)
			l.logger.Error("failed to load record",
				"source", rec.SourceID,
				"external_id", rec.ExternalID,
				"error", err,
			)
		}
	}

	l.logger.Info("load completed",
		"saved", result.Saved,
		"updated", result.Updated,
		"skipped", result.Skipped,
		"errors", len(result.Errors),
	)
	return result
}

// LoadBatches chunks large inputs purely to bound per-call size; counts are
// identical to a single Load over the full slice.
func (l *Loader) LoadBatches(ctx context.Context, records []*domain.Attraction, batchSize int) *domain.LoadResult {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	total := &domain.LoadResult{}
	for start := 0; start < len(records); start += batchSize {
		end := min(start+batchSize, len(records))
		total.Add(l.Load(ctx, records[start:end]))
	}
	return total
}

func (l *Loader) publish(ctx context.Context, rec *domain.Attraction, isNew bool) {
	if l.publisher == nil {
		return
	}
	if err := l.publisher.Publish(ctx, rec, isNew); err != nil {
		l.logger.Warn("failed to publish record change",
			"source", rec.SourceID,
			"external_id", rec.ExternalID,
			"error", err,
		)
	}
}

type loadOutcome int

const (
	outcomeSaved loadOutcome = iota
	outcomeUpdated
	outcomeSkipped
)

func (l *Loader) loadOne(ctx context.Context, rec *domain.Attraction) (loadOutcome, error) {
	var outcome loadOutcome

	err := l.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		existing, err := l.attractions.GetBySourceExternalID(txCtx, rec.SourceID, rec.ExternalID)
		if err != nil {
			return fmt.Errorf("lookup: %w", err)
		}

		if existing == nil {
			outcome = outcomeSaved
			return l.attractions.Insert(txCtx, rec)
		}

		if existing.Fingerprint == rec.Fingerprint {
			outcome = outcomeSkipped
			return nil
		}

		// Archive the pre-mutation state before overwriting anything.
		if _, err := l.archiver.Archive(txCtx, existing); err != nil {
			return fmt.Errorf("archive: %w", err)
		}

		existing.MergeFrom(rec)
		if err := l.attractions.Update(txCtx, existing); err != nil {
			return fmt.Errorf("update: %w", err)
		}

		outcome = outcomeUpdated
		return nil
	})

	return outcome, err
}
