// Package version manages immutable attraction history: archiving before
// mutation, restoring a prior state, and retention pruning.
package version

import (
	"context"
	"fmt"
	"log/slog"

	"attraction_sync/internal/domain"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

type AttractionStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Attraction, error)
	Update(ctx context.Context, rec *domain.Attraction) error
}

type VersionStore interface {
	Insert(ctx context.Context, v *domain.AttractionVersion) error
	Get(ctx context.Context, attractionID int64, versionNumber int) (*domain.AttractionVersion, error)
	ListByAttraction(ctx context.Context, attractionID int64) ([]domain.AttractionVersion, error)
	DeleteOlderThanKeep(ctx context.Context, attractionID int64, keep int) (int, error)
	AttractionIDsWithVersions(ctx context.Context) ([]int64, error)
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// DefaultKeepVersions is the retention applied by the scheduled prune.
const DefaultKeepVersions = 10

type Service struct {
	attractions AttractionStore
	versions    VersionStore
	txManager   TransactionManager
	logger      *slog.Logger
}

func NewService(
	attractions AttractionStore,
	versions VersionStore,
	txManager TransactionManager,
	logger *slog.Logger,
) *Service {
	return &Service{
		attractions: attractions,
		versions:    versions,
		txManager:   txManager,
		logger:      logger,
	}
}

// Archive stores an immutable snapshot of the record's current state with the
// next version number. Called before every accepted mutation; runs inside the
// caller's transaction when one is ambient.
func (s *Service) Archive(ctx context.Context, rec *domain.Attraction) (*domain.AttractionVersion, error) {
	snapshot := rec.Snapshot()
	if err := s.versions.Insert(ctx, &snapshot); err != nil {
		return nil, fmt.Errorf("archive attraction %d: %w", rec.ID, err)
	}

	s.logger.Debug("archived attraction version",
		"attraction_id", rec.ID,
		"version", snapshot.VersionNumber,
	)
	return &snapshot, nil
}

// History returns all archived versions of an attraction, newest first.
func (s *Service) History(ctx context.Context, attractionID int64) ([]domain.AttractionVersion, error) {
	return s.versions.ListByAttraction(ctx, attractionID)
}

// Restore overwrites the live record's fields from the chosen version. The
// current state is archived first, so a restore is itself reversible. Returns
// false when the attraction or version does not exist.
func (s *Service) Restore(ctx context.Context, attractionID int64, versionNumber int) (bool, error) {
	target, err := s.versions.Get(ctx, attractionID, versionNumber)
	if err != nil {
		return false, fmt.Errorf("load version %d of attraction %d: %w", versionNumber, attractionID, err)
	}
	if target == nil {
		return false, nil
	}

	rec, err := s.attractions.GetByID(ctx, attractionID)
	if err != nil {
		return false, fmt.Errorf("load attraction %d: %w", attractionID, err)
	}
	if rec == nil {
		return false, nil
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if _, err := s.Archive(txCtx, rec); err != nil {
			return err
		}

		rec.Title = target.Title
		rec.Body = target.Body
		rec.UserID = target.UserID
		rec.Category = target.Category
		rec.Province = target.Province
		rec.District = target.District
		rec.Latitude = target.Latitude
		rec.Longitude = target.Longitude
		rec.Geocoded = target.Geocoded
		rec.OpeningHours = target.OpeningHours
		rec.NormalizedDate = target.NormalizedDate
		rec.Fingerprint = target.Fingerprint

		return s.attractions.Update(txCtx, rec)
	})
	if err != nil {
		return false, fmt.Errorf("restore attraction %d to version %d: %w", attractionID, versionNumber, err)
	}

	s.logger.Info("restored attraction version",
		"attraction_id", attractionID,
		"version", versionNumber,
	)
	return true, nil
}

// PruneOld deletes all but the keep most recent versions of one attraction
// and returns the number deleted.
func (s *Service) PruneOld(ctx context.Context, attractionID int64, keep int) (int, error) {
	if keep <= 0 {
		keep = DefaultKeepVersions
	}
	deleted, err := s.versions.DeleteOlderThanKeep(ctx, attractionID, keep)
	if err != nil {
		return 0, fmt.Errorf("prune versions of attraction %d: %w", attractionID, err)
	}
	if deleted > 0 {
		s.logger.Info("pruned old versions", "attraction_id", attractionID, "deleted", deleted)
	}
	return deleted, nil
}

// PruneAll applies the retention policy across every attraction that has
// archived versions. Used by the scheduled retention trigger.
func (s *Service) PruneAll(ctx context.Context, keep int) (int, error) {
	ids, err := s.versions.AttractionIDsWithVersions(ctx)
	if err != nil {
		return 0, fmt.Errorf("list versioned attractions: %w", err)
	}

	total := 0
	for _, id := range ids {
		deleted, err := s.PruneOld(ctx, id, keep)
		if err != nil {
			s.logger.Error("prune failed", "attraction_id", id, "error", err)
			continue
		}
		total += deleted
	}
	return total, nil
}
