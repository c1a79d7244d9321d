package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"attraction_sync/internal/domain"
	"attraction_sync/internal/extract"
	"attraction_sync/internal/geocode"
)

type Loader interface {
	Load(ctx context.Context, records []*domain.Attraction) *domain.LoadResult
	LoadBatches(ctx context.Context, records []*domain.Attraction, batchSize int) *domain.LoadResult
}

type RunStore interface {
	Create(ctx context.Context, run *domain.SyncRun) error
	Finish(ctx context.Context, run *domain.SyncRun) error
	Get(ctx context.Context, id int64) (*domain.SyncRun, error)
	List(ctx context.Context, filter domain.RunFilter) ([]domain.SyncRun, error)
}

type CheckpointStore interface {
	Upsert(ctx context.Context, cp *domain.ProgressCheckpoint) error
	Clear(ctx context.Context, runID int64) error
}

type Geocoder interface {
	Geocode(ctx context.Context, name, province string) (*geocode.Location, error)
}

// ExtractorFactory builds a source adapter for one run's parameters.
type ExtractorFactory interface {
	New(params RunParams) (extract.Extractor, error)
}

// Transformer converts one raw record into a canonical attraction record.
type Transformer interface {
	Transform(raw map[string]any) (*domain.Attraction, error)
}
