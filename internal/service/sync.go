package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	json "github.com/goccy/go-json"

	"attraction_sync/internal/config"
	"attraction_sync/internal/domain"
	"attraction_sync/internal/extract"
	"attraction_sync/internal/transform"
)

// RunParams describes one sync run as accepted from a trigger (scheduler or
// on-demand caller).
type RunParams struct {
	SourceKind string `json:"source_kind"` // "jsonapi" or "tat_csv"
	SourceURL  string `json:"source_url"`
	Timeout    time.Duration
	PageSize   int            `json:"page_size"`
	MaxPages   int            `json:"max_pages"`
	Streaming  bool           `json:"streaming_mode"`
	Geocoding  bool           `json:"geocoding"`
	RunKind    domain.RunKind `json:"run_kind"`
}

// SyncService orchestrates a sync run's lifecycle: it owns the SyncRun and
// ProgressCheckpoint rows, drives the extract/transform/load chain, and
// aggregates counters. It is the only component with external visibility.
type SyncService struct {
	extractors  ExtractorFactory
	loader      Loader
	runs        RunStore
	checkpoints CheckpointStore
	geocoder    Geocoder // optional
	logger      *slog.Logger
	config      config.SyncConfig
}

func NewSyncService(
	extractors ExtractorFactory,
	loader Loader,
	runs RunStore,
	checkpoints CheckpointStore,
	geocoder Geocoder,
	logger *slog.Logger,
	cfg config.SyncConfig,
) *SyncService {
	return &SyncService{
		extractors:  extractors,
		loader:      loader,
		runs:        runs,
		checkpoints: checkpoints,
		geocoder:    geocoder,
		logger:      logger,
		config:      cfg,
	}
}

// Run executes one ingestion attempt end to end. The SyncRun row is created
// and committed before any network call; it reaches exactly one terminal
// state. Per-record transform and load errors are counted, not fatal; an
// error escaping the extractor boundary fails the run while keeping any
// partial writes already committed by the loader.
func (s *SyncService) Run(ctx context.Context, params RunParams) (*domain.RunResult, error) {
	if params.RunKind == "" {
		params.RunKind = domain.RunKindManual
	}

	startTime := time.Now()
	logger := s.logger.With("source", params.SourceKind, "kind", params.RunKind)

	run := &domain.SyncRun{
		SourceID: params.SourceKind,
		Kind:     params.RunKind,
	}
	if err := s.runs.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("create sync run: %w", err)
	}

	logger = logger.With("run_id", run.ID)
	logger.Info("starting sync run",
		"url", params.SourceURL,
		"streaming", params.Streaming,
		"max_pages", params.MaxPages,
	)

	extractor, err := s.extractors.New(params)
	if err != nil {
		return s.fail(ctx, run, startTime, fmt.Errorf("build extractor: %w", err), logger)
	}

	transformer := transform.New(params.SourceKind)

	var runErr error
	var errList []string
	if paginated, ok := extractor.(extract.PaginatedExtractor); ok && params.Streaming {
		errList, runErr = s.runStreaming(ctx, run, paginated, transformer, params)
	} else {
		errList, runErr = s.runBulk(ctx, run, extractor, transformer, params)
	}
	run.Errors = s.encodeErrors(errList)
	if runErr != nil {
		return s.fail(ctx, run, startTime, runErr, logger)
	}

	run.Status = domain.RunStatusCompleted
	if err := s.finish(ctx, run); err != nil {
		return nil, fmt.Errorf("finish sync run %d: %w", run.ID, err)
	}

	result := s.result(run, startTime)
	logger.Info("sync run completed",
		"fetched", run.Fetched,
		"saved", run.Saved,
		"updated", run.Updated,
		"skipped", run.Skipped,
		"errors", len(result.Errors),
		"duration", result.Duration,
	)
	return result, nil
}

// GetRun returns one run by id, or nil when absent.
func (s *SyncService) GetRun(ctx context.Context, id int64) (*domain.SyncRun, error) {
	return s.runs.Get(ctx, id)
}

// ListRuns returns the audit trail, newest first.
func (s *SyncService) ListRuns(ctx context.Context, filter domain.RunFilter) ([]domain.SyncRun, error) {
	return s.runs.List(ctx, filter)
}

// runBulk extracts every raw record into memory, transforms all, loads all.
// It returns the per-record error messages gathered along the way.
func (s *SyncService) runBulk(
	ctx context.Context,
	run *domain.SyncRun,
	extractor extract.Extractor,
	transformer Transformer,
	params RunParams,
) ([]string, error) {
	raw, err := extractor.Extract(ctx)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	run.Fetched = len(raw)

	records, transformErrs := s.transformAll(ctx, raw, transformer, params)

	result := s.loader.LoadBatches(ctx, records, s.config.BatchSize)
	s.accumulate(run, result)
	return append(transformErrs, result.Errors...), nil
}

// runStreaming processes one page at a time, bounding memory to a single page
// regardless of total source volume. A checkpoint row is written after each
// page for crash visibility.
func (s *SyncService) runStreaming(
	ctx context.Context,
	run *domain.SyncRun,
	extractor extract.PaginatedExtractor,
	transformer Transformer,
	params RunParams,
) ([]string, error) {
	var errList []string

	for page, err := range extractor.ExtractPaginated(ctx) {
		if err != nil {
			return errList, fmt.Errorf("extract: %w", err)
		}

		run.Fetched += len(page.Items)

		records, transformErrs := s.transformAll(ctx, page.Items, transformer, params)
		result := s.loader.Load(ctx, records)
		s.accumulate(run, result)
		errList = append(errList, transformErrs...)
		errList = append(errList, result.Errors...)

		checkpoint := &domain.ProgressCheckpoint{
			RunID:    run.ID,
			LastPage: page.Number,
			Saved:    run.Saved,
			Updated:  run.Updated,
			Skipped:  run.Skipped,
			Errors:   len(errList),
		}
		if err := s.checkpoints.Upsert(ctx, checkpoint); err != nil {
			// Checkpoints are observability only; losing one is not fatal.
			s.logger.Warn("failed to write progress checkpoint",
				"run_id", run.ID,
				"page", page.Number,
				"error", err,
			)
		}

		s.logger.Debug("processed page",
			"run_id", run.ID,
			"page", page.Number,
			"items", len(page.Items),
		)
	}

	return errList, nil
}

// transformAll converts raw records, skipping and counting per-record
// failures. Geocoding, when enabled, fills missing coordinates; a geocoding
// failure leaves the record without coordinates.
func (s *SyncService) transformAll(
	ctx context.Context,
	raw []extract.RawRecord,
	transformer Transformer,
	params RunParams,
) ([]*domain.Attraction, []string) {
	records := make([]*domain.Attraction, 0, len(raw))
	var errs []string

	for i, item := range raw {
		rec, err := transformer.Transform(item)
		if err != nil {
			errs = append(errs, fmt.Sprintf("transform record %d: %v", i, err))
			continue
		}

		if params.Geocoding && s.geocoder != nil && rec.Latitude == nil {
			s.geocodeRecord(ctx, rec)
		}

		records = append(records, rec)
	}

	return records, errs
}

func (s *SyncService) geocodeRecord(ctx context.Context, rec *domain.Attraction) {
	province := ""
	if rec.Province != nil {
		province = *rec.Province
	}

	loc, err := s.geocoder.Geocode(ctx, rec.Title, province)
	if err != nil {
		s.logger.Warn("geocoding failed", "title", rec.Title, "error", err)
		return
	}
	if loc == nil {
		return
	}

	rec.Latitude = &loc.Latitude
	rec.Longitude = &loc.Longitude
	rec.Geocoded = true

	// Recompute after mutation so stored state and fingerprint stay
	// consistent. Coordinates are not identity fields, but the helper also
	// guards against future drift.
	rec.Fingerprint = transform.Fingerprint(rec)
}

// accumulate folds one load result's counters into the run. Error messages
// travel separately as a plain slice and are serialized once at finish time.
func (s *SyncService) accumulate(run *domain.SyncRun, result *domain.LoadResult) {
	run.Saved += result.Saved
	run.Updated += result.Updated
	run.Skipped += result.Skipped
	run.TotalProcessed += result.TotalProcessed
}

func (s *SyncService) fail(
	ctx context.Context,
	run *domain.SyncRun,
	startTime time.Time,
	cause error,
	logger *slog.Logger,
) (*domain.RunResult, error) {
	reason := cause.Error()
	run.Status = domain.RunStatusFailed
	run.FailureReason = &reason

	if err := s.finish(ctx, run); err != nil {
		logger.Error("failed to mark run failed", "error", err)
	}

	logger.Error("sync run failed",
		"reason", reason,
		"saved", run.Saved,
		"updated", run.Updated,
	)
	return s.result(run, startTime), cause
}

// finish moves the run to its terminal state and clears the checkpoint.
func (s *SyncService) finish(ctx context.Context, run *domain.SyncRun) error {
	now := time.Now()
	run.FinishedAt = &now
	if run.Errors == "" {
		run.Errors = "[]"
	}

	if err := s.runs.Finish(ctx, run); err != nil {
		return err
	}

	if err := s.checkpoints.Clear(ctx, run.ID); err != nil {
		s.logger.Warn("failed to clear progress checkpoint", "run_id", run.ID, "error", err)
	}
	return nil
}

func (s *SyncService) result(run *domain.SyncRun, startTime time.Time) *domain.RunResult {
	return &domain.RunResult{
		RunID:          run.ID,
		SourceID:       run.SourceID,
		Status:         run.Status,
		TotalFetched:   run.Fetched,
		Saved:          run.Saved,
		Updated:        run.Updated,
		Skipped:        run.Skipped,
		TotalProcessed: run.TotalProcessed,
		Errors:         s.decodeErrors(run.Errors),
		Duration:       time.Since(startTime),
	}
}

func (s *SyncService) decodeErrors(encoded string) []string {
	if encoded == "" || encoded == "[]" {
		return nil
	}
	var errs []string
	if err := json.Unmarshal([]byte(encoded), &errs); err != nil {
		return []string{encoded}
	}
	return errs
}

func (s *SyncService) encodeErrors(errs []string) string {
	if len(errs) == 0 {
		return "[]"
	}
	encoded, err := json.Marshal(errs)
	if err != nil {
		return "[]"
	}
	return string(encoded)
}
