package service_test

import (
	"context"
	"errors"
	"iter"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"attraction_sync/internal/config"
	"attraction_sync/internal/domain"
	"attraction_sync/internal/extract"
	"attraction_sync/internal/fetch"
	"attraction_sync/internal/geocode"
	"attraction_sync/internal/service"
	"attraction_sync/internal/service/mocks"
)

// stubExtractor is a canned in-memory source.
type stubExtractor struct {
	sourceID string
	records  []extract.RawRecord
	err      error
}

func (s *stubExtractor) SourceID() string { return s.sourceID }

func (s *stubExtractor) Extract(ctx context.Context) ([]extract.RawRecord, error) {
	return s.records, s.err
}

// stubPaginatedExtractor yields canned pages, optionally ending with an error.
type stubPaginatedExtractor struct {
	stubExtractor
	pages   []*fetch.Page
	pageErr error
}

func (s *stubPaginatedExtractor) ExtractPaginated(ctx context.Context) iter.Seq2[*fetch.Page, error] {
	return func(yield func(*fetch.Page, error) bool) {
		for _, page := range s.pages {
			if !yield(page, nil) {
				return
			}
		}
		if s.pageErr != nil {
			yield(nil, s.pageErr)
		}
	}
}

type SyncServiceTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller

	extractors  *mocks.MockExtractorFactory
	loader      *mocks.MockLoader
	runs        *mocks.MockRunStore
	checkpoints *mocks.MockCheckpointStore
	geocoder    *mocks.MockGeocoder

	service *service.SyncService
	cfg     config.SyncConfig
}

func (s *SyncServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())

	s.extractors = mocks.NewMockExtractorFactory(s.ctrl)
	s.loader = mocks.NewMockLoader(s.ctrl)
	s.runs = mocks.NewMockRunStore(s.ctrl)
	s.checkpoints = mocks.NewMockCheckpointStore(s.ctrl)
	s.geocoder = mocks.NewMockGeocoder(s.ctrl)

	s.cfg = config.SyncConfig{BatchSize: 100}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	s.service = service.NewSyncService(
		s.extractors,
		s.loader,
		s.runs,
		s.checkpoints,
		s.geocoder,
		logger,
		s.cfg,
	)
}

func (s *SyncServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestSyncServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SyncServiceTestSuite))
}

func (s *SyncServiceTestSuite) expectRunCreated(id int64) {
	s.runs.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, run *domain.SyncRun) error {
			run.ID = id
			run.Status = domain.RunStatusRunning
			return nil
		},
	)
}

func (s *SyncServiceTestSuite) TestRun_BulkCompleted() {
	ctx := context.Background()
	params := service.RunParams{
		SourceKind: "jsonapi",
		SourceURL:  "http://example.test/attractions",
		RunKind:    domain.RunKindFull,
	}

	raw := []extract.RawRecord{
		{"id": float64(1), "title": "Wat Pho"},
		{"id": float64(2), "title": "Wat Arun"},
	}

	s.expectRunCreated(41)
	s.extractors.EXPECT().New(params).Return(&stubExtractor{sourceID: "jsonapi", records: raw}, nil)

	s.loader.EXPECT().LoadBatches(ctx, gomock.Len(2), 100).Return(&domain.LoadResult{
		Saved:          2,
		TotalProcessed: 2,
	})

	s.runs.EXPECT().Finish(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, run *domain.SyncRun) error {
			s.Equal(domain.RunStatusCompleted, run.Status)
			s.Equal(2, run.Fetched)
			s.Equal(2, run.Saved)
			s.NotNil(run.FinishedAt)
			s.Nil(run.FailureReason)
			return nil
		},
	)
	s.checkpoints.EXPECT().Clear(ctx, int64(41)).Return(nil)

	result, err := s.service.Run(ctx, params)
	s.NoError(err)
	s.Equal(int64(41), result.RunID)
	s.Equal(domain.RunStatusCompleted, result.Status)
	s.Equal(2, result.TotalFetched)
	s.Equal(2, result.Saved)
	s.Empty(result.Errors)
}

func (s *SyncServiceTestSuite) TestRun_DefaultsToManualKind() {
	ctx := context.Background()

	s.runs.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, run *domain.SyncRun) error {
			s.Equal(domain.RunKindManual, run.Kind)
			run.ID = 1
			return nil
		},
	)
	s.extractors.EXPECT().New(gomock.Any()).Return(&stubExtractor{sourceID: "jsonapi"}, nil)
	s.loader.EXPECT().LoadBatches(ctx, gomock.Len(0), 100).Return(&domain.LoadResult{})
	s.runs.EXPECT().Finish(ctx, gomock.Any()).Return(nil)
	s.checkpoints.EXPECT().Clear(ctx, int64(1)).Return(nil)

	_, err := s.service.Run(ctx, service.RunParams{SourceKind: "jsonapi", SourceURL: "http://example.test"})
	s.NoError(err)
}

func (s *SyncServiceTestSuite) TestRun_TransformFailuresAreCountedNotFatal() {
	ctx := context.Background()
	params := service.RunParams{SourceKind: "jsonapi", SourceURL: "http://example.test", RunKind: domain.RunKindManual}

	raw := []extract.RawRecord{
		{"id": float64(1), "title": "Wat Pho"},
		{"id": float64(2)}, // no title, rejected by the transformer
	}

	s.expectRunCreated(42)
	s.extractors.EXPECT().New(params).Return(&stubExtractor{sourceID: "jsonapi", records: raw}, nil)

	s.loader.EXPECT().LoadBatches(ctx, gomock.Len(1), 100).Return(&domain.LoadResult{
		Saved:          1,
		TotalProcessed: 1,
	})

	s.runs.EXPECT().Finish(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, run *domain.SyncRun) error {
			s.Equal(domain.RunStatusCompleted, run.Status)
			s.Contains(run.Errors, "transform record 1")
			return nil
		},
	)
	s.checkpoints.EXPECT().Clear(ctx, int64(42)).Return(nil)

	result, err := s.service.Run(ctx, params)
	s.NoError(err)
	s.Equal(2, result.TotalFetched)
	s.Equal(1, result.Saved)
	s.Len(result.Errors, 1)
}

func (s *SyncServiceTestSuite) TestRun_ExtractErrorFailsRun() {
	ctx := context.Background()
	params := service.RunParams{SourceKind: "jsonapi", SourceURL: "http://example.test", RunKind: domain.RunKindFull}

	s.expectRunCreated(43)
	s.extractors.EXPECT().New(params).Return(
		&stubExtractor{sourceID: "jsonapi", err: errors.New("boom")}, nil,
	)

	s.runs.EXPECT().Finish(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, run *domain.SyncRun) error {
			s.Equal(domain.RunStatusFailed, run.Status)
			s.Require().NotNil(run.FailureReason)
			s.Contains(*run.FailureReason, "boom")
			s.NotNil(run.FinishedAt)
			return nil
		},
	)
	s.checkpoints.EXPECT().Clear(ctx, int64(43)).Return(nil)

	result, err := s.service.Run(ctx, params)
	s.Error(err)
	s.Equal(domain.RunStatusFailed, result.Status)
}

func (s *SyncServiceTestSuite) TestRun_FactoryErrorFailsRun() {
	ctx := context.Background()
	params := service.RunParams{SourceKind: "nope", RunKind: domain.RunKindManual}

	s.expectRunCreated(44)
	s.extractors.EXPECT().New(params).Return(nil, errors.New("unknown source kind"))

	s.runs.EXPECT().Finish(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, run *domain.SyncRun) error {
			s.Equal(domain.RunStatusFailed, run.Status)
			return nil
		},
	)
	s.checkpoints.EXPECT().Clear(ctx, int64(44)).Return(nil)

	_, err := s.service.Run(ctx, params)
	s.Error(err)
}

func (s *SyncServiceTestSuite) TestRun_StreamingWritesCheckpoints() {
	ctx := context.Background()
	params := service.RunParams{
		SourceKind: "jsonapi",
		SourceURL:  "http://example.test",
		Streaming:  true,
		RunKind:    domain.RunKindFull,
	}

	extractor := &stubPaginatedExtractor{
		stubExtractor: stubExtractor{sourceID: "jsonapi"},
		pages: []*fetch.Page{
			{Number: 1, Items: []map[string]any{{"id": float64(1), "title": "Wat Pho"}}},
			{Number: 2, Items: []map[string]any{{"id": float64(2), "title": "Wat Arun"}}},
		},
	}

	s.expectRunCreated(45)
	s.extractors.EXPECT().New(params).Return(extractor, nil)

	s.loader.EXPECT().Load(ctx, gomock.Len(1)).Return(&domain.LoadResult{Saved: 1, TotalProcessed: 1}).Times(2)

	var checkpointPages []int
	s.checkpoints.EXPECT().Upsert(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, cp *domain.ProgressCheckpoint) error {
			s.Equal(int64(45), cp.RunID)
			checkpointPages = append(checkpointPages, cp.LastPage)
			return nil
		},
	).Times(2)

	s.runs.EXPECT().Finish(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, run *domain.SyncRun) error {
			s.Equal(domain.RunStatusCompleted, run.Status)
			s.Equal(2, run.Saved)
			return nil
		},
	)
	s.checkpoints.EXPECT().Clear(ctx, int64(45)).Return(nil)

	result, err := s.service.Run(ctx, params)
	s.NoError(err)
	s.Equal([]int{1, 2}, checkpointPages)
	s.Equal(2, result.Saved)
	s.Equal(2, result.TotalFetched)
}

func (s *SyncServiceTestSuite) TestRun_StreamingAggregatesErrorsAcrossPages() {
	ctx := context.Background()
	params := service.RunParams{
		SourceKind: "jsonapi",
		SourceURL:  "http://example.test",
		Streaming:  true,
		RunKind:    domain.RunKindFull,
	}

	// One titleless record per page, rejected by the transformer.
	extractor := &stubPaginatedExtractor{
		stubExtractor: stubExtractor{sourceID: "jsonapi"},
		pages: []*fetch.Page{
			{Number: 1, Items: []map[string]any{{"id": float64(1), "title": "Wat Pho"}, {"id": float64(2)}}},
			{Number: 2, Items: []map[string]any{{"id": float64(3)}}},
		},
	}

	s.expectRunCreated(50)
	s.extractors.EXPECT().New(params).Return(extractor, nil)

	s.loader.EXPECT().Load(ctx, gomock.Len(1)).Return(&domain.LoadResult{Saved: 1, TotalProcessed: 1})
	s.loader.EXPECT().Load(ctx, gomock.Len(0)).Return(&domain.LoadResult{})

	var checkpointErrors []int
	s.checkpoints.EXPECT().Upsert(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, cp *domain.ProgressCheckpoint) error {
			checkpointErrors = append(checkpointErrors, cp.Errors)
			return nil
		},
	).Times(2)

	s.runs.EXPECT().Finish(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, run *domain.SyncRun) error {
			s.Contains(run.Errors, "transform record 1")
			s.Contains(run.Errors, "transform record 0")
			return nil
		},
	)
	s.checkpoints.EXPECT().Clear(ctx, int64(50)).Return(nil)

	result, err := s.service.Run(ctx, params)
	s.NoError(err)
	s.Equal([]int{1, 2}, checkpointErrors)
	s.Len(result.Errors, 2)
	s.Equal(1, result.Saved)
}

func (s *SyncServiceTestSuite) TestRun_StreamingKeepsPartialCountersOnFailure() {
	ctx := context.Background()
	params := service.RunParams{
		SourceKind: "jsonapi",
		SourceURL:  "http://example.test",
		Streaming:  true,
		RunKind:    domain.RunKindIncremental,
	}

	extractor := &stubPaginatedExtractor{
		stubExtractor: stubExtractor{sourceID: "jsonapi"},
		pages: []*fetch.Page{
			{Number: 1, Items: []map[string]any{{"id": float64(1), "title": "Wat Pho"}}},
		},
		pageErr: errors.New("connection reset"),
	}

	s.expectRunCreated(46)
	s.extractors.EXPECT().New(params).Return(extractor, nil)
	s.loader.EXPECT().Load(ctx, gomock.Len(1)).Return(&domain.LoadResult{Saved: 1, TotalProcessed: 1})
	s.checkpoints.EXPECT().Upsert(ctx, gomock.Any()).Return(nil)

	s.runs.EXPECT().Finish(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, run *domain.SyncRun) error {
			s.Equal(domain.RunStatusFailed, run.Status)
			// Work committed before the failure stays reflected in counters.
			s.Equal(1, run.Saved)
			return nil
		},
	)
	s.checkpoints.EXPECT().Clear(ctx, int64(46)).Return(nil)

	result, err := s.service.Run(ctx, params)
	s.Error(err)
	s.Equal(1, result.Saved)
}

func (s *SyncServiceTestSuite) TestRun_CheckpointFailureIsNotFatal() {
	ctx := context.Background()
	params := service.RunParams{
		SourceKind: "jsonapi",
		SourceURL:  "http://example.test",
		Streaming:  true,
		RunKind:    domain.RunKindFull,
	}

	extractor := &stubPaginatedExtractor{
		stubExtractor: stubExtractor{sourceID: "jsonapi"},
		pages: []*fetch.Page{
			{Number: 1, Items: []map[string]any{{"id": float64(1), "title": "Wat Pho"}}},
		},
	}

	s.expectRunCreated(47)
	s.extractors.EXPECT().New(params).Return(extractor, nil)
	s.loader.EXPECT().Load(ctx, gomock.Len(1)).Return(&domain.LoadResult{Saved: 1, TotalProcessed: 1})
	s.checkpoints.EXPECT().Upsert(ctx, gomock.Any()).Return(errors.New("checkpoint table locked"))
	s.runs.EXPECT().Finish(ctx, gomock.Any()).Return(nil)
	s.checkpoints.EXPECT().Clear(ctx, int64(47)).Return(nil)

	result, err := s.service.Run(ctx, params)
	s.NoError(err)
	s.Equal(1, result.Saved)
}

func (s *SyncServiceTestSuite) TestRun_GeocodingFillsMissingCoordinates() {
	ctx := context.Background()
	params := service.RunParams{
		SourceKind: "tat_csv",
		SourceURL:  "http://example.test/data.csv",
		Geocoding:  true,
		RunKind:    domain.RunKindManual,
	}

	raw := []extract.RawRecord{
		{"ชื่อสถานที่": "หาดป่าตอง", "จังหวัด": "ภูเก็ต"},
	}

	s.expectRunCreated(48)
	s.extractors.EXPECT().New(params).Return(&stubExtractor{sourceID: "tat_csv", records: raw}, nil)

	s.geocoder.EXPECT().Geocode(ctx, "หาดป่าตอง", "ภูเก็ต").Return(&geocode.Location{
		Latitude:  7.8965,
		Longitude: 98.2966,
	}, nil)

	s.loader.EXPECT().LoadBatches(ctx, gomock.Any(), 100).DoAndReturn(
		func(_ context.Context, records []*domain.Attraction, _ int) *domain.LoadResult {
			s.Require().Len(records, 1)
			s.Require().NotNil(records[0].Latitude)
			s.InDelta(7.8965, *records[0].Latitude, 0.0001)
			s.True(records[0].Geocoded)
			return &domain.LoadResult{Saved: 1, TotalProcessed: 1}
		},
	)

	s.runs.EXPECT().Finish(ctx, gomock.Any()).Return(nil)
	s.checkpoints.EXPECT().Clear(ctx, int64(48)).Return(nil)

	_, err := s.service.Run(ctx, params)
	s.NoError(err)
}

func (s *SyncServiceTestSuite) TestRun_GeocodingFailureLeavesRecordWithoutCoordinates() {
	ctx := context.Background()
	params := service.RunParams{
		SourceKind: "tat_csv",
		SourceURL:  "http://example.test/data.csv",
		Geocoding:  true,
		RunKind:    domain.RunKindManual,
	}

	raw := []extract.RawRecord{
		{"ชื่อสถานที่": "หาดป่าตอง", "จังหวัด": "ภูเก็ต"},
	}

	s.expectRunCreated(49)
	s.extractors.EXPECT().New(params).Return(&stubExtractor{sourceID: "tat_csv", records: raw}, nil)
	s.geocoder.EXPECT().Geocode(ctx, "หาดป่าตอง", "ภูเก็ต").Return(nil, errors.New("rate limited"))

	s.loader.EXPECT().LoadBatches(ctx, gomock.Any(), 100).DoAndReturn(
		func(_ context.Context, records []*domain.Attraction, _ int) *domain.LoadResult {
			s.Require().Len(records, 1)
			s.Nil(records[0].Latitude)
			s.False(records[0].Geocoded)
			return &domain.LoadResult{Saved: 1, TotalProcessed: 1}
		},
	)

	s.runs.EXPECT().Finish(ctx, gomock.Any()).Return(nil)
	s.checkpoints.EXPECT().Clear(ctx, int64(49)).Return(nil)

	_, err := s.service.Run(ctx, params)
	s.NoError(err)
}

func (s *SyncServiceTestSuite) TestRun_CreateErrorAbortsBeforeExtraction() {
	ctx := context.Background()

	s.runs.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("db down"))

	_, err := s.service.Run(ctx, service.RunParams{SourceKind: "jsonapi"})
	s.Error(err)
}

func (s *SyncServiceTestSuite) TestGetRun() {
	ctx := context.Background()
	want := &domain.SyncRun{ID: 7, Status: domain.RunStatusCompleted}

	s.runs.EXPECT().Get(ctx, int64(7)).Return(want, nil)

	got, err := s.service.GetRun(ctx, 7)
	s.NoError(err)
	s.Equal(want, got)
}

func (s *SyncServiceTestSuite) TestListRuns() {
	ctx := context.Background()
	filter := domain.RunFilter{Status: domain.RunStatusCompleted, Limit: 10}
	want := []domain.SyncRun{{ID: 2}, {ID: 1}}

	s.runs.EXPECT().List(ctx, filter).Return(want, nil)

	got, err := s.service.ListRuns(ctx, filter)
	s.NoError(err)
	s.Equal(want, got)
}
