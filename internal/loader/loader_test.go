package loader

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"attraction_sync/internal/domain"
	"attraction_sync/internal/loader/mocks"
	"attraction_sync/testdata/utils"
)

type LoaderTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller

	attractions *mocks.MockAttractionStore
	archiver    *mocks.MockArchiver
	txManager   *mocks.MockTransactionManager
	publisher   *mocks.MockPublisher

	loader *Loader
}

func (s *LoaderTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())

	s.attractions = mocks.NewMockAttractionStore(s.ctrl)
	s.archiver = mocks.NewMockArchiver(s.ctrl)
	s.txManager = mocks.NewMockTransactionManager(s.ctrl)
	s.publisher = mocks.NewMockPublisher(s.ctrl)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	s.loader = New(s.attractions, s.archiver, s.txManager, s.publisher, logger)
}

func (s *LoaderTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestLoaderTestSuite(t *testing.T) {
	suite.Run(t, new(LoaderTestSuite))
}

// expectTransactions makes every transaction run its body against the same
// context.
func (s *LoaderTestSuite) expectTransactions(ctx context.Context, times int) {
	s.txManager.EXPECT().WithTransaction(ctx, gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		},
	).Times(times)
}

func record(externalID, title, fingerprint string) *domain.Attraction {
	return &domain.Attraction{
		SourceID:    "jsonapi",
		ExternalID:  externalID,
		Title:       title,
		Fingerprint: fingerprint,
	}
}

func (s *LoaderTestSuite) TestLoad_NewRecord() {
	ctx := context.Background()
	rec := record("1", "Wat Pho", "f1")

	s.expectTransactions(ctx, 1)
	s.attractions.EXPECT().GetBySourceExternalID(ctx, "jsonapi", "1").Return(nil, nil)
	s.attractions.EXPECT().Insert(ctx, rec).Return(nil)
	s.publisher.EXPECT().Publish(ctx, rec, true).Return(nil)

	result := s.loader.Load(ctx, []*domain.Attraction{rec})

	s.Equal(1, result.Saved)
	s.Equal(0, result.Updated)
	s.Equal(0, result.Skipped)
	s.Equal(1, result.TotalProcessed)
	s.Empty(result.Errors)
}

func (s *LoaderTestSuite) TestLoad_UnchangedRecordSkipped() {
	ctx := context.Background()
	rec := record("1", "Wat Pho", "same")
	existing := record("1", "Wat Pho", "same")
	existing.ID = 10

	s.expectTransactions(ctx, 1)
	s.attractions.EXPECT().GetBySourceExternalID(ctx, "jsonapi", "1").Return(existing, nil)

	result := s.loader.Load(ctx, []*domain.Attraction{rec})

	s.Equal(0, result.Saved)
	s.Equal(1, result.Skipped)
}

func (s *LoaderTestSuite) TestLoad_ChangedRecordArchivedThenUpdated() {
	ctx := context.Background()
	rec := record("1", "Wat Pho Temple", "new")
	rec.Body = utils.Ptr("updated description")

	existing := record("1", "Wat Pho", "old")
	existing.ID = 10
	existing.Province = utils.Ptr("กรุงเทพมหานคร")

	s.expectTransactions(ctx, 1)
	s.attractions.EXPECT().GetBySourceExternalID(ctx, "jsonapi", "1").Return(existing, nil)

	s.archiver.EXPECT().Archive(ctx, existing).DoAndReturn(
		func(_ context.Context, archived *domain.Attraction) (*domain.AttractionVersion, error) {
			// The pre-mutation state must be what gets archived.
			s.Equal("old", archived.Fingerprint)
			s.Equal("Wat Pho", archived.Title)
			return &domain.AttractionVersion{AttractionID: 10, VersionNumber: 1}, nil
		},
	)

	s.attractions.EXPECT().Update(ctx, existing).DoAndReturn(
		func(_ context.Context, updated *domain.Attraction) error {
			s.Equal("Wat Pho Temple", updated.Title)
			s.Equal("new", updated.Fingerprint)
			s.Equal("updated description", *updated.Body)
			// Stored optional fields survive an update that omits them.
			s.Equal("กรุงเทพมหานคร", *updated.Province)
			return nil
		},
	)

	s.publisher.EXPECT().Publish(ctx, existing, false).Return(nil)

	result := s.loader.Load(ctx, []*domain.Attraction{rec})

	s.Equal(1, result.Updated)
	s.Equal(0, result.Saved)
	s.Empty(result.Errors)
}

func (s *LoaderTestSuite) TestLoad_DuplicateInsertRaceCountsAsSkip() {
	ctx := context.Background()
	rec := record("1", "Wat Pho", "f1")

	s.expectTransactions(ctx, 1)
	s.attractions.EXPECT().GetBySourceExternalID(ctx, "jsonapi", "1").Return(nil, nil)
	s.attractions.EXPECT().Insert(ctx, rec).Return(&pq.Error{Code: "23505"})

	result := s.loader.Load(ctx, []*domain.Attraction{rec})

	s.Equal(0, result.Saved)
	s.Equal(1, result.Skipped)
	s.Empty(result.Errors)
}

func (s *LoaderTestSuite) TestLoad_FailedRecordDoesNotAbortBatch() {
	ctx := context.Background()
	bad := record("1", "Broken", "f1")
	good := record("2", "Wat Arun", "f2")

	s.expectTransactions(ctx, 2)
	s.attractions.EXPECT().GetBySourceExternalID(ctx, "jsonapi", "1").Return(nil, errors.New("connection reset"))
	s.attractions.EXPECT().GetBySourceExternalID(ctx, "jsonapi", "2").Return(nil, nil)
	s.attractions.EXPECT().Insert(ctx, good).Return(nil)
	s.publisher.EXPECT().Publish(ctx, good, true).Return(nil)

	result := s.loader.Load(ctx, []*domain.Attraction{bad, good})

	s.Equal(1, result.Saved)
	s.Equal(2, result.TotalProcessed)
	s.Require().Len(result.Errors, 1)
	s.Contains(result.Errors[0], "jsonapi/1")
}

func (s *LoaderTestSuite) TestLoad_PublishFailureIsNotFatal() {
	ctx := context.Background()
	rec := record("1", "Wat Pho", "f1")

	s.expectTransactions(ctx, 1)
	s.attractions.EXPECT().GetBySourceExternalID(ctx, "jsonapi", "1").Return(nil, nil)
	s.attractions.EXPECT().Insert(ctx, rec).Return(nil)
	s.publisher.EXPECT().Publish(ctx, rec, true).Return(errors.New("broker unavailable"))

	result := s.loader.Load(ctx, []*domain.Attraction{rec})

	s.Equal(1, result.Saved)
	s.Empty(result.Errors)
}

func (s *LoaderTestSuite) TestLoadBatches_CountsMatchSingleLoad() {
	ctx := context.Background()

	records := make([]*domain.Attraction, 5)
	for i := range records {
		records[i] = record(string(rune('a'+i)), "Place", "f")
	}

	s.expectTransactions(ctx, 5)
	for _, rec := range records {
		s.attractions.EXPECT().GetBySourceExternalID(ctx, "jsonapi", rec.ExternalID).Return(nil, nil)
		s.attractions.EXPECT().Insert(ctx, rec).Return(nil)
		s.publisher.EXPECT().Publish(ctx, rec, true).Return(nil)
	}

	result := s.loader.LoadBatches(ctx, records, 2)

	s.Equal(5, result.Saved)
	s.Equal(5, result.TotalProcessed)
}

func (s *LoaderTestSuite) TestLoad_NoPublisherConfigured() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	loader := New(s.attractions, s.archiver, s.txManager, nil, logger)

	ctx := context.Background()
	rec := record("1", "Wat Pho", "f1")

	s.expectTransactions(ctx, 1)
	s.attractions.EXPECT().GetBySourceExternalID(ctx, "jsonapi", "1").Return(nil, nil)
	s.attractions.EXPECT().Insert(ctx, rec).Return(nil)

	result := loader.Load(ctx, []*domain.Attraction{rec})
	s.Equal(1, result.Saved)
}
