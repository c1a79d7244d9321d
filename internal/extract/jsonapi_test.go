package extract

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"attraction_sync/internal/fetch"
)

type JSONAPIExtractorTestSuite struct {
	suite.Suite
	logger *slog.Logger
	client *fetch.Client
}

func (s *JSONAPIExtractorTestSuite) SetupTest() {
	s.logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	s.client = fetch.New(fetch.Config{Timeout: time.Second}, s.logger)
}

func TestJSONAPIExtractorTestSuite(t *testing.T) {
	suite.Run(t, new(JSONAPIExtractorTestSuite))
}

func (s *JSONAPIExtractorTestSuite) TestExtract_SingleRequest() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"id":1,"title":"Wat Pho"},{"id":2,"title":"Wat Arun"}],"total":2}`))
	}))
	defer server.Close()

	extractor := NewJSONAPI(s.client, JSONAPIConfig{SourceID: "jsonapi", URL: server.URL}, s.logger)

	records, err := extractor.Extract(context.Background())
	s.NoError(err)
	s.Len(records, 2)
	s.Equal("Wat Pho", records[0]["title"])
}

func (s *JSONAPIExtractorTestSuite) TestExtract_PaginatedDrainsAllPages() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		switch page {
		case 1, 2:
			_, _ = fmt.Fprintf(w, `[{"id":%d,"title":"a"},{"id":%d,"title":"b"}]`, page*10, page*10+1)
		default:
			_, _ = w.Write([]byte(`[]`))
		}
	}))
	defer server.Close()

	extractor := NewJSONAPI(s.client, JSONAPIConfig{
		SourceID: "jsonapi",
		URL:      server.URL,
		Paginate: true,
		PaginateConfig: fetch.PaginateConfig{
			PageSize: 2,
		},
	}, s.logger)

	records, err := extractor.Extract(context.Background())
	s.NoError(err)
	s.Len(records, 4)
}

func (s *JSONAPIExtractorTestSuite) TestExtractPaginated_YieldsPageNumbers() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			_, _ = w.Write([]byte(`[{"id":1,"title":"only"}]`))
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	extractor := NewJSONAPI(s.client, JSONAPIConfig{
		SourceID: "jsonapi",
		URL:      server.URL,
		Paginate: true,
		PaginateConfig: fetch.PaginateConfig{
			PageSize: 5,
		},
	}, s.logger)

	var pages []*fetch.Page
	for page, err := range extractor.ExtractPaginated(context.Background()) {
		s.NoError(err)
		pages = append(pages, page)
	}
	s.Len(pages, 1)
	s.Equal(1, pages[0].Number)
	s.Len(pages[0].Items, 1)
}

func (s *JSONAPIExtractorTestSuite) TestExtract_PropagatesFetchError() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	extractor := NewJSONAPI(s.client, JSONAPIConfig{SourceID: "jsonapi", URL: server.URL}, s.logger)

	_, err := extractor.Extract(context.Background())
	s.Error(err)
}
