package service

import (
	"fmt"
	"log/slog"

	"attraction_sync/internal/extract"
	"attraction_sync/internal/fetch"
)

// Source kinds accepted by the trigger surface.
const (
	SourceKindJSONAPI = "jsonapi"
	SourceKindTATCSV  = "tat_csv"
)

// DefaultExtractorFactory builds source adapters with a per-run fetch client
// so each run carries its own request timeout.
type DefaultExtractorFactory struct {
	retry  fetch.Config
	logger *slog.Logger
}

func NewExtractorFactory(retry fetch.Config, logger *slog.Logger) *DefaultExtractorFactory {
	return &DefaultExtractorFactory{retry: retry, logger: logger}
}

func (f *DefaultExtractorFactory) New(params RunParams) (extract.Extractor, error) {
	if params.SourceURL == "" {
		return nil, fmt.Errorf("source url is required")
	}

	retry := f.retry
	if params.Timeout > 0 {
		retry.Timeout = params.Timeout
	}
	client := fetch.New(retry, f.logger)

	switch params.SourceKind {
	case SourceKindJSONAPI:
		return extract.NewJSONAPI(client, extract.JSONAPIConfig{
			SourceID: params.SourceKind,
			URL:      params.SourceURL,
			Paginate: params.PageSize > 0,
			PaginateConfig: fetch.PaginateConfig{
				PageSize: params.PageSize,
				MaxPages: params.MaxPages,
			},
		}, f.logger), nil
	case SourceKindTATCSV:
		return extract.NewCSV(client, extract.CSVConfig{
			SourceID: params.SourceKind,
			URL:      params.SourceURL,
		}, f.logger), nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", params.SourceKind)
	}
}
