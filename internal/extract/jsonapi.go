package extract

import (
	"context"
	"fmt"
	"iter"
	"log/slog"

	"attraction_sync/internal/fetch"
)

// JSONAPIConfig holds remote JSON API source configuration.
type JSONAPIConfig struct {
	SourceID string
	URL      string
	Paginate bool
	fetch.PaginateConfig
}

// JSONAPIExtractor pulls records from a remote JSON API, with or without
// pagination, delegating all retry handling to the fetch client.
type JSONAPIExtractor struct {
	client    *fetch.Client
	paginator *fetch.Paginator
	cfg       JSONAPIConfig
	logger    *slog.Logger
}

// NewJSONAPI creates a JSON API extractor.
func NewJSONAPI(client *fetch.Client, cfg JSONAPIConfig, logger *slog.Logger) *JSONAPIExtractor {
	return &JSONAPIExtractor{
		client:    client,
		paginator: fetch.NewPaginator(client, cfg.PaginateConfig),
		cfg:       cfg,
		logger:    logger.With("source", cfg.SourceID),
	}
}

// SourceID returns the source identifier.
func (e *JSONAPIExtractor) SourceID() string {
	return e.cfg.SourceID
}

// Extract fetches every record into memory. With pagination enabled it drains
// the page sequence; otherwise it performs a single request and normalizes
// whatever envelope comes back.
func (e *JSONAPIExtractor) Extract(ctx context.Context) ([]RawRecord, error) {
	if !e.cfg.Paginate {
		payload, err := e.client.FetchJSON(ctx, e.cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("extract %s: %w", e.cfg.URL, err)
		}
		records, err := fetch.NormalizeEnvelope(payload)
		if err != nil {
			return nil, fmt.Errorf("extract %s: %w", e.cfg.URL, err)
		}
		e.logger.Info("extracted records", "count", len(records))
		return records, nil
	}

	var all []RawRecord
	for page, err := range e.ExtractPaginated(ctx) {
		if err != nil {
			return nil, err
		}
		all = append(all, page.Items...)
	}
	e.logger.Info("extracted records", "count", len(all))
	return all, nil
}

// ExtractPaginated lazily yields one page of raw records at a time.
func (e *JSONAPIExtractor) ExtractPaginated(ctx context.Context) iter.Seq2[*fetch.Page, error] {
	return e.paginator.Pages(ctx, e.cfg.URL)
}
