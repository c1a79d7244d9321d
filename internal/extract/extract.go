// Package extract adapts heterogeneous external sources into a uniform
// sequence of raw string-keyed records for the transformer.
package extract

import (
	"context"
	"iter"

	"attraction_sync/internal/fetch"
)

// RawRecord is one untyped record as emitted by a source adapter.
type RawRecord = map[string]any

// Extractor yields every raw record from a source in one pass.
type Extractor interface {
	SourceID() string
	Extract(ctx context.Context) ([]RawRecord, error)
}

// PaginatedExtractor additionally supports page-at-a-time consumption for
// memory-bounded runs.
type PaginatedExtractor interface {
	Extractor
	ExtractPaginated(ctx context.Context) iter.Seq2[*fetch.Page, error]
}
