package extract

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"attraction_sync/internal/fetch"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVConfig holds tabular document source configuration.
type CSVConfig struct {
	SourceID string
	URL      string
}

// CSVExtractor downloads a CSV document once and yields one raw record per
// row. Character encoding is detected tolerantly: UTF-8, UTF-8 with BOM, then
// windows-874 (a TIS-620 superset covering legacy Thai exports).
type CSVExtractor struct {
	client *fetch.Client
	cfg    CSVConfig
	logger *slog.Logger
}

// NewCSV creates a CSV extractor.
func NewCSV(client *fetch.Client, cfg CSVConfig, logger *slog.Logger) *CSVExtractor {
	return &CSVExtractor{
		client: client,
		cfg:    cfg,
		logger: logger.With("source", cfg.SourceID),
	}
}

// SourceID returns the source identifier.
func (e *CSVExtractor) SourceID() string {
	return e.cfg.SourceID
}

// Extract downloads and parses the document. A document that cannot be
// decoded or parsed is a fatal extraction error since no records can be
// produced from it.
func (e *CSVExtractor) Extract(ctx context.Context) ([]RawRecord, error) {
	raw, err := e.client.Fetch(ctx, e.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("download csv %s: %w", e.cfg.URL, err)
	}
	e.logger.Info("downloaded csv document", "bytes", len(raw))

	decoded, encoding, err := decodeDocument(raw)
	if err != nil {
		return nil, fmt.Errorf("decode csv %s: %w", e.cfg.URL, err)
	}
	e.logger.Debug("decoded csv document", "encoding", encoding)

	records, err := parseRows(decoded)
	if err != nil {
		return nil, fmt.Errorf("parse csv %s: %w", e.cfg.URL, err)
	}

	e.logger.Info("extracted csv records", "count", len(records))
	return records, nil
}

// decodeDocument tries known encodings in order and returns UTF-8 bytes plus
// the name of the encoding that succeeded.
func decodeDocument(raw []byte) ([]byte, string, error) {
	if bytes.HasPrefix(raw, utf8BOM) {
		trimmed := bytes.TrimPrefix(raw, utf8BOM)
		if utf8.Valid(trimmed) {
			return trimmed, "utf-8-sig", nil
		}
	}

	if utf8.Valid(raw) {
		return raw, "utf-8", nil
	}

	decoded, _, err := transform.Bytes(charmap.Windows874.NewDecoder(), raw)
	if err != nil {
		return nil, "", fmt.Errorf("document is not utf-8 and windows-874 decode failed: %w", err)
	}
	return decoded, "windows-874", nil
}

// parseRows reads the CSV and maps each row onto normalized header names
// (trimmed, lowercased, spaces replaced with underscores).
func parseRows(data []byte) ([]RawRecord, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1 // tolerate ragged rows

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("document has no header row")
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
	}

	records := make([]RawRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(RawRecord, len(headers))
		for i, value := range row {
			if i >= len(headers) {
				break
			}
			record[headers[i]] = value
		}
		records = append(records, record)
	}
	return records, nil
}
