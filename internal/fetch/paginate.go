package fetch

import (
	"context"
	"fmt"
	"iter"
	"net/url"
	"strconv"
)

// listFields are the envelope keys tried, in order, when a page response is an
// object rather than a bare array.
var listFields = []string{"data", "items", "results"}

// metadataKeys are envelope keys that never carry record content. An object
// with only these keys is an empty page; an object with other keys and no
// recognized list field is treated as a single-item page.
var metadataKeys = map[string]struct{}{
	"page":       {},
	"total":      {},
	"limit":      {},
	"offset":     {},
	"count":      {},
	"meta":       {},
	"pagination": {},
	"next":       {},
	"prev":       {},
	"page_size":  {},
	"num_pages":  {},
}

// Page is one page of raw records from a paginated source.
type Page struct {
	Number int
	Items  []map[string]any
}

// PaginateConfig controls the query convention toward the source. Parameter
// names and the first page index are configurable because upstream APIs are
// not controlled by this system.
type PaginateConfig struct {
	PageSize   int
	MaxPages   int
	PageParam  string
	LimitParam string
	StartPage  int // 1-based by default; set -1 for 0-based sources
}

func (c *PaginateConfig) setDefaults() {
	if c.PageSize == 0 {
		c.PageSize = 20
	}
	if c.MaxPages == 0 {
		c.MaxPages = 100
	}
	if c.PageParam == "" {
		c.PageParam = "page"
	}
	if c.LimitParam == "" {
		c.LimitParam = "limit"
	}
	if c.StartPage == 0 {
		c.StartPage = 1
	} else if c.StartPage == -1 {
		c.StartPage = 0
	}
}

// Paginator drives cursor-style pagination over a source using the fetch
// client for each page request.
type Paginator struct {
	client *Client
	cfg    PaginateConfig
}

// NewPaginator creates a paginator with defaults applied.
func NewPaginator(client *Client, cfg PaginateConfig) *Paginator {
	cfg.setDefaults()
	return &Paginator{client: client, cfg: cfg}
}

// Pages lazily yields pages from baseURL. The sequence stops when a page
// returns fewer items than the page size, zero items, or MaxPages is reached,
// whichever comes first. A fetch or decode error ends the sequence with that
// error.
func (p *Paginator) Pages(ctx context.Context, baseURL string) iter.Seq2[*Page, error] {
	return func(yield func(*Page, error) bool) {
		for i := 0; i < p.cfg.MaxPages; i++ {
			pageNum := p.cfg.StartPage + i

			pageURL, err := p.pageURL(baseURL, pageNum)
			if err != nil {
				yield(nil, err)
				return
			}

			payload, err := p.client.FetchJSON(ctx, pageURL)
			if err != nil {
				yield(nil, fmt.Errorf("fetch page %d: %w", pageNum, err))
				return
			}

			items, err := NormalizeEnvelope(payload)
			if err != nil {
				yield(nil, fmt.Errorf("page %d: %w", pageNum, err))
				return
			}

			if len(items) == 0 {
				return
			}

			if !yield(&Page{Number: pageNum, Items: items}, nil) {
				return
			}

			if len(items) < p.cfg.PageSize {
				return
			}
		}
	}
}

func (p *Paginator) pageURL(baseURL string, page int) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	q := u.Query()
	q.Set(p.cfg.PageParam, strconv.Itoa(page))
	q.Set(p.cfg.LimitParam, strconv.Itoa(p.cfg.PageSize))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// NormalizeEnvelope extracts the record list from a heterogeneous page
// response. Strategies tried in order: a bare array, an object with a known
// list field, and finally the structural heuristic that an object carrying
// non-metadata keys is itself a single-item page.
func NormalizeEnvelope(payload any) ([]map[string]any, error) {
	switch v := payload.(type) {
	case []any:
		return toRecordList(v)
	case map[string]any:
		for _, field := range listFields {
			if list, ok := v[field].([]any); ok {
				return toRecordList(list)
			}
		}
		if hasRecordKeys(v) {
			return []map[string]any{v}, nil
		}
		return nil, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported page payload type %T", payload)
	}
}

func toRecordList(items []any) ([]map[string]any, error) {
	records := make([]map[string]any, 0, len(items))
	for i, item := range items {
		record, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("item %d is not an object (%T)", i, item)
		}
		records = append(records, record)
	}
	return records, nil
}

func hasRecordKeys(obj map[string]any) bool {
	for key := range obj {
		if _, meta := metadataKeys[key]; !meta {
			return true
		}
	}
	return false
}
