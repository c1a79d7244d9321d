// Package geocode resolves attraction names to coordinates through a
// Nominatim-style lookup service. Geocoding is an optional collaborator of
// the sync pipeline; failures are always non-fatal.
package geocode

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"attraction_sync/internal/fetch"
)

// Location is a resolved coordinate pair with the provider's display address.
type Location struct {
	Latitude         float64
	Longitude        float64
	FormattedAddress string
}

// Config holds geocoder configuration.
type Config struct {
	BaseURL     string
	CountryCode string
	MinInterval time.Duration // public endpoints rate-limit aggressively
}

// Client geocodes place names. Lookups are serialized and spaced at least
// MinInterval apart.
type Client struct {
	fetcher *fetch.Client
	cfg     Config
	logger  *slog.Logger

	mu       sync.Mutex
	lastCall time.Time
}

// New creates a geocoding client.
func New(fetcher *fetch.Client, cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://nominatim.openstreetmap.org/search"
	}
	if cfg.CountryCode == "" {
		cfg.CountryCode = "th"
	}
	if cfg.MinInterval == 0 {
		cfg.MinInterval = 1 * time.Second
	}
	return &Client{fetcher: fetcher, cfg: cfg, logger: logger}
}

type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocode resolves a place name, optionally qualified by province. A nil
// result with nil error means the place was not found.
func (c *Client) Geocode(ctx context.Context, name, province string) (*Location, error) {
	if name == "" {
		return nil, nil
	}

	query := name
	if province != "" {
		query = name + ", " + province
	}

	if err := c.rateLimit(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("countrycodes", c.cfg.CountryCode)

	body, err := c.fetcher.Fetch(ctx, c.cfg.BaseURL+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("geocode %q: %w", query, err)
	}

	var results []searchResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("geocode %q: decode response: %w", query, err)
	}
	if len(results) == 0 {
		c.logger.Debug("no geocoding match", "query", query)
		return nil, nil
	}

	lat, latErr := strconv.ParseFloat(results[0].Lat, 64)
	lon, lonErr := strconv.ParseFloat(results[0].Lon, 64)
	if latErr != nil || lonErr != nil {
		return nil, fmt.Errorf("geocode %q: malformed coordinates in response", query)
	}

	return &Location{
		Latitude:         lat,
		Longitude:        lon,
		FormattedAddress: results[0].DisplayName,
	}, nil
}

func (c *Client) rateLimit(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if wait := c.cfg.MinInterval - time.Since(c.lastCall); wait > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	c.lastCall = time.Now()
	return nil
}
