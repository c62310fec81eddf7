// Package geocoding resolves free-text addresses and postcodes to coordinates.
package geocoding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"

	"resty.dev/v3"

	"github.com/garage-sale-marketplace/internal/config"
	"github.com/garage-sale-marketplace/internal/domain/geo"
	"github.com/garage-sale-marketplace/internal/domain/shared"
)

const providerName = "geocoding"

// ErrNoResult means the provider answered but found nothing for the query
var ErrNoResult = errors.New("no geocoding result")

// Geocoder looks up a single best match for a query
type Geocoder interface {
	Search(ctx context.Context, query string) (*geo.Location, error)
}

// NominatimClient queries an OpenStreetMap Nominatim compatible /search endpoint
type NominatimClient struct {
	client       *resty.Client
	countryCodes string
	logger       *slog.Logger
}

type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func NewNominatimClient(logger *slog.Logger, cfg *config.GeocodingConfig) *NominatimClient {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")
	if cfg.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.UserAgent)
	}

	return &NominatimClient{
		client:       client,
		countryCodes: cfg.CountryCodes,
		logger:       logger,
	}
}

func (c *NominatimClient) Search(ctx context.Context, query string) (*geo.Location, error) {
	params := map[string]string{
		"q":      query,
		"format": "json",
		"limit":  "1",
	}
	if c.countryCodes != "" {
		params["countrycodes"] = c.countryCodes
	}

	var results []searchResult
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&results).
		Get("/search")
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return nil, &shared.UpstreamError{Provider: providerName, Message: "request timed out", Err: shared.ErrUpstreamTimeout}
		}
		return nil, &shared.UpstreamError{Provider: providerName, Message: err.Error(), Err: shared.ErrUpstreamUnavailable}
	}
	if resp.IsError() {
		return nil, &shared.UpstreamError{
			Provider: providerName,
			Message:  fmt.Sprintf("unexpected status %d", resp.StatusCode()),
			Err:      shared.ErrUpstreamUnavailable,
		}
	}
	if len(results) == 0 {
		return nil, ErrNoResult
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse latitude %q: %w", results[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse longitude %q: %w", results[0].Lon, err)
	}

	c.logger.Debug("Geocoded query", "query", query, "latitude", lat, "longitude", lon)
	return &geo.Location{
		Latitude:  lat,
		Longitude: lon,
		Name:      results[0].DisplayName,
	}, nil
}

func (c *NominatimClient) Close() error {
	return c.client.Close()
}
