package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/garage-sale-marketplace/internal/config"
	"github.com/garage-sale-marketplace/internal/domain/geo"
	"github.com/garage-sale-marketplace/internal/logger"
	"github.com/garage-sale-marketplace/internal/platform/geocoding"
)

// GeoServiceImpl implements the GeoService interface
type GeoServiceImpl struct {
	cache    geo.CacheRepository
	geocoder geocoding.Geocoder
	fallback geo.Location
	logger   *slog.Logger
}

func NewGeoService(logger *slog.Logger, cfg config.GeocodingConfig, cache geo.CacheRepository, geocoder geocoding.Geocoder) GeoService {
	return &GeoServiceImpl{
		cache:    cache,
		geocoder: geocoder,
		fallback: geo.Location{
			Latitude:  cfg.DefaultLatitude,
			Longitude: cfg.DefaultLongitude,
			Name:      cfg.DefaultName,
		},
		logger: logger,
	}
}

// Coordinates degrades to the configured default location on any failure
func (s *GeoServiceImpl) Coordinates(ctx context.Context, query string) *geo.Location {
	log := logger.FromContext(ctx, s.logger)

	normalized := geo.NormalizeQuery(query)
	if normalized == "" {
		return s.defaultLocation()
	}

	entry, err := s.cache.Get(ctx, normalized)
	if err != nil {
		log.Warn("Geocode cache lookup failed", "query", normalized, "error", err)
	}
	if entry != nil {
		loc := entry.Location
		loc.Cached = true
		return &loc
	}

	loc, err := s.geocoder.Search(ctx, normalized)
	if err != nil {
		log.Warn("Geocoding failed, using default location", "query", normalized, "error", err)
		return s.defaultLocation()
	}

	if err := s.cache.Put(ctx, &geo.CacheEntry{Query: normalized, Location: *loc, CreatedAt: time.Now().UTC()}); err != nil {
		log.Warn("Failed to cache geocoding result", "query", normalized, "error", err)
	}

	loc.Cached = false
	return loc
}

func (s *GeoServiceImpl) defaultLocation() *geo.Location {
	loc := s.fallback
	return &loc
}
