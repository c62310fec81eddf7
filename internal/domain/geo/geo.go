package geo

import (
	"context"
	"strings"
	"time"
)

// Location is a geocoded place
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name"`
	Cached    bool    `json:"cached"`
}

// CacheEntry is a stored geocoding result keyed by normalized query
type CacheEntry struct {
	Query     string
	Location  Location
	CreatedAt time.Time
}

// CacheRepository stores geocoding results. Get returns nil, nil when nothing is cached.
type CacheRepository interface {
	Get(ctx context.Context, query string) (*CacheEntry, error)
	Put(ctx context.Context, entry *CacheEntry) error
}

// NormalizeQuery lowercases and collapses whitespace so equivalent queries share a cache entry
func NormalizeQuery(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}
