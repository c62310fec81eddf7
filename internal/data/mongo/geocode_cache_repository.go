package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/garage-sale-marketplace/internal/domain/geo"
)

const (
	GeocodeCacheCollectionName = "geocode_cache"
)

type geocodeDocument struct {
	Query     string    `bson:"_id"`
	Latitude  float64   `bson:"latitude"`
	Longitude float64   `bson:"longitude"`
	Name      string    `bson:"name"`
	CreatedAt time.Time `bson:"createdAt"`
}

// GeocodeCacheRepository implements geo.CacheRepository for MongoDB.
// Entries older than ttl are ignored on read and expired by a TTL index.
type GeocodeCacheRepository struct {
	db     *mongo.Database
	logger *slog.Logger
	ttl    time.Duration
}

func NewGeocodeCacheRepository(logger *slog.Logger, db *mongo.Database, ttl time.Duration) geo.CacheRepository {
	return &GeocodeCacheRepository{
		db:     db,
		logger: logger,
		ttl:    ttl,
	}
}

func (r *GeocodeCacheRepository) Get(ctx context.Context, query string) (*geo.CacheEntry, error) {
	collection := r.db.Collection(GeocodeCacheCollectionName)

	filter := bson.M{"_id": query}
	if r.ttl > 0 {
		filter["createdAt"] = bson.M{"$gte": time.Now().UTC().Add(-r.ttl)}
	}

	var doc geocodeDocument
	if err := collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		r.logger.Error("Failed to read geocode cache", "query", query, "error", err)
		return nil, fmt.Errorf("failed to read geocode cache: %w", err)
	}

	return &geo.CacheEntry{
		Query: doc.Query,
		Location: geo.Location{
			Latitude:  doc.Latitude,
			Longitude: doc.Longitude,
			Name:      doc.Name,
		},
		CreatedAt: doc.CreatedAt,
	}, nil
}

func (r *GeocodeCacheRepository) Put(ctx context.Context, entry *geo.CacheEntry) error {
	collection := r.db.Collection(GeocodeCacheCollectionName)

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	update := bson.M{
		"$set": bson.M{
			"latitude":  entry.Location.Latitude,
			"longitude": entry.Location.Longitude,
			"name":      entry.Location.Name,
			"createdAt": entry.CreatedAt,
		},
	}

	_, err := collection.UpdateOne(ctx, bson.M{"_id": entry.Query}, update, options.Update().SetUpsert(true))
	if err != nil {
		r.logger.Error("Failed to write geocode cache", "query", entry.Query, "error", err)
		return fmt.Errorf("failed to write geocode cache: %w", err)
	}
	return nil
}
