package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the repositories rely on. It is idempotent.
func EnsureIndexes(ctx context.Context, logger *slog.Logger, db *mongo.Database, geocodeTTL time.Duration) error {
	_, err := db.Collection(SalesCollectionName).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "sellerId", Value: 1}, {Key: "timestamp", Value: -1}},
		Options: options.Index().SetName("seller_timestamp"),
	})
	if err != nil {
		return fmt.Errorf("failed to create sales index: %w", err)
	}

	if geocodeTTL > 0 {
		_, err = db.Collection(GeocodeCacheCollectionName).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: "createdAt", Value: 1}},
			Options: options.Index().
				SetName("created_at_ttl").
				SetExpireAfterSeconds(int32(geocodeTTL.Seconds())),
		})
		if err != nil {
			return fmt.Errorf("failed to create geocode cache index: %w", err)
		}
	}

	logger.Info("MongoDB indexes ensured")
	return nil
}
