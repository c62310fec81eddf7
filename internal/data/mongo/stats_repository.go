package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/garage-sale-marketplace/internal/domain/sale"
)

const (
	// StatsCollectionName holds one aggregate document per seller, keyed by seller id
	StatsCollectionName = "sellerStats"

	maxRecomputeAttempts = 5
)

// ErrStatsConflict means every recompute attempt raced a concurrent increment
var ErrStatsConflict = errors.New("seller stats kept changing during recompute")

type statsDocument struct {
	SellerID      string               `bson:"_id"`
	TotalEarnings primitive.Decimal128 `bson:"totalEarnings"`
	TotalSales    int64                `bson:"totalSales"`
	LastUpdated   *time.Time           `bson:"lastUpdated"`
	Version       int64                `bson:"version,omitempty"`
}

func (d *statsDocument) toStats() (*sale.SellerStats, error) {
	earnings, err := fromDecimal128(d.TotalEarnings)
	if err != nil {
		return nil, err
	}
	return &sale.SellerStats{
		SellerID:      d.SellerID,
		TotalEarnings: earnings,
		TotalSales:    d.TotalSales,
		LastUpdated:   d.LastUpdated,
	}, nil
}

// StatsRepository implements sale.StatsRepository for MongoDB
type StatsRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

func NewStatsRepository(logger *slog.Logger, db *mongo.Database) sale.StatsRepository {
	return &StatsRepository{
		db:     db,
		logger: logger,
	}
}

// Increment applies the sale to the aggregate in one server-side update.
// Concurrent increments for the same seller never lose updates.
func (r *StatsRepository) Increment(ctx context.Context, sellerID string, amount decimal.Decimal) error {
	collection := r.db.Collection(StatsCollectionName)

	inc, err := toDecimal128(amount)
	if err != nil {
		return err
	}

	filter := bson.M{"_id": sellerID}
	update := bson.M{
		"$inc": bson.M{
			"totalEarnings": inc,
			"totalSales":    int64(1),
			"version":       int64(1),
		},
		"$set": bson.M{
			"lastUpdated": time.Now().UTC(),
		},
	}

	if _, err := collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		r.logger.Error("Failed to increment seller stats",
			"seller_id", sellerID,
			"amount", amount.String(),
			"error", err)
		return fmt.Errorf("failed to increment seller stats: %w", err)
	}

	return nil
}

// Get returns a zeroed aggregate when the seller has none yet
func (r *StatsRepository) Get(ctx context.Context, sellerID string) (*sale.SellerStats, error) {
	collection := r.db.Collection(StatsCollectionName)

	var doc statsDocument
	err := collection.FindOne(ctx, bson.M{"_id": sellerID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return sale.EmptyStats(sellerID), nil
		}
		r.logger.Error("Failed to get seller stats",
			"seller_id", sellerID,
			"error", err)
		return nil, fmt.Errorf("failed to get seller stats: %w", err)
	}

	return doc.toStats()
}

// Recompute sums the seller's sales and overwrites the aggregate with the result. The write is
// conditional on the version read before aggregating, so an increment that lands in between
// fails the write and the sum is taken again instead of being overwritten.
func (r *StatsRepository) Recompute(ctx context.Context, sellerID string) (*sale.SellerStats, error) {
	for attempt := 1; attempt <= maxRecomputeAttempts; attempt++ {
		version, err := r.version(ctx, sellerID)
		if err != nil {
			return nil, err
		}

		stats, err := r.sumSales(ctx, sellerID)
		if err != nil {
			return nil, err
		}

		stored, err := r.storeIfVersion(ctx, stats, version)
		if err != nil {
			return nil, err
		}
		if stored {
			r.logger.Info("Recomputed seller stats",
				"seller_id", sellerID,
				"total_sales", stats.TotalSales,
				"total_earnings", stats.TotalEarnings.String(),
				"attempt", attempt)
			return stats, nil
		}

		r.logger.Warn("Seller stats changed during recompute, retrying",
			"seller_id", sellerID,
			"version", version,
			"attempt", attempt)
	}

	return nil, fmt.Errorf("%w after %d attempts for seller %s", ErrStatsConflict, maxRecomputeAttempts, sellerID)
}

// version returns 0 when the aggregate does not exist or predates versioning
func (r *StatsRepository) version(ctx context.Context, sellerID string) (int64, error) {
	var doc statsDocument
	err := r.db.Collection(StatsCollectionName).
		FindOne(ctx, bson.M{"_id": sellerID}, options.FindOne().SetProjection(bson.M{"version": 1})).
		Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		r.logger.Error("Failed to read seller stats version",
			"seller_id", sellerID,
			"error", err)
		return 0, fmt.Errorf("failed to read seller stats version: %w", err)
	}
	return doc.Version, nil
}

func (r *StatsRepository) sumSales(ctx context.Context, sellerID string) (*sale.SellerStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"sellerId": sellerID}}},
		{{Key: "$group", Value: bson.M{
			"_id":           "$sellerId",
			"totalEarnings": bson.M{"$sum": "$amount"},
			"totalSales":    bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.db.Collection(SalesCollectionName).Aggregate(ctx, pipeline)
	if err != nil {
		r.logger.Error("Failed to aggregate seller sales",
			"seller_id", sellerID,
			"error", err)
		return nil, fmt.Errorf("failed to aggregate seller sales: %w", err)
	}
	defer cursor.Close(ctx)

	var groups []statsDocument
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("failed to decode seller sales aggregate: %w", err)
	}

	stats := sale.EmptyStats(sellerID)
	if len(groups) > 0 {
		computed, err := groups[0].toStats()
		if err != nil {
			return nil, err
		}
		stats.TotalEarnings = computed.TotalEarnings
		stats.TotalSales = computed.TotalSales
	}
	return stats, nil
}

// storeIfVersion reports false when the aggregate moved past version since it was read.
// Version 0 matches a missing document or field; a concurrent first increment then
// surfaces as a duplicate key on the upsert.
func (r *StatsRepository) storeIfVersion(ctx context.Context, stats *sale.SellerStats, version int64) (bool, error) {
	earnings, err := toDecimal128(stats.TotalEarnings)
	if err != nil {
		return false, err
	}
	now := time.Now().UTC()

	filter := bson.M{"_id": stats.SellerID, "version": version}
	opts := options.Update()
	if version == 0 {
		filter["version"] = nil
		opts.SetUpsert(true)
	}
	update := bson.M{
		"$set": bson.M{
			"totalEarnings": earnings,
			"totalSales":    stats.TotalSales,
			"lastUpdated":   now,
			"version":       version + 1,
		},
	}

	res, err := r.db.Collection(StatsCollectionName).UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		r.logger.Error("Failed to store recomputed seller stats",
			"seller_id", stats.SellerID,
			"error", err)
		return false, fmt.Errorf("failed to store recomputed seller stats: %w", err)
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return false, nil
	}

	stats.LastUpdated = &now
	return true, nil
}
