package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/garage-sale-marketplace/internal/domain/sale"
	"github.com/garage-sale-marketplace/internal/domain/shared"
)

const (
	// SalesCollectionName holds the append-only sale records
	SalesCollectionName = "sales"
)

type saleDocument struct {
	ID              string                `bson:"_id"`
	SellerID        string                `bson:"sellerId"`
	Amount          primitive.Decimal128  `bson:"amount"`
	Currency        string                `bson:"currency"`
	Description     string                `bson:"description"`
	PaymentMethod   string                `bson:"paymentMethod"`
	PaymentIntentID *string               `bson:"paymentIntentId"`
	Status          string                `bson:"status"`
	TransactionFee  *primitive.Decimal128 `bson:"transactionFee,omitempty"`
	NetEarnings     *primitive.Decimal128 `bson:"netEarnings,omitempty"`
	Timestamp       time.Time             `bson:"timestamp"`
}

func newSaleDocument(s *sale.Sale) (*saleDocument, error) {
	amount, err := toDecimal128(s.Amount)
	if err != nil {
		return nil, err
	}
	fee, err := optionalDecimal128(s.TransactionFee)
	if err != nil {
		return nil, err
	}
	net, err := optionalDecimal128(s.NetEarnings)
	if err != nil {
		return nil, err
	}
	return &saleDocument{
		ID:              s.ID,
		SellerID:        s.SellerID,
		Amount:          amount,
		Currency:        s.Currency,
		Description:     s.Description,
		PaymentMethod:   string(s.PaymentMethod),
		PaymentIntentID: s.PaymentIntentID,
		Status:          string(s.Status),
		TransactionFee:  fee,
		NetEarnings:     net,
		Timestamp:       s.Timestamp,
	}, nil
}

func (d *saleDocument) toSale() (*sale.Sale, error) {
	amount, err := fromDecimal128(d.Amount)
	if err != nil {
		return nil, err
	}
	fee, err := optionalDecimal(d.TransactionFee)
	if err != nil {
		return nil, err
	}
	net, err := optionalDecimal(d.NetEarnings)
	if err != nil {
		return nil, err
	}
	return &sale.Sale{
		ID:              d.ID,
		SellerID:        d.SellerID,
		Amount:          amount,
		Currency:        d.Currency,
		Description:     d.Description,
		PaymentMethod:   shared.PaymentMethod(d.PaymentMethod),
		PaymentIntentID: d.PaymentIntentID,
		Status:          shared.SaleStatus(d.Status),
		TransactionFee:  fee,
		NetEarnings:     net,
		Timestamp:       d.Timestamp,
	}, nil
}

// SaleRepository implements the sale.Repository interface for MongoDB
type SaleRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

func NewSaleRepository(logger *slog.Logger, db *mongo.Database) sale.Repository {
	return &SaleRepository{
		db:     db,
		logger: logger,
	}
}

// Create assigns the id and server timestamp, then inserts the record
func (r *SaleRepository) Create(ctx context.Context, s *sale.Sale) error {
	collection := r.db.Collection(SalesCollectionName)

	s.ID = uuid.NewString()
	s.Timestamp = time.Now().UTC().Truncate(time.Millisecond)

	doc, err := newSaleDocument(s)
	if err != nil {
		return err
	}

	if _, err := collection.InsertOne(ctx, doc); err != nil {
		r.logger.Error("Failed to create sale",
			"seller_id", s.SellerID,
			"sale_id", s.ID,
			"error", err)
		s.ID = ""
		return fmt.Errorf("failed to create sale: %w", err)
	}

	return nil
}

// GetBySellerID returns up to limit sales, newest first
func (r *SaleRepository) GetBySellerID(ctx context.Context, sellerID string, limit int) ([]*sale.Sale, error) {
	collection := r.db.Collection(SalesCollectionName)

	filter := bson.M{"sellerId": sellerID}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get sales",
			"seller_id", sellerID,
			"error", err)
		return nil, fmt.Errorf("failed to get sales: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []saleDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.logger.Error("Failed to decode sales",
			"seller_id", sellerID,
			"error", err)
		return nil, fmt.Errorf("failed to decode sales: %w", err)
	}

	sales := make([]*sale.Sale, 0, len(docs))
	for i := range docs {
		s, err := docs[i].toSale()
		if err != nil {
			return nil, fmt.Errorf("failed to decode sale %s: %w", docs[i].ID, err)
		}
		sales = append(sales, s)
	}

	return sales, nil
}
