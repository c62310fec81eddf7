package sale

import (
	"time"

	"github.com/shopspring/decimal"
)

// SellerStats is the running aggregate of a seller's recorded sales
type SellerStats struct {
	SellerID      string          `json:"sellerId"`
	TotalEarnings decimal.Decimal `json:"totalEarnings"`
	TotalSales    int64           `json:"totalSales"`
	LastUpdated   *time.Time      `json:"lastUpdated"`
}

// EmptyStats is returned for sellers without any recorded sale
func EmptyStats(sellerID string) *SellerStats {
	return &SellerStats{
		SellerID:      sellerID,
		TotalEarnings: decimal.Zero,
		TotalSales:    0,
	}
}
