package components

import (
	"context"

	"github.com/garage-sale-marketplace/internal/domain/sale"
	"github.com/garage-sale-marketplace/internal/domain/user"
	"github.com/garage-sale-marketplace/internal/platform/email"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockStatsRepo struct {
	mock.Mock
}

func (m *MockStatsRepo) Increment(ctx context.Context, sellerID string, amount decimal.Decimal) error {
	args := m.Called(ctx, sellerID, amount)
	return args.Error(0)
}

func (m *MockStatsRepo) Get(ctx context.Context, sellerID string) (*sale.SellerStats, error) {
	args := m.Called(ctx, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sale.SellerStats), args.Error(1)
}

func (m *MockStatsRepo) Recompute(ctx context.Context, sellerID string) (*sale.SellerStats, error) {
	args := m.Called(ctx, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sale.SellerStats), args.Error(1)
}

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Upsert(ctx context.Context, profile *user.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id string) (*user.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.Profile), args.Error(1)
}

func (m *MockUserRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendSaleReceipt(ctx context.Context, to email.Recipient, data email.SaleReceipt) error {
	args := m.Called(ctx, to, data)
	return args.Error(0)
}

func (m *MockMailer) SendListingPaid(ctx context.Context, to email.Recipient, data email.ListingPaid) error {
	args := m.Called(ctx, to, data)
	return args.Error(0)
}
