package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/garage-sale-marketplace/internal/api_gateway/middleware"
	"github.com/garage-sale-marketplace/internal/api_gateway/service"
	"github.com/garage-sale-marketplace/internal/domain/geo"
	"github.com/garage-sale-marketplace/internal/domain/listing"
	"github.com/garage-sale-marketplace/internal/domain/sale"
	"github.com/garage-sale-marketplace/internal/domain/user"
	"github.com/garage-sale-marketplace/internal/platform/identity"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// setupTestRouter authenticates every request as uid, or leaves it anonymous when uid is empty
func setupTestRouter(uid string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.CorrelationID())
	if uid != "" {
		r.Use(func(c *gin.Context) {
			c.Set(middleware.IdentityKey, &identity.Identity{UID: uid, Email: uid + "@example.com"})
			c.Next()
		})
	}
	return r
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.CorrelationIDHeader, "corr-test")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), rr.Body.String())
	return body
}

type MockSaleService struct {
	mock.Mock
}

func (m *MockSaleService) CreatePaymentIntent(ctx context.Context, in service.CreatePaymentIntentInput) (*service.PaymentIntentResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PaymentIntentResult), args.Error(1)
}

func (m *MockSaleService) RecordSale(ctx context.Context, in service.RecordSaleInput) (*service.RecordSaleResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RecordSaleResult), args.Error(1)
}

func (m *MockSaleService) RecordTapToPaySale(ctx context.Context, in service.TapToPayInput) (*service.RecordSaleResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.RecordSaleResult), args.Error(1)
}

func (m *MockSaleService) GetSellerStats(ctx context.Context, callerID, sellerID string) (*sale.SellerStats, error) {
	args := m.Called(ctx, callerID, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sale.SellerStats), args.Error(1)
}

func (m *MockSaleService) GetSales(ctx context.Context, callerID, sellerID string) ([]*sale.Sale, error) {
	args := m.Called(ctx, callerID, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*sale.Sale), args.Error(1)
}

type MockCheckoutService struct {
	mock.Mock
}

func (m *MockCheckoutService) CreateSession(ctx context.Context, userID, listingID, title string) (string, error) {
	args := m.Called(ctx, userID, listingID, title)
	return args.String(0), args.Error(1)
}

func (m *MockCheckoutService) VerifySession(ctx context.Context, userID, sessionID, listingID string) error {
	return m.Called(ctx, userID, sessionID, listingID).Error(0)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) UpsertProfile(ctx context.Context, id *identity.Identity, displayName string) (*user.Profile, error) {
	args := m.Called(ctx, id, displayName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.Profile), args.Error(1)
}

func (m *MockUserService) DeleteUser(ctx context.Context, callerID, targetID string) error {
	return m.Called(ctx, callerID, targetID).Error(0)
}

func (m *MockUserService) IsAdmin(ctx context.Context, uid string) (bool, error) {
	args := m.Called(ctx, uid)
	return args.Bool(0), args.Error(1)
}

type MockGeoService struct {
	mock.Mock
}

func (m *MockGeoService) Coordinates(ctx context.Context, query string) *geo.Location {
	return m.Called(ctx, query).Get(0).(*geo.Location)
}

type MockListingService struct {
	mock.Mock
}

func (m *MockListingService) Create(ctx context.Context, in service.CreateListingInput) (*listing.Listing, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*listing.Listing), args.Error(1)
}

func (m *MockListingService) Search(ctx context.Context, userID string, criteria *listing.FilterCriteria) ([]*service.ListingView, error) {
	args := m.Called(ctx, userID, criteria)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*service.ListingView), args.Error(1)
}

func (m *MockListingService) Clusters(ctx context.Context, userID string, criteria *listing.FilterCriteria) ([]*service.ListingCluster, error) {
	args := m.Called(ctx, userID, criteria)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*service.ListingCluster), args.Error(1)
}

func (m *MockListingService) Save(ctx context.Context, userID, listingID string) error {
	return m.Called(ctx, userID, listingID).Error(0)
}

func (m *MockListingService) Approve(ctx context.Context, adminID, listingID string) (*service.ApprovalResult, error) {
	args := m.Called(ctx, adminID, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ApprovalResult), args.Error(1)
}
