package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/garage-sale-marketplace/internal/api_gateway/service"
	"github.com/garage-sale-marketplace/internal/domain/sale"
	"github.com/garage-sale-marketplace/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newPaymentRouter(uid string, svc service.SaleService) *gin.Engine {
	h := NewPaymentHandler(newTestLogger(), svc)
	router := setupTestRouter(uid)
	router.POST("/payment/createPaymentIntent", h.CreatePaymentIntent)
	router.POST("/payment/recordSale", h.RecordSale)
	router.POST("/payment/recordTapToPaySale", h.RecordTapToPaySale)
	router.GET("/payment/stats/:sellerId", h.GetStats)
	router.GET("/payment/sales/:sellerId", h.GetSales)
	return router
}

func TestPaymentHandler_CreatePaymentIntent(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := new(MockSaleService)
		mockService.On("CreatePaymentIntent", mock.Anything, mock.MatchedBy(func(in service.CreatePaymentIntentInput) bool {
			return in.SellerID == "seller-1" && in.Amount.Equal(decimal.RequireFromString("25.00")) &&
				in.Currency == "aud" && in.Description == "lamp" && in.IdempotencyKey == "order-7"
		})).Return(&service.PaymentIntentResult{ClientSecret: "pi_1_secret", PaymentIntentID: "pi_1"}, nil).Once()
		router := newPaymentRouter("seller-1", mockService)

		rr := doJSON(router, http.MethodPost, "/payment/createPaymentIntent",
			`{"amount":25.00,"currency":"aud","description":"lamp","idempotencyKey":"order-7"}`)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"clientSecret":"pi_1_secret","paymentIntentId":"pi_1"}`, rr.Body.String())
		mockService.AssertExpectations(t)
	})

	t.Run("InvalidRequestBody", func(t *testing.T) {
		bodies := map[string]string{
			"Malformed":      `{"amount`,
			"MissingAmount":  `{"description":"lamp"}`,
			"UnknownField":   `{"amount":5,"tip":1}`,
			"BadCurrency":    `{"amount":5,"currency":"dollars"}`,
			"CashNotAllowed": `{"amount":5,"paymentMethod":"cash"}`,
		}
		for name, body := range bodies {
			t.Run(name, func(t *testing.T) {
				mockService := new(MockSaleService)
				router := newPaymentRouter("seller-1", mockService)

				rr := doJSON(router, http.MethodPost, "/payment/createPaymentIntent", body)

				assert.Equal(t, http.StatusBadRequest, rr.Code)
				assert.Equal(t, "INVALID_INPUT", decodeError(t, rr).Code)
				mockService.AssertNotCalled(t, "CreatePaymentIntent", mock.Anything, mock.Anything)
			})
		}
	})

	t.Run("GatewayNotConfigured", func(t *testing.T) {
		mockService := new(MockSaleService)
		mockService.On("CreatePaymentIntent", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("%w: payment gateway secret key is not configured", shared.ErrConfiguration)).Once()
		router := newPaymentRouter("seller-1", mockService)

		rr := doJSON(router, http.MethodPost, "/payment/createPaymentIntent", `{"amount":25}`)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Equal(t, "CONFIGURATION_ERROR", decodeError(t, rr).Code)
	})
}

func TestPaymentHandler_RecordSale(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := new(MockSaleService)
		mockService.On("RecordSale", mock.Anything, mock.MatchedBy(func(in service.RecordSaleInput) bool {
			return in.VerifiedSellerID == "seller-1" && in.SellerID == "seller-1" &&
				in.Amount.Equal(decimal.NewFromInt(10)) && in.PaymentMethod == "cash"
		})).Return(&service.RecordSaleResult{SaleID: "sale-1"}, nil).Once()
		router := newPaymentRouter("seller-1", mockService)

		rr := doJSON(router, http.MethodPost, "/payment/recordSale",
			`{"sellerId":"seller-1","amount":"10","paymentMethod":"cash"}`)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"saleId":"sale-1","success":true}`, rr.Body.String())
	})

	t.Run("IdentityMismatch", func(t *testing.T) {
		mockService := new(MockSaleService)
		mockService.On("RecordSale", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("%w: sellerId does not match the authenticated user", shared.ErrIdentityMismatch)).Once()
		router := newPaymentRouter("seller-1", mockService)

		rr := doJSON(router, http.MethodPost, "/payment/recordSale", `{"sellerId":"seller-2","amount":10,"paymentMethod":"cash"}`)

		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Equal(t, "IDENTITY_MISMATCH", decodeError(t, rr).Code)
	})

	t.Run("MissingFields", func(t *testing.T) {
		mockService := new(MockSaleService)
		router := newPaymentRouter("seller-1", mockService)

		rr := doJSON(router, http.MethodPost, "/payment/recordSale", `{"amount":10}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "RecordSale", mock.Anything, mock.Anything)
	})

	t.Run("SaleStoreFailure", func(t *testing.T) {
		mockService := new(MockSaleService)
		mockService.On("RecordSale", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("failed to store sale: %w", assert.AnError)).Once()
		router := newPaymentRouter("seller-1", mockService)

		rr := doJSON(router, http.MethodPost, "/payment/recordSale", `{"sellerId":"seller-1","amount":10,"paymentMethod":"cash"}`)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		body := decodeError(t, rr)
		assert.Equal(t, "INTERNAL_SERVER_ERROR", body.Code)
		assert.Contains(t, body.Details, "failed to store sale")
	})
}

func TestPaymentHandler_RecordTapToPaySale(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		fee, net := decimal.RequireFromString("3.2"), decimal.RequireFromString("96.8")
		intentID := "pi_tap"
		stored := &sale.Sale{
			ID:              "sale-9",
			SellerID:        "seller-1",
			Amount:          decimal.NewFromInt(100),
			Currency:        "aud",
			PaymentMethod:   shared.PaymentMethodTapToPay,
			PaymentIntentID: &intentID,
			Status:          shared.SaleStatusCompleted,
			TransactionFee:  &fee,
			NetEarnings:     &net,
			Timestamp:       time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC),
		}
		mockService := new(MockSaleService)
		mockService.On("RecordTapToPaySale", mock.Anything, mock.MatchedBy(func(in service.TapToPayInput) bool {
			return in.SellerID == "seller-1" && in.PaymentIntentID == "pi_tap"
		})).Return(&service.RecordSaleResult{SaleID: "sale-9", Sale: stored}, nil).Once()
		router := newPaymentRouter("seller-1", mockService)

		rr := doJSON(router, http.MethodPost, "/payment/recordTapToPaySale", `{"amount":100,"description":"bike","paymentIntentId":"pi_tap"}`)

		require.Equal(t, http.StatusOK, rr.Code)
		var body struct {
			Success  bool                       `json:"success"`
			SaleID   string                     `json:"saleId"`
			SaleData map[string]json.RawMessage `json:"saleData"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.True(t, body.Success)
		assert.Equal(t, "sale-9", body.SaleID)
		assert.Equal(t, "100.00", string(body.SaleData["amount"]))
		assert.Equal(t, "3.20", string(body.SaleData["transactionFee"]))
		assert.Equal(t, "96.80", string(body.SaleData["netEarnings"]))
		assert.Equal(t, `"2026-10-01T09:30:00Z"`, string(body.SaleData["timestamp"]))
	})

	t.Run("PaymentNotConfirmed", func(t *testing.T) {
		mockService := new(MockSaleService)
		mockService.On("RecordTapToPaySale", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("%w: payment status is requires_payment_method", shared.ErrPaymentNotConfirmed)).Once()
		router := newPaymentRouter("seller-1", mockService)

		rr := doJSON(router, http.MethodPost, "/payment/recordTapToPaySale", `{"amount":100,"paymentIntentId":"pi_x"}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "PAYMENT_NOT_CONFIRMED", decodeError(t, rr).Code)
	})

	t.Run("MissingPaymentIntent", func(t *testing.T) {
		mockService := new(MockSaleService)
		router := newPaymentRouter("seller-1", mockService)

		rr := doJSON(router, http.MethodPost, "/payment/recordTapToPaySale", `{"amount":100}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "RecordTapToPaySale", mock.Anything, mock.Anything)
	})
}

func TestPaymentHandler_GetStats(t *testing.T) {
	t.Run("ZeroedDefault", func(t *testing.T) {
		mockService := new(MockSaleService)
		mockService.On("GetSellerStats", mock.Anything, "seller-1", "seller-1").Return(sale.EmptyStats("seller-1"), nil).Once()
		router := newPaymentRouter("seller-1", mockService)

		rr := doJSON(router, http.MethodGet, "/payment/stats/seller-1", "")

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"sellerId":"seller-1","totalEarnings":0.00,"totalSales":0,"lastUpdated":null}`, rr.Body.String())
	})

	t.Run("OtherSeller", func(t *testing.T) {
		mockService := new(MockSaleService)
		mockService.On("GetSellerStats", mock.Anything, "seller-1", "seller-2").
			Return(nil, fmt.Errorf("%w: not your dashboard", shared.ErrIdentityMismatch)).Once()
		router := newPaymentRouter("seller-1", mockService)

		rr := doJSON(router, http.MethodGet, "/payment/stats/seller-2", "")

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}

func TestPaymentHandler_GetSales(t *testing.T) {
	mockService := new(MockSaleService)
	mockService.On("GetSales", mock.Anything, "seller-1", "seller-1").Return([]*sale.Sale{
		{ID: "s2", SellerID: "seller-1", Amount: decimal.RequireFromString("20"), PaymentMethod: shared.PaymentMethodCash, Status: shared.SaleStatusRecorded},
		{ID: "s1", SellerID: "seller-1", Amount: decimal.RequireFromString("10.5"), PaymentMethod: shared.PaymentMethodCash, Status: shared.SaleStatusRecorded},
	}, nil).Once()
	router := newPaymentRouter("seller-1", mockService)

	rr := doJSON(router, http.MethodGet, "/payment/sales/seller-1", "")

	require.Equal(t, http.StatusOK, rr.Code)
	var body SaleListResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body.Sales, 2)
	assert.Equal(t, "s2", body.Sales[0].ID)
	assert.Equal(t, json.Number("10.50"), body.Sales[1].Amount)
	assert.Nil(t, body.Sales[1].PaymentIntentID)
	assert.Nil(t, body.Sales[1].TransactionFee)
}
