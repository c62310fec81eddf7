package handler

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/garage-sale-marketplace/internal/api_gateway/middleware"
	"github.com/garage-sale-marketplace/internal/api_gateway/service"
	"github.com/garage-sale-marketplace/internal/domain/sale"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// PaymentHandler handles HTTP requests for seller payments and sales
type PaymentHandler struct {
	saleService service.SaleService
	logger      *slog.Logger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(logger *slog.Logger, saleService service.SaleService) *PaymentHandler {
	return &PaymentHandler{
		saleService: saleService,
		logger:      logger,
	}
}

// CreatePaymentIntent starts a charge for the authenticated seller
func (h *PaymentHandler) CreatePaymentIntent(c *gin.Context) {
	var req CreatePaymentIntentRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	result, err := h.saleService.CreatePaymentIntent(c.Request.Context(), service.CreatePaymentIntentInput{
		SellerID:       callerID(c),
		Amount:         *req.Amount,
		Description:    req.Description,
		Currency:       req.Currency,
		PaymentMethod:  req.PaymentMethod,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	RespondOK(c, result)
}

// RecordSale stores a sale for the authenticated seller
func (h *PaymentHandler) RecordSale(c *gin.Context) {
	var req RecordSaleRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	result, err := h.saleService.RecordSale(c.Request.Context(), service.RecordSaleInput{
		VerifiedSellerID: callerID(c),
		SellerID:         req.SellerID,
		Amount:           *req.Amount,
		Description:      req.Description,
		PaymentMethod:    req.PaymentMethod,
		PaymentIntentID:  req.PaymentIntentID,
		Currency:         req.Currency,
	})
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	RespondOK(c, RecordSaleResponse{SaleID: result.SaleID, Success: true})
}

// RecordTapToPaySale stores an in-person card sale and echoes its fee breakdown
func (h *PaymentHandler) RecordTapToPaySale(c *gin.Context) {
	var req RecordTapToPaySaleRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	result, err := h.saleService.RecordTapToPaySale(c.Request.Context(), service.TapToPayInput{
		SellerID:        callerID(c),
		Amount:          *req.Amount,
		Description:     req.Description,
		PaymentIntentID: req.PaymentIntentID,
		Currency:        req.Currency,
	})
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	RespondOK(c, TapToPaySaleResponse{
		Success:  true,
		SaleID:   result.SaleID,
		SaleData: mapSaleToResponse(result.Sale),
	})
}

// GetStats returns the seller's running totals
func (h *PaymentHandler) GetStats(c *gin.Context) {
	stats, err := h.saleService.GetSellerStats(c.Request.Context(), callerID(c), c.Param("sellerId"))
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	RespondOK(c, mapStatsToResponse(stats))
}

// GetSales returns the seller's recent sales, newest first
func (h *PaymentHandler) GetSales(c *gin.Context) {
	sales, err := h.saleService.GetSales(c.Request.Context(), callerID(c), c.Param("sellerId"))
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	response := SaleListResponse{Sales: make([]SaleResponse, 0, len(sales))}
	for _, s := range sales {
		response.Sales = append(response.Sales, mapSaleToResponse(s))
	}
	RespondOK(c, response)
}

// bindJSON decodes and validates the request body, answering 400 on failure
func bindJSON(c *gin.Context, logger *slog.Logger, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		logger.Warn("Invalid request body", "path", c.Request.URL.Path, "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// callerID is the verified subject of the bearer token, empty on unauthenticated routes
func callerID(c *gin.Context) string {
	if id := middleware.GetIdentity(c); id != nil {
		return id.UID
	}
	return ""
}

func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

func optionalMoney(d *decimal.Decimal) *json.Number {
	if d == nil {
		return nil
	}
	n := money(*d)
	return &n
}

// mapSaleToResponse maps a sale entity to a sale response DTO
func mapSaleToResponse(s *sale.Sale) SaleResponse {
	return SaleResponse{
		ID:              s.ID,
		SellerID:        s.SellerID,
		Amount:          money(s.Amount),
		Currency:        s.Currency,
		Description:     s.Description,
		PaymentMethod:   string(s.PaymentMethod),
		PaymentIntentID: s.PaymentIntentID,
		Status:          string(s.Status),
		TransactionFee:  optionalMoney(s.TransactionFee),
		NetEarnings:     optionalMoney(s.NetEarnings),
		Timestamp:       s.Timestamp.Format(time.RFC3339),
	}
}

func mapStatsToResponse(stats *sale.SellerStats) SellerStatsResponse {
	response := SellerStatsResponse{
		SellerID:      stats.SellerID,
		TotalEarnings: money(stats.TotalEarnings),
		TotalSales:    stats.TotalSales,
	}
	if stats.LastUpdated != nil {
		ts := stats.LastUpdated.Format(time.RFC3339)
		response.LastUpdated = &ts
	}
	return response
}
