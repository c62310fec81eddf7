package handler

import (
	"log/slog"

	"github.com/garage-sale-marketplace/internal/api_gateway/service"
	"github.com/gin-gonic/gin"
)

// CheckoutHandler handles the hosted checkout for listing publication fees
type CheckoutHandler struct {
	checkoutService service.CheckoutService
	logger          *slog.Logger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(logger *slog.Logger, checkoutService service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		logger:          logger,
	}
}

// Create returns the hosted checkout URL for the caller's listing
func (h *CheckoutHandler) Create(c *gin.Context) {
	var req CreateCheckoutRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	url, err := h.checkoutService.CreateSession(c.Request.Context(), callerID(c), req.SaleID, req.SaleTitle)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	RespondOK(c, CheckoutURLResponse{URL: url})
}

// Verify confirms the session was paid and marks the listing for approval
func (h *CheckoutHandler) Verify(c *gin.Context) {
	var req VerifyCheckoutRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	if err := h.checkoutService.VerifySession(c.Request.Context(), callerID(c), req.SessionID, req.SaleID); err != nil {
		RespondError(c, h.logger, err)
		return
	}

	RespondSuccess(c)
}
