package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/garage-sale-marketplace/internal/api_gateway/middleware"
	"github.com/garage-sale-marketplace/internal/domain/shared"
	"github.com/garage-sale-marketplace/internal/logger"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error         string `json:"error"`
	Code          string `json:"code"`
	Details       string `json:"details,omitempty"`
	Retryable     bool   `json:"retryable,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// SuccessResponse is returned by operations with nothing else to report
type SuccessResponse struct {
	Success bool `json:"success"`
}

// errorCategory maps a domain error category onto the HTTP edge. Order matters:
// ErrUpstreamTimeout also matches ErrUpstreamUnavailable.
type errorCategory struct {
	target  error
	status  int
	code    string
	message string // replaces err.Error() when set
}

var errorCategories = []errorCategory{
	{shared.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED", ""},
	{shared.ErrForbidden, http.StatusForbidden, "FORBIDDEN", ""},
	{shared.ErrIdentityMismatch, http.StatusForbidden, "IDENTITY_MISMATCH", ""},
	{shared.ErrInvalidInput, http.StatusBadRequest, "INVALID_INPUT", ""},
	{shared.ErrPaymentNotConfirmed, http.StatusBadRequest, "PAYMENT_NOT_CONFIRMED", ""},
	{shared.ErrNotFound, http.StatusNotFound, "NOT_FOUND", ""},
	{shared.ErrUpstreamTimeout, http.StatusServiceUnavailable, "UPSTREAM_TIMEOUT", "Upstream service timed out, please retry"},
	{shared.ErrUpstreamUnavailable, http.StatusInternalServerError, "UPSTREAM_UNAVAILABLE", "Upstream service unavailable"},
	{shared.ErrConfiguration, http.StatusInternalServerError, "CONFIGURATION_ERROR", ""},
}

// RespondOK sends a 200 OK response with data
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// RespondCreated sends a 201 Created response with data
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// RespondSuccess sends {"success": true}
func RespondSuccess(c *gin.Context) {
	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// RespondWithError sends a JSON error body tagged with the request correlation ID
func RespondWithError(c *gin.Context, statusCode int, code, message, details string) {
	c.AbortWithStatusJSON(statusCode, ErrorResponse{
		Error:         message,
		Code:          code,
		Details:       details,
		Retryable:     statusCode == http.StatusServiceUnavailable,
		CorrelationID: middleware.GetCorrelationID(c),
	})
}

// RespondBadRequest sends a 400 Bad Request response with an error
func RespondBadRequest(c *gin.Context, message string) {
	RespondWithError(c, http.StatusBadRequest, "INVALID_INPUT", message, "")
}

// RespondUnauthorized sends a 401 Unauthorized response with an error
func RespondUnauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Unauthorized"
	}
	RespondWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", message, "")
}

// RespondError classifies err and writes the matching error response.
// Server-side failures are logged at error level, client errors at warn.
func RespondError(c *gin.Context, log *slog.Logger, err error) {
	log = logger.FromContext(c.Request.Context(), log)

	for _, category := range errorCategories {
		if !errors.Is(err, category.target) {
			continue
		}

		message := category.message
		if message == "" {
			message = err.Error()
		}
		if category.status >= http.StatusInternalServerError {
			log.Error("Request failed", "path", c.Request.URL.Path, "code", category.code, "error", err)
		} else {
			log.Warn("Request rejected", "path", c.Request.URL.Path, "code", category.code, "error", err)
		}
		RespondWithError(c, category.status, category.code, message, shared.UpstreamMessage(err))
		return
	}

	log.Error("Unexpected error", "path", c.Request.URL.Path, "error", err)
	RespondWithError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "An internal server error occurred", err.Error())
}
