package handler

import (
	"log/slog"

	"github.com/garage-sale-marketplace/internal/api_gateway/middleware"
	"github.com/garage-sale-marketplace/internal/api_gateway/service"
	"github.com/gin-gonic/gin"
)

// UserHandler handles profile and account administration requests
type UserHandler struct {
	userService service.UserService
	logger      *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(logger *slog.Logger, userService service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// UpsertProfile stores the caller's profile from the verified token claims
func (h *UserHandler) UpsertProfile(c *gin.Context) {
	var req UpsertProfileRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	id := middleware.GetIdentity(c)
	if id == nil {
		RespondUnauthorized(c, "")
		return
	}

	profile, err := h.userService.UpsertProfile(c.Request.Context(), id, req.DisplayName)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	RespondOK(c, profile)
}

// Delete removes a user account. Admin only.
func (h *UserHandler) Delete(c *gin.Context) {
	var req DeleteUserRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	if err := h.userService.DeleteUser(c.Request.Context(), callerID(c), req.UserID); err != nil {
		RespondError(c, h.logger, err)
		return
	}

	RespondSuccess(c)
}
