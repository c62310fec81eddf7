package handler

import (
	"log/slog"

	"github.com/garage-sale-marketplace/internal/api_gateway/service"
	"github.com/gin-gonic/gin"
)

// GeoHandler resolves addresses to coordinates
type GeoHandler struct {
	geoService service.GeoService
	logger     *slog.Logger
}

// NewGeoHandler creates a new geo handler
func NewGeoHandler(logger *slog.Logger, geoService service.GeoService) *GeoHandler {
	return &GeoHandler{
		geoService: geoService,
		logger:     logger,
	}
}

// Coordinates always answers 200, falling back to the default location
func (h *GeoHandler) Coordinates(c *gin.Context) {
	var q CoordinatesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		RespondBadRequest(c, "Invalid query: "+err.Error())
		return
	}

	RespondOK(c, h.geoService.Coordinates(c.Request.Context(), q.Query))
}
