package handler

import (
	"log/slog"

	"github.com/garage-sale-marketplace/internal/api_gateway/service"
	"github.com/garage-sale-marketplace/internal/domain/listing"
	"github.com/gin-gonic/gin"
)

// ListingHandler handles garage sale listing requests
type ListingHandler struct {
	listingService service.ListingService
	logger         *slog.Logger
}

// NewListingHandler creates a new listing handler
func NewListingHandler(logger *slog.Logger, listingService service.ListingService) *ListingHandler {
	return &ListingHandler{
		listingService: listingService,
		logger:         logger,
	}
}

// Create publishes a listing owned by the caller. It stays hidden until paid and approved.
func (h *ListingHandler) Create(c *gin.Context) {
	var req CreateListingRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	l, err := h.listingService.Create(c.Request.Context(), service.CreateListingInput{
		OwnerID:     callerID(c),
		Title:       req.Title,
		Description: req.Description,
		SaleType:    req.SaleType,
		Address:     req.Address,
		Postcode:    req.Postcode,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	})
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	RespondCreated(c, l)
}

// Search lists active listings matching the query string
func (h *ListingHandler) Search(c *gin.Context) {
	criteria, ok := h.criteria(c)
	if !ok {
		return
	}

	views, err := h.listingService.Search(c.Request.Context(), callerID(c), criteria)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	RespondOK(c, ListingListResponse{Listings: views})
}

// Clusters groups matching listings for the map view
func (h *ListingHandler) Clusters(c *gin.Context) {
	criteria, ok := h.criteria(c)
	if !ok {
		return
	}

	clusters, err := h.listingService.Clusters(c.Request.Context(), callerID(c), criteria)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	RespondOK(c, ClusterListResponse{Clusters: clusters})
}

// Save bookmarks a listing for the caller
func (h *ListingHandler) Save(c *gin.Context) {
	var req SaveListingRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	if err := h.listingService.Save(c.Request.Context(), callerID(c), req.ListingID); err != nil {
		RespondError(c, h.logger, err)
		return
	}

	RespondSuccess(c)
}

// Approve activates a paid listing. Admin only.
func (h *ListingHandler) Approve(c *gin.Context) {
	var req ApproveListingRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	result, err := h.listingService.Approve(c.Request.Context(), callerID(c), req.ListingID)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	RespondOK(c, result)
}

func (h *ListingHandler) criteria(c *gin.Context) (*listing.FilterCriteria, bool) {
	var q ListingSearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.logger.Warn("Invalid search query", "error", err)
		RespondBadRequest(c, "Invalid query: "+err.Error())
		return nil, false
	}

	return &listing.FilterCriteria{
		SaleType:      q.SaleType,
		Postcode:      q.Postcode,
		Distance:      q.Distance,
		UserLatitude:  q.Latitude,
		UserLongitude: q.Longitude,
	}, true
}
