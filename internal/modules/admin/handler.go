package admin

import (
	"errors"
	"net/http"

	"propzy/internal/domain"
	"propzy/internal/metrics"
	"propzy/internal/modules/listing"
	"propzy/internal/pkg/logger"
	"propzy/internal/pkg/response"
	"propzy/internal/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler exposes moderation and categorization to admins. Create, fetch
// and delete reuse the listing module without its owner checks.
type Handler struct {
	service  *Service
	listings *listing.Service
	forms    *listing.Handler
}

func NewHandler(service *Service, listings *listing.Service, forms *listing.Handler) *Handler {
	return &Handler{service: service, listings: listings, forms: forms}
}

// RegisterRoutes mounts the admin listing routes. The group must already
// require an admin token.
func (h *Handler) RegisterRoutes(admin *gin.RouterGroup) {
	listings := admin.Group("/listings")
	{
		listings.GET("", h.List)
		listings.POST("", h.Create)
		listings.PATCH("/bulk-categorize", h.BulkCategorize)
		listings.GET("/:id", h.Get)
		listings.DELETE("/:id", h.Delete)
		listings.PUT("/:id/approve", h.Approve)
		listings.PUT("/:id/reject", h.Reject)
		listings.PATCH("/:id/categorize", h.Categorize)
	}
}

// List returns listings of every status.
// @Summary		Admin listing search
// @Tags		Admin
// @Security	BearerAuth
// @Param		status			query	string	false	"pending, approved, rejected"
// @Param		propertyType	query	string	false	"exact"
// @Param		purpose			query	string	false	"exact"
// @Param		city			query	string	false	"substring"
// @Param		search			query	string	false	"city, locality, description or apartment"
// @Param		category		query	string	false	"featured, topPick, highlighted, investment, recent"
// @Param		page			query	int		false	"default 1"
// @Param		limit			query	int		false	"default 20"
// @Router		/admin/listings [GET]
func (h *Handler) List(c *gin.Context) {
	page, limit := utils.Pagination(c.Query("page"), c.Query("limit"), 20, 100)
	result, err := h.service.List(c.Request.Context(), ListFilter{
		Status:       c.Query("status"),
		PropertyType: c.Query("propertyType"),
		Purpose:      c.Query("purpose"),
		City:         c.Query("city"),
		Search:       c.Query("search"),
		Category:     c.Query("category"),
	}, page, limit)
	if err != nil {
		writeError(c, err, "Failed to load listings")
		return
	}
	response.Success(c, http.StatusOK, result)
}

// Create stores a listing on behalf of the admin; it is approved immediately.
// @Summary		Create listing as admin
// @Tags		Admin
// @Security	BearerAuth
// @Router		/admin/listings [POST]
func (h *Handler) Create(c *gin.Context) {
	h.forms.Create(c)
}

// Get returns any listing regardless of status.
// @Summary		Get listing
// @Tags		Admin
// @Security	BearerAuth
// @Param		id	path	int	true	"listing id"
// @Router		/admin/listings/{id} [GET]
func (h *Handler) Get(c *gin.Context) {
	id, ok := listing.ParseID(c, "id")
	if !ok {
		return
	}
	l, err := h.listings.GetAny(c.Request.Context(), id)
	if err != nil {
		listing.WriteError(c, err, "Failed to load listing")
		return
	}
	response.Success(c, http.StatusOK, l)
}

// Delete permanently removes a listing. Enquiries that referenced it keep
// existing with an empty link.
// @Summary		Delete listing
// @Tags		Admin
// @Security	BearerAuth
// @Param		id	path	int	true	"listing id"
// @Router		/admin/listings/{id} [DELETE]
func (h *Handler) Delete(c *gin.Context) {
	id, ok := listing.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.listings.Destroy(c.Request.Context(), id); err != nil {
		listing.WriteError(c, err, "Failed to delete listing")
		return
	}
	metrics.RecordModeration("delete")
	logger.FromContext(c).Info("admin deleted listing", zap.Int64("listing_id", id))
	response.Success(c, http.StatusOK, gin.H{"message": "Listing deleted"})
}

// Approve makes a listing publicly visible.
// @Summary		Approve listing
// @Tags		Admin
// @Security	BearerAuth
// @Param		id	path	int	true	"listing id"
// @Router		/admin/listings/{id}/approve [PUT]
func (h *Handler) Approve(c *gin.Context) {
	id, ok := listing.ParseID(c, "id")
	if !ok {
		return
	}
	l, err := h.service.Approve(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, "Failed to approve listing")
		return
	}
	logger.FromContext(c).Info("listing approved", zap.Int64("listing_id", id))
	response.Success(c, http.StatusOK, l)
}

// Reject hides a listing from the public.
// @Summary		Reject listing
// @Tags		Admin
// @Security	BearerAuth
// @Param		id	path	int	true	"listing id"
// @Router		/admin/listings/{id}/reject [PUT]
func (h *Handler) Reject(c *gin.Context) {
	id, ok := listing.ParseID(c, "id")
	if !ok {
		return
	}
	l, err := h.service.Reject(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, "Failed to reject listing")
		return
	}
	logger.FromContext(c).Info("listing rejected", zap.Int64("listing_id", id))
	response.Success(c, http.StatusOK, l)
}

// Categorize merges merchandising fields onto one listing.
// @Summary		Categorize listing
// @Tags		Admin
// @Security	BearerAuth
// @Param		id		path	int						true	"listing id"
// @Param		request	body	domain.Categorization	true	"any subset of the categorization fields"
// @Router		/admin/listings/{id}/categorize [PATCH]
func (h *Handler) Categorize(c *gin.Context) {
	id, ok := listing.ParseID(c, "id")
	if !ok {
		return
	}
	var req domain.Categorization
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	l, err := h.service.Categorize(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err, "Failed to categorize listing")
		return
	}
	response.Success(c, http.StatusOK, l)
}

// BulkCategorize applies one categorization payload to many listings.
// @Summary		Bulk categorize
// @Tags		Admin
// @Security	BearerAuth
// @Param		request	body	BulkCategorizeRequest	true	"listingIds plus categorization fields"
// @Router		/admin/listings/bulk-categorize [PATCH]
func (h *Handler) BulkCategorize(c *gin.Context) {
	var req BulkCategorizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	matched, err := h.service.BulkCategorize(c.Request.Context(), req.ListingIDs, req.Categorization)
	if err != nil {
		writeError(c, err, "Failed to categorize listings")
		return
	}
	response.Success(c, http.StatusOK, BulkCategorizeResponse{
		Matched: matched,
		Message: "Listings categorized",
	})
}

func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrListingNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Listing not found")
	case errors.Is(err, ErrNoListingIDs):
		response.Error(c, http.StatusBadRequest, "BAD_REQUEST", err.Error())
	case errors.Is(err, ErrUnknownCategory):
		response.Error(c, http.StatusBadRequest, "BAD_REQUEST", "Category must be one of: featured, topPick, highlighted, investment, recent")
	case errors.Is(err, ErrInvalidStatus):
		response.Error(c, http.StatusBadRequest, "BAD_REQUEST", "Status must be one of: pending, approved, rejected")
	default:
		response.Internal(c, fallback, err)
	}
}
