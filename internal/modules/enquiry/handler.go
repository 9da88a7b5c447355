package enquiry

import (
	"errors"
	"net/http"

	"propzy/internal/modules/listing"
	"propzy/internal/pkg/logger"
	"propzy/internal/pkg/response"
	"propzy/internal/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	v1.POST("/enquiries", h.Submit)
}

// RegisterAdminRoutes mounts triage endpoints on an admin-only group.
func (h *Handler) RegisterAdminRoutes(admin *gin.RouterGroup) {
	enquiries := admin.Group("/enquiries")
	{
		enquiries.GET("", h.List)
		enquiries.GET("/stats", h.Stats)
		enquiries.GET("/:id", h.Get)
		enquiries.PUT("/:id/status", h.UpdateStatus)
		enquiries.DELETE("/:id", h.Delete)
	}
}

// Submit accepts a contact form from the home page or a listing page.
// @Summary		Submit enquiry
// @Tags		Enquiries
// @Param		request	body	SubmitRequest	true	"contact details and optional listingId"
// @Success		201	{object}	map[string]interface{}
// @Failure		400	{object}	map[string]interface{} "validation error naming the field"
// @Failure		404	{object}	map[string]interface{} "listing not found"
// @Router		/enquiries [POST]
func (h *Handler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if errs := req.Validate(); errs != nil {
		response.Validation(c, errs)
		return
	}

	e, err := h.service.Submit(c.Request.Context(), req)
	if err != nil {
		writeError(c, err, "Failed to submit enquiry")
		return
	}
	logger.FromContext(c).Info("enquiry submitted",
		zap.Int64("enquiry_id", e.ID),
		zap.String("source", string(e.Source)),
	)
	response.Success(c, http.StatusCreated, e)
}

// List returns enquiries newest first.
// @Summary		List enquiries
// @Tags		Admin
// @Security	BearerAuth
// @Param		status	query	string	false	"pending, contacted, resolved, closed"
// @Param		source	query	string	false	"home, property_detail, other"
// @Param		search	query	string	false	"name, email, phone or location"
// @Router		/admin/enquiries [GET]
func (h *Handler) List(c *gin.Context) {
	page, limit := utils.Pagination(c.Query("page"), c.Query("limit"), 20, 100)
	result, err := h.service.List(c.Request.Context(), ListFilter{
		Status: c.Query("status"),
		Source: c.Query("source"),
		Search: c.Query("search"),
	}, page, limit)
	if err != nil {
		writeError(c, err, "Failed to load enquiries")
		return
	}
	response.Success(c, http.StatusOK, result)
}

// @Summary		Get enquiry
// @Tags		Admin
// @Security	BearerAuth
// @Router		/admin/enquiries/{id} [GET]
func (h *Handler) Get(c *gin.Context) {
	id, ok := listing.ParseID(c, "id")
	if !ok {
		return
	}
	e, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, "Failed to load enquiry")
		return
	}
	response.Success(c, http.StatusOK, e)
}

// UpdateStatus records triage progress.
// @Summary		Update enquiry status
// @Tags		Admin
// @Security	BearerAuth
// @Param		request	body	UpdateStatusRequest	true	"status and/or adminNotes"
// @Router		/admin/enquiries/{id}/status [PUT]
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := listing.ParseID(c, "id")
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	e, err := h.service.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err, "Failed to update enquiry")
		return
	}
	response.Success(c, http.StatusOK, e)
}

// @Summary		Delete enquiry
// @Tags		Admin
// @Security	BearerAuth
// @Router		/admin/enquiries/{id} [DELETE]
func (h *Handler) Delete(c *gin.Context) {
	id, ok := listing.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err, "Failed to delete enquiry")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Enquiry deleted"})
}

// Stats returns triage counters.
// @Summary		Enquiry statistics
// @Tags		Admin
// @Security	BearerAuth
// @Router		/admin/enquiries/stats [GET]
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		writeError(c, err, "Failed to load statistics")
		return
	}
	response.Success(c, http.StatusOK, stats)
}

func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrEnquiryNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Enquiry not found")
	case errors.Is(err, ErrListingNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Listing not found")
	case errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrInvalidSource), errors.Is(err, ErrNothingToUpdate):
		response.Error(c, http.StatusBadRequest, "BAD_REQUEST", err.Error())
	default:
		response.Internal(c, fallback, err)
	}
}
