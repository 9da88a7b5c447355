package listing

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"propzy/internal/domain"
	"propzy/internal/middleware"
	"propzy/internal/pkg/response"
	"propzy/internal/pkg/utils"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Handler manages owner and public listing endpoints
type Handler struct {
	service        *Service
	maxUploadBytes int64
}

func NewHandler(service *Service, maxUploadBytes int64) *Handler {
	return &Handler{service: service, maxUploadBytes: maxUploadBytes}
}

// RegisterPublicRoutes mounts the anonymous endpoints. optionalAuth attaches
// the caller identity to single-item fetches when a token is sent.
func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup, optionalAuth gin.HandlerFunc) {
	listings := v1.Group("/listings")
	{
		listings.GET("", h.Browse)
		listings.GET("/search", h.Search)
		listings.GET("/views/:view", h.View)
		listings.GET("/city/:city", h.ByCity)
		listings.GET("/:id", optionalAuth, h.GetByID)
	}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	listings := protected.Group("/listings")
	{
		listings.POST("", h.Create)
		listings.GET("/mine", h.ListMine)
		listings.PUT("/:id", h.Update)
		listings.DELETE("/:id", h.Delete)
	}
	protected.GET("/users/:userId/listings", h.ListByUser)
}

// Create submits a new listing for moderation.
// @Summary		Create listing
// @Description	Accepts JSON or multipart/form-data with up to 20 "photos" files and one "video" file.
// @Tags		Listings
// @Security	BearerAuth
// @Accept		json,mpfd
// @Success		201	{object}	map[string]interface{}
// @Failure		400	{object}	map[string]interface{} "validation error"
// @Router		/listings [POST]
func (h *Handler) Create(c *gin.Context) {
	in, media, ok := h.bindCreate(c)
	if !ok {
		return
	}
	if errs := in.Validate(true); errs != nil {
		response.Validation(c, errs)
		return
	}

	listing, err := h.service.Create(c.Request.Context(), ActorFrom(c), in, media)
	if err != nil {
		writeError(c, err, "Failed to create listing")
		return
	}
	response.Success(c, http.StatusCreated, listing)
}

// decodeInput reads JSON or multipart bodies into the same input. The form
// is nil for JSON requests.
func (h *Handler) decodeInput(c *gin.Context) (ListingInput, *multipart.Form, error) {
	var in ListingInput
	if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		err := c.ShouldBindJSON(&in)
		return in, nil, err
	}

	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}
	form, err := c.MultipartForm()
	if err != nil {
		return in, nil, err
	}
	in, err = DecodeForm(form.Value)
	return in, form, err
}

func (h *Handler) bindCreate(c *gin.Context) (ListingInput, Media, bool) {
	var media Media
	in, form, err := h.decodeInput(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return in, media, false
	}
	if form == nil {
		return in, media, true
	}

	media.Photos = form.File["photos"]
	videos := form.File["video"]
	if len(media.Photos) > MaxPhotos || len(videos) > MaxVideos {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Too many files",
			gin.H{"photos": MaxPhotos, "video": MaxVideos})
		return in, media, false
	}
	if len(videos) == 1 {
		media.Video = videos[0]
	}
	return in, media, true
}

// GetByID returns a listing. Pending and rejected listings are visible to their owner only.
// @Summary		Get listing
// @Tags		Listings
// @Param		id	path	int	true	"listing id"
// @Success		200	{object}	map[string]interface{}
// @Failure		403	{object}	map[string]interface{} "not visible to the caller"
// @Failure		404	{object}	map[string]interface{}
// @Router		/listings/{id} [GET]
func (h *Handler) GetByID(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}
	listing, err := h.service.Get(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		writeError(c, err, "Failed to load listing")
		return
	}
	response.Success(c, http.StatusOK, listing)
}

// Update changes the caller's own listing.
// @Summary		Update listing
// @Tags		Listings
// @Security	BearerAuth
// @Param		id	path	int	true	"listing id"
// @Success		200	{object}	map[string]interface{}
// @Failure		403	{object}	map[string]interface{} "not the owner"
// @Failure		404	{object}	map[string]interface{}
// @Router		/listings/{id} [PUT]
func (h *Handler) Update(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}

	in, _, err := h.decodeInput(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if errs := in.Validate(false); errs != nil {
		response.Validation(c, errs)
		return
	}

	listing, err := h.service.Update(c.Request.Context(), id, middleware.UserID(c), in)
	if err != nil {
		writeError(c, err, "Failed to update listing")
		return
	}
	response.Success(c, http.StatusOK, listing)
}

// Delete removes the caller's own listing.
// @Summary		Delete listing
// @Tags		Listings
// @Security	BearerAuth
// @Param		id	path	int	true	"listing id"
// @Router		/listings/{id} [DELETE]
func (h *Handler) Delete(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id, middleware.UserID(c)); err != nil {
		writeError(c, err, "Failed to delete listing")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Listing deleted"})
}

// ListMine returns every listing of the caller regardless of status.
// @Summary		My listings
// @Tags		Listings
// @Security	BearerAuth
// @Router		/listings/mine [GET]
func (h *Handler) ListMine(c *gin.Context) {
	page, limit := pagination(c)
	result, err := h.service.ListMine(c.Request.Context(), middleware.UserID(c), page, limit)
	if err != nil {
		writeError(c, err, "Failed to load listings")
		return
	}
	response.Success(c, http.StatusOK, result)
}

// ListByUser returns another user's listings.
// @Summary		Listings of a user
// @Tags		Listings
// @Security	BearerAuth
// @Param		userId	path	int	true	"user id"
// @Router		/users/{userId}/listings [GET]
func (h *Handler) ListByUser(c *gin.Context) {
	userID, ok := ParseID(c, "userId")
	if !ok {
		return
	}
	page, limit := pagination(c)
	result, err := h.service.ListByUser(c.Request.Context(), userID, ActorFrom(c), page, limit)
	if err != nil {
		writeError(c, err, "Failed to load listings")
		return
	}
	response.Success(c, http.StatusOK, result)
}

// Search matches approved listings by city, locality, description or apartment.
// @Summary		Search listings
// @Tags		Listings
// @Param		query	query	string	true	"search text"
// @Router		/listings/search [GET]
func (h *Handler) Search(c *gin.Context) {
	page, limit := pagination(c)
	result, err := h.service.Search(c.Request.Context(), c.Query("query"), page, limit)
	if err != nil {
		writeError(c, err, "Failed to search listings")
		return
	}
	response.Success(c, http.StatusOK, result)
}

// Browse is the public catalogue.
// @Summary		Browse listings
// @Tags		Listings
// @Param		purpose			query	string	false	"Sell, Rent / Lease, PG"
// @Param		propertyType	query	string	false	"Residential, Commercial"
// @Param		city			query	string	false	"substring"
// @Param		locality		query	string	false	"substring"
// @Param		bedrooms		query	string	false	"exact"
// @Router		/listings [GET]
func (h *Handler) Browse(c *gin.Context) {
	page, limit := pagination(c)
	result, err := h.service.Browse(c.Request.Context(), BrowseFilter{
		Purpose:      c.Query("purpose"),
		PropertyType: c.Query("propertyType"),
		City:         c.Query("city"),
		Locality:     c.Query("locality"),
		Bedrooms:     c.Query("bedrooms"),
	}, page, limit)
	if err != nil {
		writeError(c, err, "Failed to load listings")
		return
	}
	response.Success(c, http.StatusOK, result)
}

// ByCity returns approved, active listings in one city.
// @Summary		Listings by city
// @Tags		Listings
// @Param		city	path	string	true	"city name, case-insensitive"
// @Router		/listings/city/{city} [GET]
func (h *Handler) ByCity(c *gin.Context) {
	page, limit := pagination(c)
	result, err := h.service.ByCity(c.Request.Context(), c.Param("city"), page, limit)
	if err != nil {
		writeError(c, err, "Failed to load listings")
		return
	}
	response.Success(c, http.StatusOK, result)
}

// View serves the merchandising rails of the home page.
// @Summary		Listing view
// @Tags		Listings
// @Param		view	path	string	true	"all, featured, top-picks, highlighted, investment, recent"
// @Param		limit	query	int		false	"default 10, max 50"
// @Router		/listings/views/{view} [GET]
func (h *Handler) View(c *gin.Context) {
	_, limit := utils.Pagination("", c.Query("limit"), DefaultViewLimit, MaxViewLimit)
	listings, err := h.service.View(c.Request.Context(), domain.View(c.Param("view")), limit)
	if err != nil {
		writeError(c, err, "Failed to load listings")
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"listings": listings,
		"count":    len(listings),
	})
}

// ActorFrom reads the authenticated identity from the gin context.
func ActorFrom(c *gin.Context) Actor {
	return Actor{ID: middleware.UserID(c), Role: domain.UserRole(middleware.Role(c))}
}

// ParseID reads a positive integer path parameter, answering 400 otherwise.
func ParseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid "+name)
		return 0, false
	}
	return id, true
}

func pagination(c *gin.Context) (int, int) {
	return utils.Pagination(c.Query("page"), c.Query("limit"), defaultPageSize, maxPageSize)
}

// WriteError maps listing errors to the response envelope.
func WriteError(c *gin.Context, err error, fallback string) {
	writeError(c, err, fallback)
}

func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrListingNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Listing not found")
	case errors.Is(err, ErrNotOwner):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, ErrNotVisible):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "This listing is not available")
	case errors.Is(err, ErrQueryRequired):
		response.Error(c, http.StatusBadRequest, "BAD_REQUEST", err.Error())
	case errors.Is(err, ErrUnknownView):
		response.Error(c, http.StatusBadRequest, "BAD_REQUEST", "View must be one of: all, featured, top-picks, highlighted, investment, recent")
	case errors.Is(err, ErrTooManyFiles):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Too many files")
	default:
		response.Internal(c, fallback, err)
	}
}
