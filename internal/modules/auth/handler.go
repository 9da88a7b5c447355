package auth

import (
	"errors"
	"net/http"

	"propzy/internal/middleware"
	"propzy/internal/pkg/logger"
	"propzy/internal/pkg/response"
	"propzy/internal/pkg/validator"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler manages all HTTP interactions for authentication
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/admin/login", h.AdminLogin)
		authGroup.POST("/forgot-password", h.ForgotPassword)
		authGroup.POST("/reset-password", h.ResetPassword)
	}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	userGroup := protected.Group("/users")
	{
		userGroup.GET("/me", h.GetMe)
		userGroup.PUT("/me/username", h.UpdateUserName)
	}
}

// Register creates a standard user account.
// @Summary		Register
// @Tags		Auth
// @Param		request	body	RegisterRequest	true	"email, password, optional userName and phone"
// @Success		201	{object}	map[string]interface{} "token and user"
// @Failure		400	{object}	map[string]interface{} "validation error or email already registered"
// @Router		/auth/register [POST]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			response.Error(c, http.StatusBadRequest, "EMAIL_EXISTS", "User with this email already exists")
			return
		}
		response.Internal(c, "Failed to register user", err)
		return
	}

	response.Success(c, http.StatusCreated, result)
}

// Login authenticates any active account.
// @Summary		Login
// @Tags		Auth
// @Param		request	body	LoginRequest	true	"credentials"
// @Success		200	{object}	map[string]interface{} "token and user"
// @Failure		401	{object}	map[string]interface{} "invalid credentials"
// @Failure		403	{object}	map[string]interface{} "account deactivated"
// @Router		/auth/login [POST]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		writeLoginError(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// AdminLogin authenticates admin accounts only.
// @Summary		Admin login
// @Tags		Auth
// @Param		request	body	LoginRequest	true	"credentials"
// @Success		200	{object}	map[string]interface{} "token and user"
// @Failure		401	{object}	map[string]interface{} "invalid admin credentials"
// @Router		/auth/admin/login [POST]
func (h *Handler) AdminLogin(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.service.AdminLogin(c.Request.Context(), req)
	if err != nil {
		writeLoginError(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

func writeLoginError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
	case errors.Is(err, ErrInvalidAdminCredentials):
		response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid admin credentials")
	case errors.Is(err, ErrAccountInactive):
		response.Error(c, http.StatusForbidden, "ACCOUNT_INACTIVE", "Account is deactivated")
	default:
		response.Internal(c, "Failed to login", err)
	}
}

// GetMe returns the caller's profile.
// @Summary		Current user
// @Tags		Users
// @Security	BearerAuth
// @Success		200	{object}	map[string]interface{}
// @Router		/users/me [GET]
func (h *Handler) GetMe(c *gin.Context) {
	user, err := h.service.Me(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "User not found")
			return
		}
		response.Internal(c, "Failed to load user", err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// UpdateUserName sets the caller's display name.
// @Summary		Update user name
// @Tags		Users
// @Security	BearerAuth
// @Param		request	body	UpdateUserNameRequest	true	"new user name"
// @Success		200	{object}	map[string]interface{}
// @Router		/users/me/username [PUT]
func (h *Handler) UpdateUserName(c *gin.Context) {
	var req UpdateUserNameRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.service.UpdateUserName(c.Request.Context(), middleware.UserID(c), req.UserName)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "User not found")
			return
		}
		response.Internal(c, "Failed to update user name", err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// ForgotPassword always answers 200 so callers cannot tell which emails have accounts.
// @Summary		Request password reset
// @Tags		Auth
// @Param		request	body	ForgotPasswordRequest	true	"account email"
// @Success		200	{object}	map[string]interface{}
// @Router		/auth/forgot-password [POST]
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.service.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		logger.FromContext(c).Error("password reset request failed", zap.Error(err))
	}
	response.Success(c, http.StatusOK, gin.H{
		"message": "If the email is registered, a reset link has been sent",
	})
}

// ResetPassword consumes a reset token.
// @Summary		Reset password
// @Tags		Auth
// @Param		request	body	ResetPasswordRequest	true	"token and new password"
// @Success		200	{object}	map[string]interface{}
// @Failure		400	{object}	map[string]interface{} "invalid, used or expired token"
// @Router		/auth/reset-password [POST]
func (h *Handler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		if errors.Is(err, ErrInvalidResetToken) {
			response.Error(c, http.StatusBadRequest, "INVALID_TOKEN", err.Error())
			return
		}
		response.Internal(c, "Failed to reset password", err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Password has been reset"})
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return false
	}
	if errs := validator.Validate(req); errs != nil {
		response.Validation(c, errs)
		return false
	}
	return true
}
