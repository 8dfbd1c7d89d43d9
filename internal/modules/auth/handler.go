package auth

import (
	"errors"
	"net/http"

	"aloka/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// Handler manages the HTTP side of signup and identity
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts /auth. signupGuard runs before signup (rate limiting);
// authenticate must verify the bearer token and set user_id.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authenticate gin.HandlerFunc, signupGuard ...gin.HandlerFunc) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/signup", append(signupGuard, h.Signup)...)
		authGroup.GET("/me", authenticate, h.Me)
	}
}

// Signup registers an account and returns a session token.
// @Summary		Sign up
// @Tags		Auth
// @Param		request	body	SignupRequest	true	"name, email, password, optional role"
// @Success		200	{object}	SignupResponse
// @Failure		400	{object}	map[string]interface{} "Validation error"
// @Failure		409	{object}	map[string]interface{} "Email already registered"
// @Failure		429	{object}	map[string]interface{} "Too many signups from this address"
// @Router		/auth/signup [POST]
func (h *Handler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err.Error())
		return
	}

	result, err := h.service.Signup(c.Request.Context(), req)
	if err != nil {
		var verr *ValidationError
		switch {
		case errors.As(err, &verr):
			response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Name, email, and password are required", verr.Fields)
		case errors.Is(err, ErrEmailAlreadyExists):
			response.Error(c, http.StatusConflict, "EMAIL_EXISTS", "User with this email already exists")
		default:
			_ = c.Error(err)
			response.ErrorWithDetails(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create account", err.Error())
		}
		return
	}

	c.JSON(http.StatusOK, SignupResponse{
		Success: true,
		Token:   result.Token,
		User:    toSummary(result.User),
	})
}

// Me returns the profile of the account the bearer token belongs to.
// @Summary		Current user
// @Tags		Auth
// @Security	BearerAuth
// @Success		200	{object}	Profile
// @Failure		401	{object}	map[string]interface{} "Missing or invalid token"
// @Failure		404	{object}	map[string]interface{} "Account no longer exists"
// @Router		/auth/me [GET]
func (h *Handler) Me(c *gin.Context) {
	user, err := h.service.Me(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "User not found")
			return
		}
		_ = c.Error(err)
		response.ErrorWithDetails(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load profile", err.Error())
		return
	}

	c.JSON(http.StatusOK, toProfile(user))
}
