package studio

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"aloka/internal/pkg/response"
	"aloka/internal/realtime"
)

type Handler struct {
	service *Service
	hub     *realtime.Hub
}

func NewHandler(service *Service, hub *realtime.Hub) *Handler {
	if hub == nil {
		hub = realtime.NewHub()
	}
	return &Handler{
		service: service,
		hub:     hub,
	}
}

// RegisterRoutes mounts the studio routes on rg. writeGuard, when given, runs
// in front of the mutating routes only.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, writeGuard ...gin.HandlerFunc) {
	studios := rg.Group("/studios")
	{
		studios.GET("", h.List)
		studios.GET("/events", h.Events)
		studios.GET("/:id", h.GetByID)
	}

	write := studios.Group("", writeGuard...)
	{
		write.POST("", h.Create)
		write.PATCH("", h.Update)
		write.PATCH("/:id", h.Update)
		write.DELETE("", h.Delete)
		write.DELETE("/:id", h.Delete)
	}
}

// List godoc
// @Summary Search active studios
// @Tags Studios
// @Produce json
// @Param search query string false "Free text over name, description and city"
// @Param city query string false "City substring"
// @Param minPrice query number false "Lower bound on hourly price"
// @Param maxPrice query number false "Upper bound on hourly price"
// @Param minDistance query number false "Lower bound on travel radius"
// @Param maxDistance query number false "Upper bound on travel radius"
// @Param minRating query number false "Minimum rating"
// @Param page query int false "Page, 1-based" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} ListResult
// @Router /studios [get]
func (h *Handler) List(c *gin.Context) {
	params := ParseListParams(c.Request.URL.Query())

	result, err := h.service.List(c.Request.Context(), params)
	if err != nil {
		h.fail(c, err, "fetch")
		return
	}

	response.Success(c, http.StatusOK, result)
}

// GetByID godoc
// @Summary Get an active studio
// @Tags Studios
// @Produce json
// @Param id path string true "Studio ID"
// @Router /studios/{id} [get]
func (h *Handler) GetByID(c *gin.Context) {
	studio, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "fetch")
		return
	}

	response.Success(c, http.StatusOK, studio)
}

// Create godoc
// @Summary Create a studio
// @Tags Studios
// @Accept json
// @Produce json
// @Param request body CreateStudioRequest true "Studio"
// @Router /studios [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateStudioRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", createBindDetails(c, err))
		return
	}

	studio, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err, "create")
		return
	}

	response.Success(c, http.StatusCreated, studio)
}

// Update godoc
// @Summary Partially update a studio
// @Tags Studios
// @Accept json
// @Produce json
// @Param id query string true "Studio ID"
// @Param request body UpdateStudioRequest true "Fields to change"
// @Router /studios [patch]
func (h *Handler) Update(c *gin.Context) {
	var req UpdateStudioRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err.Error())
		return
	}

	studio, err := h.service.Update(c.Request.Context(), studioID(c), req)
	if err != nil {
		h.fail(c, err, "update")
		return
	}

	response.Success(c, http.StatusOK, studio)
}

// Delete godoc
// @Summary Delete a studio
// @Tags Studios
// @Produce json
// @Param id query string true "Studio ID"
// @Router /studios [delete]
func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), studioID(c)); err != nil {
		h.fail(c, err, "delete")
		return
	}

	response.Message(c, http.StatusOK, "Studio deleted successfully")
}

// studioID reads the id from the path, falling back to ?id=.
func studioID(c *gin.Context) string {
	if id := c.Param("id"); id != "" {
		return id
	}
	return c.Query("id")
}

// createBindDetails still names the missing required fields when the body
// could not be decoded into a CreateStudioRequest.
func createBindDetails(c *gin.Context, err error) gin.H {
	details := gin.H{"error": err.Error(), "required": CreateRequiredFields}

	raw, _ := c.Get(gin.BodyBytesKey)
	b, _ := raw.([]byte)
	var body map[string]json.RawMessage
	if json.Unmarshal(b, &body) == nil {
		if missing := missingCreateFields(body); len(missing) > 0 {
			details["missing"] = missing
		}
	}
	return details
}

// requiredFields is the field list echoed next to "missing". Updates only
// require the location fields, and only when a location is sent.
func requiredFields(action string, missing []string) []string {
	if action == "create" {
		return CreateRequiredFields
	}
	for _, f := range missing {
		if strings.HasPrefix(f, "location.") {
			return LocationRequiredFields
		}
	}
	return nil
}

func (h *Handler) fail(c *gin.Context, err error, action string) {
	var verr *ValidationError

	switch {
	case errors.As(err, &verr):
		details := gin.H{}
		if len(verr.Missing) > 0 {
			details["missing"] = verr.Missing
			if required := requiredFields(action, verr.Missing); required != nil {
				details["required"] = required
			}
		}
		if len(verr.Invalid) > 0 {
			details["invalid"] = verr.Invalid
		}
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", verr.Message(), details)
	case errors.Is(err, ErrMissingID):
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Studio ID is required")
	case errors.Is(err, ErrStudioNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Studio not found")
	default:
		_ = c.Error(err)
		response.ErrorWithDetails(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to "+action+" studio", err.Error())
	}
}
