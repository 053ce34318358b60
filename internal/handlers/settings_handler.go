package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/uniconnect/uniconnect-api/internal/models"
	"github.com/uniconnect/uniconnect-api/internal/services"
)

// SettingsHandler handles the site settings endpoints
type SettingsHandler struct {
	service services.SettingsServiceInterface
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(service services.SettingsServiceInterface) *SettingsHandler {
	return &SettingsHandler{service: service}
}

// GetPublicSettings handles GET /api/v1/settings
func (h *SettingsHandler) GetPublicSettings(c *gin.Context) {
	settings, err := h.service.Get(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to fetch settings", err)
		return
	}

	c.JSON(http.StatusOK, settings.ToPublicResponse())
}

// GetSettings handles GET /api/v1/admin/settings
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	settings, err := h.service.Get(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to fetch settings", err)
		return
	}

	c.JSON(http.StatusOK, settings)
}

// UpdateSettings handles PATCH /api/v1/admin/settings
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var update models.SettingsUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Invalid request body", gin.H{"message": err.Error()}, err)
		return
	}

	settings, err := h.service.Patch(c.Request.Context(), &update)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, settings)
}
