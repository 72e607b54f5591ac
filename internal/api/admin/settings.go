package admin

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codecentric/c4-genai-suite/backend/internal/audit"
	"github.com/codecentric/c4-genai-suite/backend/internal/domain/settings"
)

// SettingsService reads and updates the global settings
type SettingsService interface {
	GetSettings(ctx context.Context) (*settings.View, error)
	UpdateSettings(ctx context.Context, values settings.Values, by audit.PerformedBy) (*settings.View, error)
}

// SettingsHandlers handles /settings
type SettingsHandlers struct {
	svc SettingsService
}

// NewSettingsHandlers creates the settings handlers
func NewSettingsHandlers(svc SettingsService) *SettingsHandlers {
	return &SettingsHandlers{svc: svc}
}

// GetSettings returns the settings
// GET /api/v1/settings
func (h *SettingsHandlers) GetSettings(c *gin.Context) {
	view, err := h.svc.GetSettings(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// UpdateSettings applies a partial update; null clears a field
// PUT /api/v1/settings
func (h *SettingsHandlers) UpdateSettings(c *gin.Context) {
	by, ok := actor(c)
	if !ok {
		return
	}
	var values settings.Values
	if err := c.ShouldBindJSON(&values); err != nil {
		invalidBody(c, err)
		return
	}

	view, err := h.svc.UpdateSettings(c.Request.Context(), values, by)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
