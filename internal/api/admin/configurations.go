// configurations.go implements the configuration and extension endpoints.
package admin

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codecentric/c4-genai-suite/backend/internal/audit"
	"github.com/codecentric/c4-genai-suite/backend/internal/domain/extensions"
)

// ConfigurationService runs the configuration and extension commands
type ConfigurationService interface {
	CreateConfiguration(ctx context.Context, values extensions.ConfigurationValues, by audit.PerformedBy) (*extensions.ConfigurationView, error)
	UpdateConfiguration(ctx context.Context, id int64, values extensions.ConfigurationValues, by audit.PerformedBy) (*extensions.ConfigurationView, error)
	DeleteConfiguration(ctx context.Context, id int64, by audit.PerformedBy) error
	GetConfigurations(ctx context.Context, enabledOnly bool) ([]*extensions.ConfigurationView, error)
	GetConfiguration(ctx context.Context, id int64) (*extensions.ConfigurationView, error)
	DuplicateConfiguration(ctx context.Context, id int64, by audit.PerformedBy) (*extensions.ConfigurationView, error)
	ExportConfiguration(ctx context.Context, id int64) (*extensions.PortableConfiguration, error)
	ImportConfiguration(ctx context.Context, data extensions.PortableConfiguration, by audit.PerformedBy) (*extensions.ImportResult, error)
	GetBucketAvailability(ctx context.Context, id int64, bucketType string) (*extensions.BucketAvailability, error)

	CreateExtension(ctx context.Context, configurationID int64, values extensions.CreateExtensionValues, by audit.PerformedBy) (*extensions.ExtensionView, error)
	UpdateExtension(ctx context.Context, id int64, values extensions.UpdateExtensionValues, by audit.PerformedBy) (*extensions.ExtensionView, error)
	DeleteExtension(ctx context.Context, id int64, by audit.PerformedBy) error
	GetExtensions(ctx context.Context, configurationID int64) ([]*extensions.ExtensionView, error)
	ListSpecs() []extensions.Provider
}

// ConfigurationHandlers handles /configurations, /extensions and /extension-specs
type ConfigurationHandlers struct {
	svc ConfigurationService
}

// NewConfigurationHandlers creates the configuration handlers
func NewConfigurationHandlers(svc ConfigurationService) *ConfigurationHandlers {
	return &ConfigurationHandlers{svc: svc}
}

// @Summary      List configurations
// @Tags         Configurations
// @Security     Bearer
// @Produce      json
// @Param        enabled  query  bool  false  "Only enabled configurations"
// @Success      200  {object}  map[string]interface{}  "items: []ConfigurationView"
// @Router       /api/v1/configurations [get]
func (h *ConfigurationHandlers) ListConfigurations(c *gin.Context) {
	items, err := h.svc.GetConfigurations(c.Request.Context(), c.Query("enabled") == "true")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse[*extensions.ConfigurationView]{Items: items})
}

// GetConfiguration returns one configuration
// GET /api/v1/configurations/:id
func (h *ConfigurationHandlers) GetConfiguration(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	view, err := h.svc.GetConfiguration(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary      Create configuration
// @Description  Creates a configuration. It stays disabled unless enabled is true.
// @Tags         Configurations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Success      201  {object}  extensions.ConfigurationView
// @Failure      400  {object}  map[string]interface{}  "Validation failed"
// @Router       /api/v1/configurations [post]
func (h *ConfigurationHandlers) CreateConfiguration(c *gin.Context) {
	by, ok := actor(c)
	if !ok {
		return
	}
	var values extensions.ConfigurationValues
	if err := c.ShouldBindJSON(&values); err != nil {
		invalidBody(c, err)
		return
	}

	view, err := h.svc.CreateConfiguration(c.Request.Context(), values, by)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// UpdateConfiguration applies a partial update
// PUT /api/v1/configurations/:id
func (h *ConfigurationHandlers) UpdateConfiguration(c *gin.Context) {
	by, ok := actor(c)
	if !ok {
		return
	}
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	var values extensions.ConfigurationValues
	if err := c.ShouldBindJSON(&values); err != nil {
		invalidBody(c, err)
		return
	}

	view, err := h.svc.UpdateConfiguration(c.Request.Context(), id, values, by)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// DeleteConfiguration deletes a configuration, or marks it deleted while
// conversations still refer to it
// DELETE /api/v1/configurations/:id
func (h *ConfigurationHandlers) DeleteConfiguration(c *gin.Context) {
	by, ok := actor(c)
	if !ok {
		return
	}
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteConfiguration(c.Request.Context(), id, by); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DuplicateConfiguration copies a configuration with its extensions
// POST /api/v1/configurations/duplicate/:id
func (h *ConfigurationHandlers) DuplicateConfiguration(c *gin.Context) {
	by, ok := actor(c)
	if !ok {
		return
	}
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	view, err := h.svc.DuplicateConfiguration(c.Request.Context(), id, by)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// @Summary      Export configuration
// @Description  Downloads a configuration with its extensions as JSON for ImportConfiguration. Extension secrets are included in plaintext.
// @Tags         Configurations
// @Security     Bearer
// @Produce      json
// @Param        id  path  int  true  "Configuration ID"
// @Success      200  {object}  extensions.PortableConfiguration
// @Failure      404  {object}  map[string]interface{}  "Configuration not found"
// @Router       /api/v1/configurations/{id}/export [get]
func (h *ConfigurationHandlers) ExportConfiguration(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	portable, err := h.svc.ExportConfiguration(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="configuration_%d.json"`, id))
	c.JSON(http.StatusOK, portable)
}

// ImportConfiguration creates a configuration from an export
// POST /api/v1/configurations/import
func (h *ConfigurationHandlers) ImportConfiguration(c *gin.Context) {
	by, ok := actor(c)
	if !ok {
		return
	}
	var data extensions.PortableConfiguration
	if err := c.ShouldBindJSON(&data); err != nil {
		invalidBody(c, err)
		return
	}
	result, err := h.svc.ImportConfiguration(c.Request.Context(), data, by)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// GetBucketAvailability tells whether the configuration offers a user or
// conversation bucket
// GET /api/v1/configurations/:id/checkBucketAvailability/:type
func (h *ConfigurationHandlers) GetBucketAvailability(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	availability, err := h.svc.GetBucketAvailability(c.Request.Context(), id, c.Param("type"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, availability)
}

// ListExtensions returns the extensions of a configuration
// GET /api/v1/configurations/:id/extensions
func (h *ConfigurationHandlers) ListExtensions(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	items, err := h.svc.GetExtensions(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse[*extensions.ExtensionView]{Items: items})
}

// CreateExtension attaches an extension to a configuration
// POST /api/v1/configurations/:id/extensions
func (h *ConfigurationHandlers) CreateExtension(c *gin.Context) {
	by, ok := actor(c)
	if !ok {
		return
	}
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	var values extensions.CreateExtensionValues
	if err := c.ShouldBindJSON(&values); err != nil {
		invalidBody(c, err)
		return
	}

	view, err := h.svc.CreateExtension(c.Request.Context(), id, values, by)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// UpdateExtension merges new values into an extension
// PUT /api/v1/extensions/:id
func (h *ConfigurationHandlers) UpdateExtension(c *gin.Context) {
	by, ok := actor(c)
	if !ok {
		return
	}
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	var values extensions.UpdateExtensionValues
	if err := c.ShouldBindJSON(&values); err != nil {
		invalidBody(c, err)
		return
	}

	view, err := h.svc.UpdateExtension(c.Request.Context(), id, values, by)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// DeleteExtension removes an extension
// DELETE /api/v1/extensions/:id
func (h *ConfigurationHandlers) DeleteExtension(c *gin.Context) {
	by, ok := actor(c)
	if !ok {
		return
	}
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteExtension(c.Request.Context(), id, by); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListSpecs returns every known extension provider with its argument schema
// GET /api/v1/extension-specs
func (h *ConfigurationHandlers) ListSpecs(c *gin.Context) {
	c.JSON(http.StatusOK, listResponse[extensions.Provider]{Items: h.svc.ListSpecs()})
}
