package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuskit/campus-info-api/internal/dto"
	"github.com/campuskit/campus-info-api/internal/middleware"
	appErrors "github.com/campuskit/campus-info-api/pkg/errors"
	"github.com/campuskit/campus-info-api/pkg/response"
)

type configurationService interface {
	List(ctx context.Context) ([]dto.ConfigurationItem, error)
	Get(ctx context.Context, key string) (*dto.ConfigurationItem, error)
	Update(ctx context.Context, actorID string, req dto.UpdateConfigurationRequest) (*dto.ConfigurationItem, error)
	BulkUpdate(ctx context.Context, actorID string, req dto.BulkUpdateConfigurationRequest) error
}

// ConfigurationHandler exposes runtime configuration. Admin only.
type ConfigurationHandler struct {
	configurations configurationService
}

// NewConfigurationHandler constructs the handler.
func NewConfigurationHandler(configurations configurationService) *ConfigurationHandler {
	return &ConfigurationHandler{configurations: configurations}
}

// List godoc
// @Summary List configuration entries
// @Tags configurations
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /configurations [get]
func (h *ConfigurationHandler) List(c *gin.Context) {
	items, err := h.configurations.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Get godoc
// @Summary Get one configuration entry
// @Tags configurations
// @Produce json
// @Param key path string true "Configuration key"
// @Success 200 {object} response.Envelope
// @Router /configurations/{key} [get]
func (h *ConfigurationHandler) Get(c *gin.Context) {
	item, err := h.configurations.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Update godoc
// @Summary Update one configuration value
// @Tags configurations
// @Accept json
// @Produce json
// @Param payload body dto.UpdateConfigurationRequest true "Configuration update"
// @Success 200 {object} response.Envelope
// @Router /configurations [put]
func (h *ConfigurationHandler) Update(c *gin.Context) {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.UpdateConfigurationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	item, err := h.configurations.Update(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// BulkUpdate godoc
// @Summary Update several configuration values atomically
// @Tags configurations
// @Accept json
// @Param payload body dto.BulkUpdateConfigurationRequest true "Configuration updates"
// @Success 204
// @Router /configurations/bulk [put]
func (h *ConfigurationHandler) BulkUpdate(c *gin.Context) {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.BulkUpdateConfigurationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	if err := h.configurations.BulkUpdate(c.Request.Context(), claims.UserID, req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
