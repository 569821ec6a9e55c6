package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuskit/campus-info-api/internal/dto"
	"github.com/campuskit/campus-info-api/internal/middleware"
	"github.com/campuskit/campus-info-api/internal/models"
	appErrors "github.com/campuskit/campus-info-api/pkg/errors"
	"github.com/campuskit/campus-info-api/pkg/response"
)

type archiveService interface {
	ArchiveAndReset(ctx context.Context, actorID string, req dto.ArchiveResetRequest) (*dto.ArchiveResetResult, error)
	ResumeReset(ctx context.Context, actorID, archiveID string) (*dto.ArchiveResetResult, error)
	List(ctx context.Context) ([]models.ArchiveSnapshot, error)
	Get(ctx context.Context, id string) (*models.ArchiveSnapshot, error)
	Delete(ctx context.Context, actorID, id string) error
}

// ArchiveHandler exposes the end-of-semester archive-and-reset workflow.
// Admin only.
type ArchiveHandler struct {
	archives archiveService
}

// NewArchiveHandler constructs the handler.
func NewArchiveHandler(archives archiveService) *ArchiveHandler {
	return &ArchiveHandler{archives: archives}
}

// Reset godoc
// @Summary Archive all schedules and delete the live records
// @Tags archives
// @Accept json
// @Produce json
// @Param payload body dto.ArchiveResetRequest true "Rollover metadata"
// @Success 200 {object} response.Envelope
// @Success 409 {object} response.Envelope "Snapshot written but deletes incomplete"
// @Router /archives/reset [post]
func (h *ArchiveHandler) Reset(c *gin.Context) {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.ArchiveResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	if req.Semester == "" || req.SchoolYear == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "semester and school_year are required"))
		return
	}

	result, err := h.archives.ArchiveAndReset(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondResetResult(c, result)
}

// Resume godoc
// @Summary Resume an incomplete schedule reset
// @Tags archives
// @Produce json
// @Param id path string true "Archive ID"
// @Success 200 {object} response.Envelope
// @Router /archives/{id}/resume [post]
func (h *ArchiveHandler) Resume(c *gin.Context) {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	result, err := h.archives.ResumeReset(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respondResetResult(c, result)
}

// respondResetResult maps the reset status onto the HTTP code: a snapshot
// whose deletes did not finish answers 409 so the caller knows to resume.
func respondResetResult(c *gin.Context, result *dto.ArchiveResetResult) {
	status := http.StatusOK
	if result.ResetStatus != string(models.ResetStatusComplete) {
		status = http.StatusConflict
	}
	response.JSON(c, status, result, nil)
}

// List godoc
// @Summary List archive snapshots
// @Tags archives
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /archives [get]
func (h *ArchiveHandler) List(c *gin.Context) {
	snapshots, err := h.archives.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshots, nil)
}

// Get godoc
// @Summary Get one archive snapshot with payload
// @Tags archives
// @Produce json
// @Param id path string true "Archive ID"
// @Success 200 {object} response.Envelope
// @Router /archives/{id} [get]
func (h *ArchiveHandler) Get(c *gin.Context) {
	snapshot, err := h.archives.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshot, nil)
}

// Delete godoc
// @Summary Delete an archive snapshot
// @Tags archives
// @Param id path string true "Archive ID"
// @Success 204
// @Router /archives/{id} [delete]
func (h *ArchiveHandler) Delete(c *gin.Context) {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.archives.Delete(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
