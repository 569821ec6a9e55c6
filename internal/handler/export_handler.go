package handler

import (
	"context"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/campuskit/campus-info-api/internal/dto"
	"github.com/campuskit/campus-info-api/internal/middleware"
	"github.com/campuskit/campus-info-api/internal/models"
	appErrors "github.com/campuskit/campus-info-api/pkg/errors"
	"github.com/campuskit/campus-info-api/pkg/response"
)

type exportService interface {
	FacultySchedulePDF(ctx context.Context, facultyID string) (*dto.ExportResult, error)
	ArchiveCSV(ctx context.Context, archiveID string) (*dto.ExportResult, error)
	Resolve(token string) (*os.File, string, error)
}

// ExportHandler generates downloadable exports and serves them back through
// signed links.
type ExportHandler struct {
	exports exportService
}

// NewExportHandler constructs the handler.
func NewExportHandler(exports exportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// FacultySchedulePDF godoc
// @Summary Export a derived faculty schedule as PDF
// @Tags exports
// @Produce json
// @Param facultyID path string true "Faculty ID"
// @Success 200 {object} response.Envelope
// @Router /exports/faculty/{facultyID}/schedule [post]
func (h *ExportHandler) FacultySchedulePDF(c *gin.Context) {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	facultyID := c.Param("facultyID")
	if claims.Role == models.RoleFaculty && facultyID != claims.UserID {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "faculty may only export their own schedule"))
		return
	}
	result, err := h.exports.FacultySchedulePDF(c.Request.Context(), facultyID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ArchiveCSV godoc
// @Summary Export an archive snapshot as CSV
// @Tags exports
// @Produce json
// @Param id path string true "Archive ID"
// @Success 200 {object} response.Envelope
// @Router /exports/archives/{id} [post]
func (h *ExportHandler) ArchiveCSV(c *gin.Context) {
	result, err := h.exports.ArchiveCSV(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Download streams a previously generated export. The token itself is the
// authorization; no session is required.
func (h *ExportHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}
	file, filename, err := h.exports.Resolve(token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read export"))
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.DataFromReader(http.StatusOK, info.Size(), "application/octet-stream", file, nil)
}
