package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campuskit/campus-info-api/internal/dto"
	"github.com/campuskit/campus-info-api/internal/middleware"
	"github.com/campuskit/campus-info-api/internal/models"
	appErrors "github.com/campuskit/campus-info-api/pkg/errors"
	"github.com/campuskit/campus-info-api/pkg/response"
)

type facultyScheduleService interface {
	Derive(ctx context.Context, facultyID string, includeUnvalidated bool) (*dto.FacultyScheduleResponse, error)
}

// FacultyScheduleHandler serves the derived faculty schedule. The schedule is
// computed on every request; it is never stored.
type FacultyScheduleHandler struct {
	derivation facultyScheduleService
}

// NewFacultyScheduleHandler constructs the handler.
func NewFacultyScheduleHandler(derivation facultyScheduleService) *FacultyScheduleHandler {
	return &FacultyScheduleHandler{derivation: derivation}
}

// GetMine godoc
// @Summary Derive the caller's teaching schedule
// @Tags faculty
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /faculty/schedule [get]
func (h *FacultyScheduleHandler) GetMine(c *gin.Context) {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	derived, err := h.derivation.Derive(c.Request.Context(), claims.UserID, false)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, derived, nil)
}

// GetByFaculty godoc
// @Summary Derive a faculty member's teaching schedule
// @Tags faculty
// @Produce json
// @Param facultyID path string true "Faculty ID"
// @Param include_unvalidated query bool false "Include classes below the threshold"
// @Success 200 {object} response.Envelope
// @Router /faculty/{facultyID}/schedule [get]
func (h *FacultyScheduleHandler) GetByFaculty(c *gin.Context) {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	// Below-threshold classes are an administrative review tool.
	includeUnvalidated := false
	if claims.Role == models.RoleAdmin {
		includeUnvalidated, _ = strconv.ParseBool(c.Query("include_unvalidated"))
	}

	derived, err := h.derivation.Derive(c.Request.Context(), c.Param("facultyID"), includeUnvalidated)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, derived, nil)
}
