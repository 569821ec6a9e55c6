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

type scheduleService interface {
	Upload(ctx context.Context, actorID string, actorRole models.UserRole, req dto.UploadScheduleRequest) (*models.StudentSchedule, error)
	GetByStudent(ctx context.Context, actorID string, actorRole models.UserRole, studentID string) (*models.StudentSchedule, error)
	Delete(ctx context.Context, actorID string, actorRole models.UserRole, studentID string) error
	List(ctx context.Context, filter models.ScheduleFilter) ([]models.StudentSchedule, *models.Pagination, error)
}

// ScheduleHandler exposes student schedule CRUD.
type ScheduleHandler struct {
	schedules scheduleService
}

// NewScheduleHandler constructs the handler.
func NewScheduleHandler(schedules scheduleService) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules}
}

// Upload godoc
// @Summary Upload or replace a student schedule
// @Tags schedules
// @Accept json
// @Produce json
// @Param payload body dto.UploadScheduleRequest true "Schedule payload"
// @Success 201 {object} response.Envelope
// @Router /schedules [post]
func (h *ScheduleHandler) Upload(c *gin.Context) {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.UploadScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}

	schedule, err := h.schedules.Upload(c.Request.Context(), claims.UserID, claims.Role, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, schedule)
}

// GetMine godoc
// @Summary Get the caller's own schedule
// @Tags schedules
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /schedules/me [get]
func (h *ScheduleHandler) GetMine(c *gin.Context) {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	schedule, err := h.schedules.GetByStudent(c.Request.Context(), claims.UserID, claims.Role, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// List godoc
// @Summary List schedules with optional filters
// @Tags schedules
// @Produce json
// @Param semester query string false "Semester"
// @Param school_year query string false "School year"
// @Param course query string false "Course"
// @Param section query string false "Section"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /schedules [get]
func (h *ScheduleHandler) List(c *gin.Context) {
	filter := models.ScheduleFilter{
		Semester:   c.Query("semester"),
		SchoolYear: c.Query("school_year"),
		Course:     c.Query("course"),
		Section:    c.Query("section"),
	}
	filter.Page, _ = strconv.Atoi(c.Query("page"))
	filter.PageSize, _ = strconv.Atoi(c.Query("page_size"))

	schedules, pagination, err := h.schedules.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedules, pagination)
}

// GetByStudent godoc
// @Summary Get a student's schedule
// @Tags schedules
// @Produce json
// @Param studentID path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /schedules/{studentID} [get]
func (h *ScheduleHandler) GetByStudent(c *gin.Context) {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	schedule, err := h.schedules.GetByStudent(c.Request.Context(), claims.UserID, claims.Role, c.Param("studentID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// Delete godoc
// @Summary Delete a student's schedule
// @Tags schedules
// @Param studentID path string true "Student ID"
// @Success 204
// @Router /schedules/{studentID} [delete]
func (h *ScheduleHandler) Delete(c *gin.Context) {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.schedules.Delete(c.Request.Context(), claims.UserID, claims.Role, c.Param("studentID")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
