package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campuskit/campus-info-api/internal/dto"
	"github.com/campuskit/campus-info-api/internal/middleware"
	"github.com/campuskit/campus-info-api/internal/models"
	appErrors "github.com/campuskit/campus-info-api/pkg/errors"
	"github.com/campuskit/campus-info-api/pkg/response"
)

type roomService interface {
	RegisterRoom(ctx context.Context, actorID string, room *models.Room) error
	ListRooms(ctx context.Context) ([]models.Room, error)
	AddPeriod(ctx context.Context, actorID string, kind models.PeriodKind, req dto.RoomPeriodRequest) ([]models.RoomPeriod, error)
	RemovePeriod(ctx context.Context, actorID string, kind models.PeriodKind, req dto.RoomPeriodRequest) error
	Status(ctx context.Context, at time.Time) ([]dto.RoomStatusItem, error)
	ListVacancies(ctx context.Context) ([]models.RoomPeriod, error)
}

// RoomHandler exposes the room vacancy tracker.
type RoomHandler struct {
	rooms roomService
}

// NewRoomHandler constructs the handler.
func NewRoomHandler(rooms roomService) *RoomHandler {
	return &RoomHandler{rooms: rooms}
}

type createRoomRequest struct {
	Name     string `json:"name" binding:"required"`
	Building string `json:"building"`
}

// Create godoc
// @Summary Register a canonical room
// @Tags rooms
// @Accept json
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /rooms [post]
func (h *RoomHandler) Create(c *gin.Context) {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	room := &models.Room{Name: req.Name, Building: req.Building}
	if err := h.rooms.RegisterRoom(c.Request.Context(), claims.UserID, room); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, room)
}

// List godoc
// @Summary List canonical rooms
// @Tags rooms
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /rooms [get]
func (h *RoomHandler) List(c *gin.Context) {
	rooms, err := h.rooms.ListRooms(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rooms, nil)
}

// Status godoc
// @Summary Report every room's vacancy state
// @Tags rooms
// @Produce json
// @Param at query string false "Instant to evaluate (RFC 3339); defaults to now"
// @Success 200 {object} response.Envelope
// @Router /rooms/status [get]
func (h *RoomHandler) Status(c *gin.Context) {
	var at time.Time
	if raw := c.Query("at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "at must be RFC 3339"))
			return
		}
		at = parsed
	}
	items, err := h.rooms.Status(c.Request.Context(), at)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Vacancies godoc
// @Summary List vacancy periods in effect this week
// @Tags rooms
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /rooms/vacancies [get]
func (h *RoomHandler) Vacancies(c *gin.Context) {
	vacancies, err := h.rooms.ListVacancies(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, vacancies, nil)
}

// AddVacancy marks rooms vacant for a period within the current week.
func (h *RoomHandler) AddVacancy(c *gin.Context) {
	h.addPeriod(c, models.PeriodVacancy)
}

// RemoveVacancy removes a vacancy period matching the exact time key.
func (h *RoomHandler) RemoveVacancy(c *gin.Context) {
	h.removePeriod(c, models.PeriodVacancy)
}

// AddOccupancy records a weekly recurring booking.
func (h *RoomHandler) AddOccupancy(c *gin.Context) {
	h.addPeriod(c, models.PeriodOccupancy)
}

// RemoveOccupancy removes a recurring booking matching the exact time key.
func (h *RoomHandler) RemoveOccupancy(c *gin.Context) {
	h.removePeriod(c, models.PeriodOccupancy)
}

func (h *RoomHandler) addPeriod(c *gin.Context, kind models.PeriodKind) {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.RoomPeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	periods, err := h.rooms.AddPeriod(c.Request.Context(), claims.UserID, kind, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, periods)
}

func (h *RoomHandler) removePeriod(c *gin.Context, kind models.PeriodKind) {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.RoomPeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	if err := h.rooms.RemovePeriod(c.Request.Context(), claims.UserID, kind, req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
