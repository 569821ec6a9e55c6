package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campuskit/campus-info-api/internal/dto"
	"github.com/campuskit/campus-info-api/internal/models"
	appErrors "github.com/campuskit/campus-info-api/pkg/errors"
)

type scheduleStore interface {
	GetByStudent(ctx context.Context, studentID string) (*models.StudentSchedule, error)
	Upsert(ctx context.Context, schedule *models.StudentSchedule) error
	DeleteByStudent(ctx context.Context, studentID string) error
	List(ctx context.Context, filter models.ScheduleFilter) ([]models.StudentSchedule, int, error)
}

type auditRecorder interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// ScheduleService handles student schedule uploads and lookups. An upload
// replaces the student's schedule wholesale; there is no per-slot editing.
type ScheduleService struct {
	store    scheduleStore
	audit    auditRecorder
	validate *validator.Validate
	logger   *zap.Logger
}

// NewScheduleService constructs the service.
func NewScheduleService(store scheduleStore, audit auditRecorder, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{store: store, audit: audit, validate: validate, logger: logger}
}

// Upload validates and stores a student's schedule. Students may only upload
// their own; admins may upload on anyone's behalf.
func (s *ScheduleService) Upload(ctx context.Context, actorID string, actorRole models.UserRole, req dto.UploadScheduleRequest) (*models.StudentSchedule, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}
	if actorRole == models.RoleStudent && req.StudentID != actorID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "students may only manage their own schedule")
	}

	slots := make([]models.ClassSlot, 0, len(req.Slots))
	for i, payload := range req.Slots {
		slot, err := normalizeSlot(payload)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("slot %d: %v", i+1, err))
		}
		slots = append(slots, slot)
	}

	schedule := &models.StudentSchedule{
		StudentID:  req.StudentID,
		Course:     req.Course,
		YearLevel:  req.YearLevel,
		Section:    req.Section,
		Semester:   req.Semester,
		SchoolYear: req.SchoolYear,
		Slots:      slots,
	}
	if err := s.store.Upsert(ctx, schedule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save schedule")
	}

	s.emitAudit(ctx, actorID, models.AuditActionScheduleUpload, schedule.ID, schedule)
	return schedule, nil
}

// GetByStudent returns a student's schedule. Students can only read their
// own; faculty and admins can read any.
func (s *ScheduleService) GetByStudent(ctx context.Context, actorID string, actorRole models.UserRole, studentID string) (*models.StudentSchedule, error) {
	if actorRole == models.RoleStudent && studentID != actorID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "students may only view their own schedule")
	}
	schedule, err := s.store.GetByStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	return schedule, nil
}

// Delete removes a student's schedule.
func (s *ScheduleService) Delete(ctx context.Context, actorID string, actorRole models.UserRole, studentID string) error {
	if actorRole == models.RoleStudent && studentID != actorID {
		return appErrors.Clone(appErrors.ErrForbidden, "students may only manage their own schedule")
	}
	if err := s.store.DeleteByStudent(ctx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete schedule")
	}
	s.emitAudit(ctx, actorID, models.AuditActionScheduleDelete, studentID, nil)
	return nil
}

// List returns schedule metadata matching the filter, paginated. Admin use.
func (s *ScheduleService) List(ctx context.Context, filter models.ScheduleFilter) ([]models.StudentSchedule, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 50
	}
	schedules, total, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedules")
	}
	pagination := &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	}
	return schedules, pagination, nil
}

// normalizeSlot canonicalizes day names and zero-pads clock values so the
// aggregator can group on string equality.
func normalizeSlot(payload dto.ClassSlotPayload) (models.ClassSlot, error) {
	day := canonicalDay(payload.DayOfWeek)
	if dayIndex(day) >= len(dayNames) {
		return models.ClassSlot{}, fmt.Errorf("unknown day of week %q", payload.DayOfWeek)
	}
	start, err := parseClockMinutes(payload.StartTime)
	if err != nil {
		return models.ClassSlot{}, fmt.Errorf("invalid start time %q", payload.StartTime)
	}
	end, err := parseClockMinutes(payload.EndTime)
	if err != nil {
		return models.ClassSlot{}, fmt.Errorf("invalid end time %q", payload.EndTime)
	}
	if start >= end {
		return models.ClassSlot{}, fmt.Errorf("start time %s must be before end time %s", payload.StartTime, payload.EndTime)
	}
	return models.ClassSlot{
		Subject:       payload.Subject,
		DayOfWeek:     day,
		StartTime:     NormalizeClock(payload.StartTime),
		EndTime:       NormalizeClock(payload.EndTime),
		Room:          payload.Room,
		ProfessorName: payload.ProfessorName,
	}, nil
}

func (s *ScheduleService) emitAudit(ctx context.Context, actorID, action, resourceID string, newValue interface{}) {
	if s.audit == nil {
		return
	}
	var newValues []byte
	if newValue != nil {
		if raw, err := json.Marshal(newValue); err == nil {
			newValues = raw
		}
	}
	log := &models.AuditLog{
		UserID:     &actorID,
		Action:     action,
		Resource:   "student_schedule",
		ResourceID: &resourceID,
		NewValues:  newValues,
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to record audit log",
			zap.String("action", action),
			zap.Error(err))
	}
}
