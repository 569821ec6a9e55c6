package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/campus-info-api/internal/dto"
	"github.com/campuskit/campus-info-api/internal/models"
)

type mockScheduleStore struct {
	schedules map[string]*models.StudentSchedule
}

func (m *mockScheduleStore) GetByStudent(ctx context.Context, studentID string) (*models.StudentSchedule, error) {
	if schedule, ok := m.schedules[studentID]; ok {
		return schedule, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockScheduleStore) Upsert(ctx context.Context, schedule *models.StudentSchedule) error {
	if m.schedules == nil {
		m.schedules = make(map[string]*models.StudentSchedule)
	}
	schedule.ID = "sched-1"
	m.schedules[schedule.StudentID] = schedule
	return nil
}

func (m *mockScheduleStore) DeleteByStudent(ctx context.Context, studentID string) error {
	if _, ok := m.schedules[studentID]; !ok {
		return sql.ErrNoRows
	}
	delete(m.schedules, studentID)
	return nil
}

func (m *mockScheduleStore) List(ctx context.Context, filter models.ScheduleFilter) ([]models.StudentSchedule, int, error) {
	var out []models.StudentSchedule
	for _, schedule := range m.schedules {
		out = append(out, *schedule)
	}
	return out, len(out), nil
}

type mockAuditRecorder struct {
	logs []models.AuditLog
}

func (m *mockAuditRecorder) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.logs = append(m.logs, *log)
	return nil
}

func validUpload(studentID string) dto.UploadScheduleRequest {
	return dto.UploadScheduleRequest{
		StudentID:  studentID,
		Course:     "BSIT",
		YearLevel:  "3",
		Section:    "3A",
		Semester:   "1st",
		SchoolYear: "2026-2027",
		Slots: []dto.ClassSlotPayload{
			{Subject: "Math 101", DayOfWeek: "monday", StartTime: "8:00", EndTime: "9:30", Room: "RM 9", ProfessorName: "Juan Cruz"},
		},
	}
}

func TestUploadNormalizesSlots(t *testing.T) {
	store := &mockScheduleStore{}
	audit := &mockAuditRecorder{}
	svc := NewScheduleService(store, audit, nil, nil)

	schedule, err := svc.Upload(context.Background(), "stu-1", models.RoleStudent, validUpload("stu-1"))
	require.NoError(t, err)
	require.Len(t, schedule.Slots, 1)

	assert.Equal(t, "Monday", schedule.Slots[0].DayOfWeek)
	assert.Equal(t, "08:00", schedule.Slots[0].StartTime)
	assert.Equal(t, "09:30", schedule.Slots[0].EndTime)

	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionScheduleUpload, audit.logs[0].Action)
}

func TestUploadRejectsForeignStudent(t *testing.T) {
	svc := NewScheduleService(&mockScheduleStore{}, nil, nil, nil)

	_, err := svc.Upload(context.Background(), "stu-1", models.RoleStudent, validUpload("stu-2"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "their own schedule")

	// Admins may upload on a student's behalf.
	_, err = svc.Upload(context.Background(), "admin", models.RoleAdmin, validUpload("stu-2"))
	require.NoError(t, err)
}

func TestUploadRejectsBadSlots(t *testing.T) {
	svc := NewScheduleService(&mockScheduleStore{}, nil, nil, nil)

	req := validUpload("stu-1")
	req.Slots[0].DayOfWeek = "Someday"
	_, err := svc.Upload(context.Background(), "stu-1", models.RoleStudent, req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown day of week")

	req = validUpload("stu-1")
	req.Slots[0].StartTime = "9:30"
	req.Slots[0].EndTime = "8:00"
	_, err = svc.Upload(context.Background(), "stu-1", models.RoleStudent, req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "before end time")

	req = validUpload("stu-1")
	req.Slots = nil
	_, err = svc.Upload(context.Background(), "stu-1", models.RoleStudent, req)
	require.Error(t, err)
}

func TestGetByStudentOwnership(t *testing.T) {
	store := &mockScheduleStore{schedules: map[string]*models.StudentSchedule{
		"stu-1": {ID: "sched-1", StudentID: "stu-1"},
	}}
	svc := NewScheduleService(store, nil, nil, nil)

	_, err := svc.GetByStudent(context.Background(), "stu-2", models.RoleStudent, "stu-1")
	require.Error(t, err)

	schedule, err := svc.GetByStudent(context.Background(), "stu-1", models.RoleStudent, "stu-1")
	require.NoError(t, err)
	assert.Equal(t, "sched-1", schedule.ID)

	// Faculty can browse any schedule.
	_, err = svc.GetByStudent(context.Background(), "fac-1", models.RoleFaculty, "stu-1")
	require.NoError(t, err)
}

func TestDeleteMissingSchedule(t *testing.T) {
	svc := NewScheduleService(&mockScheduleStore{}, nil, nil, nil)
	err := svc.Delete(context.Background(), "stu-1", models.RoleStudent, "stu-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schedule not found")
}
