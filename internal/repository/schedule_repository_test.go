package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/campus-info-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func TestScheduleRepositoryGetByStudent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	scheduleRows := sqlmock.NewRows([]string{"id", "student_id", "course", "year_level", "section", "semester", "school_year", "created_at", "updated_at"}).
		AddRow("sched-1", "stu-1", "BSIT", "3", "3A", "1st", "2026-2027", time.Now(), time.Now())
	mock.ExpectQuery("SELECT id, student_id").
		WithArgs("stu-1").
		WillReturnRows(scheduleRows)

	slotRows := sqlmock.NewRows([]string{"id", "schedule_id", "subject", "day_of_week", "start_time", "end_time", "room", "professor_name"}).
		AddRow("slot-1", "sched-1", "Math 101", "Monday", "08:00", "09:30", "RM 9", "Juan Cruz")
	mock.ExpectQuery("SELECT id, schedule_id").
		WithArgs("sched-1").
		WillReturnRows(slotRows)

	schedule, err := repo.GetByStudent(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Equal(t, "sched-1", schedule.ID)
	require.Len(t, schedule.Slots, 1)
	assert.Equal(t, "Math 101", schedule.Slots[0].Subject)
}

func TestScheduleRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO student_schedules").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT id FROM student_schedules").
		WithArgs("stu-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("sched-1"))
	mock.ExpectExec("DELETE FROM class_slots").
		WithArgs("sched-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO class_slots").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	schedule := &models.StudentSchedule{
		StudentID:  "stu-1",
		Course:     "BSIT",
		YearLevel:  "3",
		Section:    "3A",
		Semester:   "1st",
		SchoolYear: "2026-2027",
		Slots: []models.ClassSlot{
			{Subject: "Math 101", DayOfWeek: "Monday", StartTime: "08:00", EndTime: "09:30"},
		},
	}
	require.NoError(t, repo.Upsert(context.Background(), schedule))
	assert.Equal(t, "sched-1", schedule.ID)
	assert.Equal(t, "sched-1", schedule.Slots[0].ScheduleID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryUpsertRollsBackOnSlotError(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO student_schedules").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT id FROM student_schedules").
		WithArgs("stu-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("sched-1"))
	mock.ExpectExec("DELETE FROM class_slots").
		WithArgs("sched-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO class_slots").
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	schedule := &models.StudentSchedule{
		StudentID: "stu-1",
		Slots:     []models.ClassSlot{{Subject: "Math 101"}},
	}
	err := repo.Upsert(context.Background(), schedule)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryDeleteByStudentNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectExec("DELETE FROM student_schedules").
		WithArgs("stu-404").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteByStudent(context.Background(), "stu-404")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestScheduleRepositoryDeleteByIDs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectExec("DELETE FROM student_schedules WHERE id IN").
		WithArgs("a", "b", "c").
		WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, repo.DeleteByIDs(context.Background(), []string{"a", "b", "c"}))

	// Empty batches never touch the database.
	require.NoError(t, repo.DeleteByIDs(context.Background(), nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryListAggregationSlots(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	rows := sqlmock.NewRows([]string{"schedule_id", "student_id", "section", "subject", "day_of_week", "start_time", "end_time", "room", "professor_name"}).
		AddRow("sched-1", "stu-1", "3A", "Math 101", "Monday", "8:00", "9:30", "RM 9", "Juan Cruz").
		AddRow("sched-2", "stu-2", "3B", "Math 101", "Monday", "08:00", "09:30", "RM 9", "juan dela cruz")
	mock.ExpectQuery("SELECT cs.schedule_id").WillReturnRows(rows)

	slots, err := repo.ListAggregationSlots(context.Background())
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "stu-2", slots[1].StudentID)
}
