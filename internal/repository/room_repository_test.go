package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/campus-info-api/internal/models"
)

func TestRoomRepositoryListRooms(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "building", "created_at"}).
		AddRow("r1", "CL3", "Main", time.Now()).
		AddRow("r2", "RM 9", "Main", time.Now())
	mock.ExpectQuery("SELECT id, name, building").WillReturnRows(rows)

	rooms, err := repo.ListRooms(context.Background())
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, "CL3", rooms[0].Name)
}

func TestRoomRepositoryInsertPeriod(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectExec("INSERT INTO room_periods").
		WillReturnResult(sqlmock.NewResult(1, 1))

	week := "2026-W36"
	period := &models.RoomPeriod{
		RoomID:      "r1",
		Kind:        models.PeriodVacancy,
		DayOfWeek:   "Wednesday",
		StartMinute: 540,
		EndMinute:   660,
		Label:       "Class suspended",
		WeekKey:     &week,
	}
	require.NoError(t, repo.InsertPeriod(context.Background(), period))
	assert.NotEmpty(t, period.ID)
}

func TestRoomRepositoryDeletePeriodByKeyNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectExec("DELETE FROM room_periods").
		WithArgs("r1", models.PeriodOccupancy, "Monday", 480, 540).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeletePeriodByKey(context.Background(), "r1", models.PeriodOccupancy, "Monday", 480, 540)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestRoomRepositoryDeleteExpiredVacancies(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectExec("DELETE FROM room_periods WHERE kind").
		WithArgs(models.PeriodVacancy, "2026-W36").
		WillReturnResult(sqlmock.NewResult(0, 4))

	deleted, err := repo.DeleteExpiredVacancies(context.Background(), "2026-W36")
	require.NoError(t, err)
	assert.Equal(t, int64(4), deleted)
}
