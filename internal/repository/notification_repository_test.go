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

func TestNotificationRepositoryExistsByDedupeKey(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("fac-1", "class_validated|Math 101|Monday|08:00|09:30").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByDedupeKey(context.Background(), "fac-1", "class_validated|Math 101|Monday|08:00|09:30")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestNotificationRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectExec("INSERT INTO notifications").
		WillReturnResult(sqlmock.NewResult(1, 1))

	key := "class_validated|Math 101|Monday|08:00|09:30"
	notification := &models.Notification{
		UserID:    "fac-1",
		Type:      models.NotificationClassValidated,
		Title:     "Class validated",
		DedupeKey: &key,
	}
	require.NoError(t, repo.Create(context.Background(), notification))
	assert.NotEmpty(t, notification.ID)
	assert.False(t, notification.CreatedAt.IsZero())
}

func TestNotificationRepositoryListByUser(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	rows := sqlmock.NewRows([]string{"id", "user_id", "type", "title", "body", "dedupe_key", "read", "created_at"}).
		AddRow("n1", "fac-1", "CLASS_VALIDATED", "Class validated", "body", nil, false, time.Now())
	// A non-positive limit falls back to the default page size.
	mock.ExpectQuery("SELECT id, user_id").
		WithArgs("fac-1", 50).
		WillReturnRows(rows)

	notifications, err := repo.ListByUser(context.Background(), "fac-1", 0)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Nil(t, notifications[0].DedupeKey)
}

func TestNotificationRepositoryMarkReadNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectExec("UPDATE notifications").
		WithArgs("n1", "someone-else").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkRead(context.Background(), "n1", "someone-else")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestNotificationRepositoryCountUnread(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("fac-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountUnread(context.Background(), "fac-1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
