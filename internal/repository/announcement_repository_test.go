package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/campus-info-api/internal/models"
)

func TestAnnouncementRepositoryListRanksPriority(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAnnouncementRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "title", "content", "audience", "target_section", "priority", "is_pinned", "published_at", "expires_at", "created_by", "created_at", "updated_at"}).
		AddRow("a1", "Typhoon signal", "Classes suspended", "ALL", nil, "HIGH", false, now, nil, "admin-1", now, now).
		AddRow("a2", "Enrollment window", "Opens Monday", "ALL", nil, "NORMAL", false, now, nil, "admin-1", now, now).
		AddRow("a3", "Lost and found", "Claim at registrar", "ALL", nil, "LOW", false, now, nil, "admin-1", now, now)

	// The priority column is text, so ordering must go through the explicit
	// rank expression instead of a bare DESC on the column.
	mock.ExpectQuery("ORDER BY is_pinned DESC, CASE priority WHEN 'HIGH' THEN 0 WHEN 'NORMAL' THEN 1 ELSE 2 END, published_at DESC").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(rows)
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	announcements, total, err := repo.List(context.Background(), models.AnnouncementFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, announcements, 3)
	assert.Equal(t, models.AnnouncementPriorityHigh, announcements[0].Priority)
	assert.Equal(t, models.AnnouncementPriorityLow, announcements[2].Priority)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAnnouncementRepositoryListSectionFilter(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAnnouncementRepository(db)

	now := time.Now()
	section := "3A"
	rows := sqlmock.NewRows([]string{"id", "title", "content", "audience", "target_section", "priority", "is_pinned", "published_at", "expires_at", "created_by", "created_at", "updated_at"}).
		AddRow("a1", "Section advisory", "Room change", "SECTION", &section, "NORMAL", false, now, nil, "admin-1", now, now)

	mock.ExpectQuery(`audience <> 'SECTION' OR target_section = \$1`).
		WithArgs("3A", sqlmock.AnyArg()).
		WillReturnRows(rows)
	mock.ExpectQuery("SELECT COUNT").
		WithArgs("3A", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	announcements, total, err := repo.List(context.Background(), models.AnnouncementFilter{
		Audiences: []models.AnnouncementAudience{models.AnnouncementAudienceStudents},
		Section:   "3A",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, announcements, 1)
	require.NotNil(t, announcements[0].TargetSection)
	assert.Equal(t, "3A", *announcements[0].TargetSection)
	require.NoError(t, mock.ExpectationsWereMet())
}
