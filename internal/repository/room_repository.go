package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campuskit/campus-info-api/internal/models"
)

// RoomRepository persists canonical rooms and their periods.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository constructs the repository.
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// ListRooms returns every canonical room. The tracker resolves human-entered
// names against this full set in memory.
func (r *RoomRepository) ListRooms(ctx context.Context) ([]models.Room, error) {
	const query = `SELECT id, name, building, created_at FROM rooms ORDER BY name ASC`
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

// FindRoomByID fetches one room.
func (r *RoomRepository) FindRoomByID(ctx context.Context, id string) (*models.Room, error) {
	const query = `SELECT id, name, building, created_at FROM rooms WHERE id = $1`
	var room models.Room
	if err := r.db.GetContext(ctx, &room, query, id); err != nil {
		return nil, err
	}
	return &room, nil
}

// CreateRoom registers a canonical room.
func (r *RoomRepository) CreateRoom(ctx context.Context, room *models.Room) error {
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO rooms (id, name, building, created_at) VALUES (:id, :name, :building, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, room); err != nil {
		return fmt.Errorf("create room: %w", err)
	}
	return nil
}

// ListPeriods returns all periods of a kind across every room.
func (r *RoomRepository) ListPeriods(ctx context.Context, kind models.PeriodKind) ([]models.RoomPeriod, error) {
	const query = `SELECT id, room_id, kind, day_of_week, start_minute, end_minute, label, week_key, created_at
FROM room_periods WHERE kind = $1 ORDER BY room_id ASC, day_of_week ASC, start_minute ASC`
	var periods []models.RoomPeriod
	if err := r.db.SelectContext(ctx, &periods, query, kind); err != nil {
		return nil, fmt.Errorf("list room periods: %w", err)
	}
	return periods, nil
}

// ListPeriodsByRoom returns every period attached to one room.
func (r *RoomRepository) ListPeriodsByRoom(ctx context.Context, roomID string) ([]models.RoomPeriod, error) {
	const query = `SELECT id, room_id, kind, day_of_week, start_minute, end_minute, label, week_key, created_at
FROM room_periods WHERE room_id = $1 ORDER BY day_of_week ASC, start_minute ASC`
	var periods []models.RoomPeriod
	if err := r.db.SelectContext(ctx, &periods, query, roomID); err != nil {
		return nil, fmt.Errorf("list periods by room: %w", err)
	}
	return periods, nil
}

// InsertPeriod appends a period entry.
func (r *RoomRepository) InsertPeriod(ctx context.Context, period *models.RoomPeriod) error {
	if period.ID == "" {
		period.ID = uuid.NewString()
	}
	if period.CreatedAt.IsZero() {
		period.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO room_periods (id, room_id, kind, day_of_week, start_minute, end_minute, label, week_key, created_at)
VALUES (:id, :room_id, :kind, :day_of_week, :start_minute, :end_minute, :label, :week_key, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, period); err != nil {
		return fmt.Errorf("insert room period: %w", err)
	}
	return nil
}

// DeletePeriodByKey removes periods matching the exact (day, start, end) key.
// Overlapping-but-different periods are left alone.
func (r *RoomRepository) DeletePeriodByKey(ctx context.Context, roomID string, kind models.PeriodKind, day string, startMinute, endMinute int) error {
	const query = `DELETE FROM room_periods WHERE room_id = $1 AND kind = $2 AND day_of_week = $3 AND start_minute = $4 AND end_minute = $5`
	result, err := r.db.ExecContext(ctx, query, roomID, kind, day, startMinute, endMinute)
	if err != nil {
		return fmt.Errorf("delete room period: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete room period: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteExpiredVacancies clears vacancy rows recorded before the given week.
func (r *RoomRepository) DeleteExpiredVacancies(ctx context.Context, currentWeekKey string) (int64, error) {
	const query = `DELETE FROM room_periods WHERE kind = $1 AND week_key IS NOT NULL AND week_key <> $2`
	result, err := r.db.ExecContext(ctx, query, models.PeriodVacancy, currentWeekKey)
	if err != nil {
		return 0, fmt.Errorf("delete expired vacancies: %w", err)
	}
	return result.RowsAffected()
}
