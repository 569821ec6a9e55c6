package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campuskit/campus-info-api/internal/models"
)

// ScheduleRepository persists student schedules and their class slots.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository constructs the repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// GetByStudent returns the schedule owned by a student, slots included.
func (r *ScheduleRepository) GetByStudent(ctx context.Context, studentID string) (*models.StudentSchedule, error) {
	const query = `SELECT id, student_id, course, year_level, section, semester, school_year, created_at, updated_at
FROM student_schedules WHERE student_id = $1`
	var schedule models.StudentSchedule
	if err := r.db.GetContext(ctx, &schedule, query, studentID); err != nil {
		return nil, err
	}
	slots, err := r.listSlots(ctx, schedule.ID)
	if err != nil {
		return nil, err
	}
	schedule.Slots = slots
	return &schedule, nil
}

// Upsert replaces the student's schedule and slots within one transaction.
func (r *ScheduleRepository) Upsert(ctx context.Context, schedule *models.StudentSchedule) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schedule tx: %w", err)
	}
	now := time.Now().UTC()
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	if schedule.CreatedAt.IsZero() {
		schedule.CreatedAt = now
	}
	schedule.UpdatedAt = now

	const upsert = `INSERT INTO student_schedules (id, student_id, course, year_level, section, semester, school_year, created_at, updated_at)
VALUES (:id, :student_id, :course, :year_level, :section, :semester, :school_year, :created_at, :updated_at)
ON CONFLICT (student_id)
DO UPDATE SET course = EXCLUDED.course, year_level = EXCLUDED.year_level, section = EXCLUDED.section,
              semester = EXCLUDED.semester, school_year = EXCLUDED.school_year, updated_at = EXCLUDED.updated_at`
	if _, err := tx.NamedExecContext(ctx, upsert, schedule); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("upsert student schedule: %w", err)
	}

	var scheduleID string
	if err := tx.GetContext(ctx, &scheduleID, `SELECT id FROM student_schedules WHERE student_id = $1`, schedule.StudentID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("resolve schedule id: %w", err)
	}
	schedule.ID = scheduleID

	if _, err := tx.ExecContext(ctx, `DELETE FROM class_slots WHERE schedule_id = $1`, scheduleID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear class slots: %w", err)
	}

	const insertSlot = `INSERT INTO class_slots (id, schedule_id, subject, day_of_week, start_time, end_time, room, professor_name)
VALUES (:id, :schedule_id, :subject, :day_of_week, :start_time, :end_time, :room, :professor_name)`
	for i := range schedule.Slots {
		slot := &schedule.Slots[i]
		if slot.ID == "" {
			slot.ID = uuid.NewString()
		}
		slot.ScheduleID = scheduleID
		if _, err := tx.NamedExecContext(ctx, insertSlot, slot); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert class slot: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schedule tx: %w", err)
	}
	return nil
}

// DeleteByStudent removes a student's schedule; slots cascade.
func (r *ScheduleRepository) DeleteByStudent(ctx context.Context, studentID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM student_schedules WHERE student_id = $1`, studentID)
	if err != nil {
		return fmt.Errorf("delete student schedule: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete student schedule: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListAll returns every schedule with slots. Used by the archive snapshot.
func (r *ScheduleRepository) ListAll(ctx context.Context) ([]models.StudentSchedule, error) {
	const query = `SELECT id, student_id, course, year_level, section, semester, school_year, created_at, updated_at
FROM student_schedules ORDER BY student_id ASC`
	var schedules []models.StudentSchedule
	if err := r.db.SelectContext(ctx, &schedules, query); err != nil {
		return nil, fmt.Errorf("list student schedules: %w", err)
	}
	for i := range schedules {
		slots, err := r.listSlots(ctx, schedules[i].ID)
		if err != nil {
			return nil, err
		}
		schedules[i].Slots = slots
	}
	return schedules, nil
}

// List returns schedule metadata matching the filter, newest first. Slots
// are omitted; callers fetch a single schedule when they need them.
func (r *ScheduleRepository) List(ctx context.Context, filter models.ScheduleFilter) ([]models.StudentSchedule, int, error) {
	base := "FROM student_schedules"
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.Semester != "" {
		where = append(where, fmt.Sprintf("semester = $%d", len(args)+1))
		args = append(args, filter.Semester)
	}
	if filter.SchoolYear != "" {
		where = append(where, fmt.Sprintf("school_year = $%d", len(args)+1))
		args = append(args, filter.SchoolYear)
	}
	if filter.Course != "" {
		where = append(where, fmt.Sprintf("course = $%d", len(args)+1))
		args = append(args, filter.Course)
	}
	if filter.Section != "" {
		where = append(where, fmt.Sprintf("section = $%d", len(args)+1))
		args = append(args, filter.Section)
	}
	whereClause := strings.Join(where, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT id, student_id, course, year_level, section, semester, school_year, created_at, updated_at
%s WHERE %s ORDER BY updated_at DESC LIMIT %d OFFSET %d`, base, whereClause, size, offset)
	var schedules []models.StudentSchedule
	if err := r.db.SelectContext(ctx, &schedules, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list schedules: %w", err)
	}
	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", base, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count schedules: %w", err)
	}
	return schedules, total, nil
}

// ListAggregationSlots returns the flattened slot rows the faculty
// aggregator scans: every class slot joined with its schedule metadata.
func (r *ScheduleRepository) ListAggregationSlots(ctx context.Context) ([]models.AggregationSlot, error) {
	const query = `SELECT cs.schedule_id, ss.student_id, ss.section, cs.subject, cs.day_of_week, cs.start_time, cs.end_time, cs.room, cs.professor_name
FROM class_slots cs
JOIN student_schedules ss ON ss.id = cs.schedule_id`
	var slots []models.AggregationSlot
	if err := r.db.SelectContext(ctx, &slots, query); err != nil {
		return nil, fmt.Errorf("list aggregation slots: %w", err)
	}
	return slots, nil
}

// ListIDs returns every live schedule ID ordered for stable batch deletes.
func (r *ScheduleRepository) ListIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, `SELECT id FROM student_schedules ORDER BY id ASC`); err != nil {
		return nil, fmt.Errorf("list schedule ids: %w", err)
	}
	return ids, nil
}

// DeleteByIDs removes the given schedules in one statement. Callers chunk the
// ID list to respect batch limits.
func (r *ScheduleRepository) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query := fmt.Sprintf(`DELETE FROM student_schedules WHERE id IN (%s)`, placeholders(len(ids)))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete schedules batch: %w", err)
	}
	return nil
}

// Count returns the number of live schedule records.
func (r *ScheduleRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM student_schedules`); err != nil {
		return 0, fmt.Errorf("count schedules: %w", err)
	}
	return count, nil
}

func (r *ScheduleRepository) listSlots(ctx context.Context, scheduleID string) ([]models.ClassSlot, error) {
	const query = `SELECT id, schedule_id, subject, day_of_week, start_time, end_time, room, professor_name
FROM class_slots WHERE schedule_id = $1 ORDER BY day_of_week ASC, start_time ASC`
	var slots []models.ClassSlot
	if err := r.db.SelectContext(ctx, &slots, query, scheduleID); err != nil {
		return nil, fmt.Errorf("list class slots: %w", err)
	}
	return slots, nil
}

func placeholders(n int) string {
	values := make([]string, n)
	for i := 1; i <= n; i++ {
		values[i-1] = fmt.Sprintf("$%d", i)
	}
	return strings.Join(values, ",")
}
