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

// ArchiveRepository persists archive snapshots and their reset markers.
type ArchiveRepository struct {
	db *sqlx.DB
}

// NewArchiveRepository constructs the repository.
func NewArchiveRepository(db *sqlx.DB) *ArchiveRepository {
	return &ArchiveRepository{db: db}
}

// Create writes a snapshot row. The reset marker starts as PENDING; the
// delete phase only begins after this write succeeded.
func (r *ArchiveRepository) Create(ctx context.Context, snapshot *models.ArchiveSnapshot) error {
	if snapshot.ID == "" {
		snapshot.ID = uuid.NewString()
	}
	if snapshot.CreatedAt.IsZero() {
		snapshot.CreatedAt = time.Now().UTC()
	}
	if snapshot.ResetStatus == "" {
		snapshot.ResetStatus = models.ResetStatusPending
	}
	const query = `INSERT INTO archive_snapshots (id, semester, school_year, archived_by, total_students, payload, reset_status, deleted_count, created_at)
VALUES (:id, :semester, :school_year, :archived_by, :total_students, :payload, :reset_status, :deleted_count, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, snapshot); err != nil {
		return fmt.Errorf("create archive snapshot: %w", err)
	}
	return nil
}

// GetByID fetches one snapshot including the payload.
func (r *ArchiveRepository) GetByID(ctx context.Context, id string) (*models.ArchiveSnapshot, error) {
	const query = `SELECT id, semester, school_year, archived_by, total_students, payload, reset_status, deleted_count, created_at, completed_at
FROM archive_snapshots WHERE id = $1`
	var snapshot models.ArchiveSnapshot
	if err := r.db.GetContext(ctx, &snapshot, query, id); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// List returns snapshot metadata newest first, payloads omitted.
func (r *ArchiveRepository) List(ctx context.Context) ([]models.ArchiveSnapshot, error) {
	const query = `SELECT id, semester, school_year, archived_by, total_students, reset_status, deleted_count, created_at, completed_at
FROM archive_snapshots ORDER BY created_at DESC`
	var snapshots []models.ArchiveSnapshot
	if err := r.db.SelectContext(ctx, &snapshots, query); err != nil {
		return nil, fmt.Errorf("list archive snapshots: %w", err)
	}
	return snapshots, nil
}

// UpdateResetProgress advances the reset marker after each delete batch.
func (r *ArchiveRepository) UpdateResetProgress(ctx context.Context, id string, deleted int, status models.ResetStatus) error {
	var completedAt *time.Time
	if status == models.ResetStatusComplete {
		now := time.Now().UTC()
		completedAt = &now
	}
	const query = `UPDATE archive_snapshots SET deleted_count = $2, reset_status = $3, completed_at = $4 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, deleted, status, completedAt)
	if err != nil {
		return fmt.Errorf("update reset progress: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update reset progress: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes an archive snapshot. Live schedules are never touched here.
func (r *ArchiveRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM archive_snapshots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete archive snapshot: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete archive snapshot: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
