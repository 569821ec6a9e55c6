package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/campuskit/campus-info-api/internal/dto"
	"github.com/campuskit/campus-info-api/internal/models"
	appErrors "github.com/campuskit/campus-info-api/pkg/errors"
)

type archiveStore interface {
	Create(ctx context.Context, snapshot *models.ArchiveSnapshot) error
	GetByID(ctx context.Context, id string) (*models.ArchiveSnapshot, error)
	List(ctx context.Context) ([]models.ArchiveSnapshot, error)
	UpdateResetProgress(ctx context.Context, id string, deleted int, status models.ResetStatus) error
	Delete(ctx context.Context, id string) error
}

type scheduleResetStore interface {
	ListAll(ctx context.Context) ([]models.StudentSchedule, error)
	ListIDs(ctx context.Context) ([]string, error)
	DeleteByIDs(ctx context.Context, ids []string) error
}

// ArchiveService runs the end-of-semester rollover: snapshot every student
// schedule, then delete the live records in bounded batches. The snapshot is
// durable before the first delete runs; a failed delete phase leaves a
// PARTIAL marker the admin can resume, never a missing archive.
type ArchiveService struct {
	archives  archiveStore
	schedules scheduleResetStore
	audit     auditRecorder
	batchSize int
	logger    *zap.Logger
}

// NewArchiveService constructs the service.
func NewArchiveService(archives archiveStore, schedules scheduleResetStore, audit auditRecorder, batchSize int, logger *zap.Logger) *ArchiveService {
	if batchSize <= 0 {
		batchSize = 400
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ArchiveService{
		archives:  archives,
		schedules: schedules,
		audit:     audit,
		batchSize: batchSize,
		logger:    logger,
	}
}

// ArchiveAndReset snapshots all schedules and deletes them. The returned
// result carries the reset status: COMPLETE on full success, PARTIAL when the
// snapshot exists but some deletes failed.
func (s *ArchiveService) ArchiveAndReset(ctx context.Context, actorID string, req dto.ArchiveResetRequest) (*dto.ArchiveResetResult, error) {
	schedules, err := s.schedules.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read schedules for archiving")
	}

	payload, err := json.Marshal(schedules)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode archive payload")
	}

	snapshot := &models.ArchiveSnapshot{
		Semester:      req.Semester,
		SchoolYear:    req.SchoolYear,
		ArchivedBy:    actorID,
		TotalStudents: len(schedules),
		Payload:       payload,
		ResetStatus:   models.ResetStatusPending,
	}
	if err := s.archives.Create(ctx, snapshot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to write archive snapshot")
	}

	s.emitAudit(ctx, actorID, models.AuditActionArchiveReset, snapshot.ID)

	result := s.runDeletePhase(ctx, snapshot)
	return result, nil
}

// ResumeReset continues the delete phase of a snapshot left PARTIAL or
// PENDING. Resuming a COMPLETE archive is a no-op and returns its final
// counts, so retries are harmless.
func (s *ArchiveService) ResumeReset(ctx context.Context, actorID, archiveID string) (*dto.ArchiveResetResult, error) {
	snapshot, err := s.archives.GetByID(ctx, archiveID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "archive not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load archive")
	}

	if snapshot.ResetStatus == models.ResetStatusComplete {
		return &dto.ArchiveResetResult{
			ArchiveID:     snapshot.ID,
			TotalStudents: snapshot.TotalStudents,
			DeletedCount:  snapshot.DeletedCount,
			ResetStatus:   string(snapshot.ResetStatus),
		}, nil
	}

	s.emitAudit(ctx, actorID, models.AuditActionArchiveResume, snapshot.ID)

	result := s.runDeletePhase(ctx, snapshot)
	return result, nil
}

// runDeletePhase deletes live schedules in batches, advancing the persisted
// marker after every batch so a crash mid-way loses at most one batch of
// progress tracking, never archived data.
func (s *ArchiveService) runDeletePhase(ctx context.Context, snapshot *models.ArchiveSnapshot) *dto.ArchiveResetResult {
	deleted := snapshot.DeletedCount
	status := models.ResetStatusPartial

	ids, err := s.schedules.ListIDs(ctx)
	if err != nil {
		s.logger.Error("reset delete phase could not list schedules",
			zap.String("archive_id", snapshot.ID),
			zap.Error(err))
		s.advanceMarker(ctx, snapshot.ID, deleted, status)
		return s.result(snapshot, deleted, status)
	}

	for start := 0; start < len(ids); start += s.batchSize {
		end := start + s.batchSize
		if end > len(ids) {
			end = len(ids)
		}
		batch := ids[start:end]
		if err := s.schedules.DeleteByIDs(ctx, batch); err != nil {
			s.logger.Error("reset delete batch failed",
				zap.String("archive_id", snapshot.ID),
				zap.Int("deleted_so_far", deleted),
				zap.Error(err))
			s.advanceMarker(ctx, snapshot.ID, deleted, status)
			return s.result(snapshot, deleted, status)
		}
		deleted += len(batch)
		s.advanceMarker(ctx, snapshot.ID, deleted, status)
	}

	status = models.ResetStatusComplete
	s.advanceMarker(ctx, snapshot.ID, deleted, status)
	return s.result(snapshot, deleted, status)
}

func (s *ArchiveService) advanceMarker(ctx context.Context, archiveID string, deleted int, status models.ResetStatus) {
	if err := s.archives.UpdateResetProgress(ctx, archiveID, deleted, status); err != nil {
		s.logger.Error("failed to advance reset marker",
			zap.String("archive_id", archiveID),
			zap.Int("deleted", deleted),
			zap.String("status", string(status)),
			zap.Error(err))
	}
}

func (s *ArchiveService) result(snapshot *models.ArchiveSnapshot, deleted int, status models.ResetStatus) *dto.ArchiveResetResult {
	return &dto.ArchiveResetResult{
		ArchiveID:     snapshot.ID,
		TotalStudents: snapshot.TotalStudents,
		DeletedCount:  deleted,
		ResetStatus:   string(status),
	}
}

// List returns archive metadata newest first, payloads excluded.
func (s *ArchiveService) List(ctx context.Context) ([]models.ArchiveSnapshot, error) {
	snapshots, err := s.archives.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list archives")
	}
	return snapshots, nil
}

// Get returns one archive including its full payload.
func (s *ArchiveService) Get(ctx context.Context, id string) (*models.ArchiveSnapshot, error) {
	snapshot, err := s.archives.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "archive not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load archive")
	}
	return snapshot, nil
}

// Delete removes an archive snapshot. An archive whose reset never completed
// cannot be deleted; its payload is the only surviving copy of the schedules
// still being removed.
func (s *ArchiveService) Delete(ctx context.Context, actorID, id string) error {
	snapshot, err := s.archives.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "archive not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load archive")
	}
	if snapshot.ResetStatus != models.ResetStatusComplete {
		return appErrors.Clone(appErrors.ErrPartialReset, "archive reset incomplete; resume it before deleting")
	}
	if err := s.archives.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "archive not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete archive")
	}
	s.emitAudit(ctx, actorID, models.AuditActionArchiveDelete, id)
	return nil
}

func (s *ArchiveService) emitAudit(ctx context.Context, actorID, action, archiveID string) {
	if s.audit == nil {
		return
	}
	log := &models.AuditLog{
		UserID:     &actorID,
		Action:     action,
		Resource:   "archive_snapshot",
		ResourceID: &archiveID,
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to record audit log",
			zap.String("action", action),
			zap.Error(err))
	}
}
