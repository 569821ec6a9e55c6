package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campuskit/campus-info-api/internal/dto"
	"github.com/campuskit/campus-info-api/internal/models"
	appErrors "github.com/campuskit/campus-info-api/pkg/errors"
	"github.com/campuskit/campus-info-api/pkg/export"
	"github.com/campuskit/campus-info-api/pkg/storage"
)

type scheduleDeriver interface {
	Derive(ctx context.Context, facultyID string, includeUnvalidated bool) (*dto.FacultyScheduleResponse, error)
}

type archivePayloadReader interface {
	GetByID(ctx context.Context, id string) (*models.ArchiveSnapshot, error)
}

// ExportService renders faculty schedules and archive snapshots into
// downloadable files served through short-lived signed URLs.
type ExportService struct {
	deriver  scheduleDeriver
	archives archivePayloadReader
	storage  *storage.LocalStorage
	signer   *storage.SignedURLSigner
	pdf      *export.PDFExporter
	csv      *export.CSVExporter
	basePath string
	logger   *zap.Logger
}

// NewExportService constructs the service. basePath is the public route
// prefix for download links, e.g. "/api/v1/exports/download".
func NewExportService(deriver scheduleDeriver, archives archivePayloadReader, store *storage.LocalStorage, signer *storage.SignedURLSigner, basePath string, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		deriver:  deriver,
		archives: archives,
		storage:  store,
		signer:   signer,
		pdf:      export.NewPDFExporter(),
		csv:      export.NewCSVExporter(),
		basePath: basePath,
		logger:   logger,
	}
}

var facultyScheduleHeaders = []string{"Day", "Start", "End", "Subject", "Room", "Sections", "Students"}

// FacultySchedulePDF renders the derived schedule for one faculty member.
func (s *ExportService) FacultySchedulePDF(ctx context.Context, facultyID string) (*dto.ExportResult, error) {
	derived, err := s.deriver.Derive(ctx, facultyID, false)
	if err != nil {
		return nil, err
	}

	rows := make([]map[string]string, 0, len(derived.Classes))
	for _, class := range derived.Classes {
		rows = append(rows, map[string]string{
			"Day":      class.DayOfWeek,
			"Start":    class.StartTime,
			"End":      class.EndTime,
			"Subject":  class.Subject,
			"Room":     class.Room,
			"Sections": strings.Join(class.Sections, ", "),
			"Students": fmt.Sprintf("%d", class.StudentCount),
		})
	}

	data, err := s.pdf.Render(export.Dataset{Headers: facultyScheduleHeaders, Rows: rows}, fmt.Sprintf("Faculty Schedule - %s", derived.FacultyName))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render schedule pdf")
	}

	filename := filepath.Join("faculty", facultyID, uuid.NewString()+".pdf")
	return s.store(filename, data)
}

var archiveCSVHeaders = []string{"StudentID", "Course", "YearLevel", "Section", "Subject", "Day", "Start", "End", "Room", "Professor"}

// ArchiveCSV flattens an archive snapshot's payload into one CSV row per
// class slot.
func (s *ExportService) ArchiveCSV(ctx context.Context, archiveID string) (*dto.ExportResult, error) {
	snapshot, err := s.archives.GetByID(ctx, archiveID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "archive not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load archive")
	}

	var schedules []models.StudentSchedule
	if len(snapshot.Payload) > 0 {
		if err := json.Unmarshal(snapshot.Payload, &schedules); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode archive payload")
		}
	}

	var rows []map[string]string
	for _, schedule := range schedules {
		for _, slot := range schedule.Slots {
			rows = append(rows, map[string]string{
				"StudentID": schedule.StudentID,
				"Course":    schedule.Course,
				"YearLevel": schedule.YearLevel,
				"Section":   schedule.Section,
				"Subject":   slot.Subject,
				"Day":       slot.DayOfWeek,
				"Start":     slot.StartTime,
				"End":       slot.EndTime,
				"Room":      slot.Room,
				"Professor": slot.ProfessorName,
			})
		}
	}

	data, err := s.csv.Render(export.Dataset{Headers: archiveCSVHeaders, Rows: rows})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render archive csv")
	}

	filename := filepath.Join("archives", archiveID, uuid.NewString()+".csv")
	return s.store(filename, data)
}

// Resolve validates a download token and opens the file it references.
func (s *ExportService) Resolve(token string) (*os.File, string, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired download link")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "export no longer available")
	}
	return file, filepath.Base(relPath), nil
}

// StartCleanup removes stale export files on the given interval until the
// context is cancelled.
func (s *ExportService) StartCleanup(ctx context.Context, interval, ttl time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				deleted, err := s.storage.CleanupOlderThan(ttl)
				if err != nil {
					s.logger.Warn("export cleanup failed", zap.Error(err))
					continue
				}
				if len(deleted) > 0 {
					s.logger.Info("removed stale exports", zap.Int("count", len(deleted)))
				}
			}
		}
	}()
}

func (s *ExportService) store(filename string, data []byte) (*dto.ExportResult, error) {
	relPath, err := s.storage.Save(filename, data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export")
	}
	token, expiresAt, err := s.signer.Generate(uuid.NewString(), relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download link")
	}
	return &dto.ExportResult{
		Filename:    filepath.Base(relPath),
		DownloadURL: fmt.Sprintf("%s?token=%s", s.basePath, token),
		ExpiresAt:   expiresAt,
	}, nil
}
