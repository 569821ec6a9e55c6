package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campuskit/campus-info-api/internal/dto"
	"github.com/campuskit/campus-info-api/internal/models"
	appErrors "github.com/campuskit/campus-info-api/pkg/errors"
)

const announcementChannel = "announcements"

type announcementStore interface {
	List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, int, error)
	GetByID(ctx context.Context, id string) (*models.Announcement, error)
	Create(ctx context.Context, announcement *models.Announcement) error
	Update(ctx context.Context, announcement *models.Announcement) error
	Delete(ctx context.Context, id string) error
}

// AnnouncementService publishes and lists campus announcements. Visibility
// follows the caller's role; section targeting narrows further.
type AnnouncementService struct {
	store     announcementStore
	publisher eventPublisher
	validate  *validator.Validate
	logger    *zap.Logger
}

// NewAnnouncementService constructs the service.
func NewAnnouncementService(store announcementStore, publisher eventPublisher, validate *validator.Validate, logger *zap.Logger) *AnnouncementService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnnouncementService{store: store, publisher: publisher, validate: validate, logger: logger}
}

// ListForRole returns active announcements visible to the given role and
// section, newest and pinned first.
func (s *AnnouncementService) ListForRole(ctx context.Context, role models.UserRole, section string, page, pageSize int) ([]models.Announcement, *models.Pagination, error) {
	filter := models.AnnouncementFilter{Page: page, PageSize: pageSize}
	switch role {
	case models.RoleStudent:
		filter.Audiences = []models.AnnouncementAudience{models.AnnouncementAudienceStudents}
		filter.Section = section
	case models.RoleFaculty:
		filter.Audiences = []models.AnnouncementAudience{models.AnnouncementAudienceFaculty}
	case models.RoleAdmin:
		filter.Audiences = []models.AnnouncementAudience{
			models.AnnouncementAudienceStudents,
			models.AnnouncementAudienceFaculty,
			models.AnnouncementAudienceSection,
		}
	}

	announcements, total, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list announcements")
	}
	pagination := &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	}
	if pagination.Page < 1 {
		pagination.Page = 1
	}
	if pagination.PageSize <= 0 || pagination.PageSize > 100 {
		pagination.PageSize = 20
	}
	return announcements, pagination, nil
}

// Get returns one announcement.
func (s *AnnouncementService) Get(ctx context.Context, id string) (*models.Announcement, error) {
	announcement, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load announcement")
	}
	return announcement, nil
}

// Create publishes an announcement and emits a live event for connected
// clients.
func (s *AnnouncementService) Create(ctx context.Context, actorID string, req dto.CreateAnnouncementRequest) (*models.Announcement, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid announcement payload")
	}
	announcement, err := buildAnnouncement(req.Title, req.Content, req.Audience, req.TargetSection, req.Priority, req.IsPinned, req.PublishedAt, req.ExpiresAt)
	if err != nil {
		return nil, err
	}
	announcement.CreatedBy = actorID

	if err := s.store.Create(ctx, announcement); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create announcement")
	}
	s.publish(ctx, announcement)
	return announcement, nil
}

// Update rewrites an existing announcement.
func (s *AnnouncementService) Update(ctx context.Context, id string, req dto.UpdateAnnouncementRequest) (*models.Announcement, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid announcement payload")
	}
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := buildAnnouncement(req.Title, req.Content, req.Audience, req.TargetSection, req.Priority, req.IsPinned, req.PublishedAt, req.ExpiresAt)
	if err != nil {
		return nil, err
	}
	updated.ID = existing.ID
	updated.CreatedBy = existing.CreatedBy
	updated.CreatedAt = existing.CreatedAt

	if err := s.store.Update(ctx, updated); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update announcement")
	}
	return updated, nil
}

// Delete removes an announcement.
func (s *AnnouncementService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete announcement")
	}
	return nil
}

func buildAnnouncement(title, content, audience, targetSection, priority string, pinned bool, publishedAt, expiresAt *time.Time) (*models.Announcement, error) {
	aud := models.AnnouncementAudience(audience)
	var section *string
	if aud == models.AnnouncementAudienceSection {
		if targetSection == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "target_section is required for SECTION announcements")
		}
		section = &targetSection
	}

	prio := models.AnnouncementPriority(priority)
	if prio == "" {
		prio = models.AnnouncementPriorityNormal
	}

	published := time.Now().UTC()
	if publishedAt != nil {
		published = publishedAt.UTC()
	}
	if expiresAt != nil && !expiresAt.After(published) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "expires_at must be after published_at")
	}

	return &models.Announcement{
		Title:         title,
		Content:       content,
		Audience:      aud,
		TargetSection: section,
		Priority:      prio,
		IsPinned:      pinned,
		PublishedAt:   published,
		ExpiresAt:     expiresAt,
	}, nil
}

func (s *AnnouncementService) publish(ctx context.Context, announcement *models.Announcement) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, announcementChannel, announcement); err != nil {
		s.logger.Warn("failed to publish announcement event",
			zap.String("announcement_id", announcement.ID),
			zap.Error(err))
	}
}
