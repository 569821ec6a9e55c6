package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campuskit/campus-info-api/internal/models"
	appErrors "github.com/campuskit/campus-info-api/pkg/errors"
	"github.com/campuskit/campus-info-api/pkg/jobs"
)

const notificationChannelPrefix = "notifications:"

type notificationStore interface {
	ExistsByDedupeKey(ctx context.Context, userID, key string) (bool, error)
	Create(ctx context.Context, notification *models.Notification) error
	ListByUser(ctx context.Context, userID string, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, userID string) error
	CountUnread(ctx context.Context, userID string) (int, error)
}

type eventPublisher interface {
	Publish(ctx context.Context, channel string, value interface{}) error
}

// NotificationService persists in-app notifications and fans them out over a
// background queue so callers never block on delivery.
type NotificationService struct {
	store     notificationStore
	publisher eventPublisher
	queue     *jobs.Queue
	logger    *zap.Logger
}

// NewNotificationService wires the service and its dispatch queue. Start must
// be called before any notification is emitted.
func NewNotificationService(store notificationStore, publisher eventPublisher, workers, bufferSize int, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotificationService{
		store:     store,
		publisher: publisher,
		logger:    logger,
	}
	s.queue = jobs.NewQueue("notification-dispatch", s.handleDispatch, jobs.QueueConfig{
		Workers:    workers,
		BufferSize: bufferSize,
		Logger:     logger,
	})
	return s
}

// Start launches the dispatch workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the dispatch workers.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

// NotifyClassValidated emits the one-time notice that a derived class crossed
// the validation threshold. The dedupe key is persisted with the row, so the
// notice fires once per (faculty, class identity) regardless of how many
// times the schedule is recomputed or the process restarts.
func (s *NotificationService) NotifyClassValidated(ctx context.Context, facultyID string, class models.FacultyClass) {
	key := "class_validated|" + class.Key()

	exists, err := s.store.ExistsByDedupeKey(ctx, facultyID, key)
	if err != nil {
		s.logger.Warn("dedupe lookup failed, skipping class-validated notice",
			zap.String("faculty_id", facultyID),
			zap.String("dedupe_key", key),
			zap.Error(err))
		return
	}
	if exists {
		return
	}

	notification := models.Notification{
		ID:        uuid.NewString(),
		UserID:    facultyID,
		Type:      models.NotificationClassValidated,
		Title:     "Class validated",
		Body: fmt.Sprintf("%s (%s %s-%s) reached the enrollment threshold with %d students.",
			class.Subject, class.DayOfWeek, class.StartTime, class.EndTime, class.StudentCount),
		DedupeKey: &key,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.queue.Enqueue(jobs.Job{ID: notification.ID, Type: models.NotificationClassValidated, Payload: notification}); err != nil {
		s.logger.Warn("failed to enqueue class-validated notice",
			zap.String("faculty_id", facultyID),
			zap.Error(err))
	}
}

// NotifyAnnouncement fans a published announcement out to the given users.
func (s *NotificationService) NotifyAnnouncement(ctx context.Context, announcement models.Announcement, userIDs []string) {
	for _, userID := range userIDs {
		notification := models.Notification{
			ID:        uuid.NewString(),
			UserID:    userID,
			Type:      models.NotificationAnnouncement,
			Title:     announcement.Title,
			Body:      announcement.Content,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.queue.Enqueue(jobs.Job{ID: notification.ID, Type: models.NotificationAnnouncement, Payload: notification}); err != nil {
			s.logger.Warn("failed to enqueue announcement notice",
				zap.String("user_id", userID),
				zap.Error(err))
		}
	}
}

// handleDispatch runs on the queue workers: persist the row, then publish it
// for live feeds. The dedupe check is repeated here because the enqueue-time
// check races with other workers.
func (s *NotificationService) handleDispatch(ctx context.Context, job jobs.Job) error {
	notification, ok := job.Payload.(models.Notification)
	if !ok {
		s.logger.Error("dropping dispatch job with unexpected payload", zap.String("job_id", job.ID))
		return nil
	}

	if notification.DedupeKey != nil {
		exists, err := s.store.ExistsByDedupeKey(ctx, notification.UserID, *notification.DedupeKey)
		if err != nil {
			return fmt.Errorf("dispatch dedupe check: %w", err)
		}
		if exists {
			return nil
		}
	}

	if err := s.store.Create(ctx, &notification); err != nil {
		return fmt.Errorf("persist notification: %w", err)
	}

	if s.publisher != nil {
		channel := notificationChannelPrefix + notification.UserID
		if err := s.publisher.Publish(ctx, channel, notification); err != nil {
			s.logger.Warn("failed to publish notification event",
				zap.String("channel", channel),
				zap.Error(err))
		}
	}
	return nil
}

// ListForUser returns the user's most recent notifications.
func (s *NotificationService) ListForUser(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	notifications, err := s.store.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	return notifications, nil
}

// MarkRead flags one of the user's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	if err := s.store.MarkRead(ctx, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notification read")
	}
	return nil
}

// UnreadCount returns the user's unread notification count.
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	count, err := s.store.CountUnread(ctx, userID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count notifications")
	}
	return count, nil
}
