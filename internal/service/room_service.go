package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/campuskit/campus-info-api/internal/dto"
	"github.com/campuskit/campus-info-api/internal/models"
	appErrors "github.com/campuskit/campus-info-api/pkg/errors"
)

type roomStore interface {
	ListRooms(ctx context.Context) ([]models.Room, error)
	CreateRoom(ctx context.Context, room *models.Room) error
	ListPeriods(ctx context.Context, kind models.PeriodKind) ([]models.RoomPeriod, error)
	InsertPeriod(ctx context.Context, period *models.RoomPeriod) error
	DeletePeriodByKey(ctx context.Context, roomID string, kind models.PeriodKind, day string, startMinute, endMinute int) error
	DeleteExpiredVacancies(ctx context.Context, currentWeekKey string) (int64, error)
}

// RoomService tracks room occupancy and manual vacancy overrides. Room names
// arrive as free text ("RM. 9/CL3"), so lookups run through normalization and
// a single request may resolve to several canonical rooms.
type RoomService struct {
	store  roomStore
	audit  auditRecorder
	now    func() time.Time
	logger *zap.Logger
}

// NewRoomService constructs the service. The clock is injectable for tests.
func NewRoomService(store roomStore, audit auditRecorder, now func() time.Time, logger *zap.Logger) *RoomService {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoomService{store: store, audit: audit, now: now, logger: logger}
}

// RegisterRoom creates a canonical room record.
func (s *RoomService) RegisterRoom(ctx context.Context, actorID string, room *models.Room) error {
	if strings.TrimSpace(room.Name) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "room name is required")
	}
	if err := s.store.CreateRoom(ctx, room); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create room")
	}
	s.emitAudit(ctx, actorID, room.ID)
	return nil
}

// ListRooms returns all canonical rooms.
func (s *RoomService) ListRooms(ctx context.Context) ([]models.Room, error) {
	rooms, err := s.store.ListRooms(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rooms")
	}
	return rooms, nil
}

// AddPeriod records an occupancy or vacancy period for every room the
// free-text name resolves to. Vacancies are stamped with the current ISO week
// and stop applying once the week rolls over; occupancies recur weekly.
func (s *RoomService) AddPeriod(ctx context.Context, actorID string, kind models.PeriodKind, req dto.RoomPeriodRequest) ([]models.RoomPeriod, error) {
	rooms, day, startMinute, endMinute, err := s.resolveRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	var weekKey *string
	if kind == models.PeriodVacancy {
		key := isoWeekKey(s.now())
		weekKey = &key
	}

	periods := make([]models.RoomPeriod, 0, len(rooms))
	for _, room := range rooms {
		period := models.RoomPeriod{
			RoomID:      room.ID,
			Kind:        kind,
			DayOfWeek:   day,
			StartMinute: startMinute,
			EndMinute:   endMinute,
			Label:       req.Label,
			WeekKey:     weekKey,
		}
		if err := s.store.InsertPeriod(ctx, &period); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record room period")
		}
		periods = append(periods, period)
		s.emitAudit(ctx, actorID, room.ID)
	}
	return periods, nil
}

// RemovePeriod deletes periods matching the exact (day, start, end) key on
// every resolved room. Overlapping-but-different periods are untouched.
func (s *RoomService) RemovePeriod(ctx context.Context, actorID string, kind models.PeriodKind, req dto.RoomPeriodRequest) error {
	rooms, day, startMinute, endMinute, err := s.resolveRequest(ctx, req)
	if err != nil {
		return err
	}

	removed := 0
	for _, room := range rooms {
		err := s.store.DeletePeriodByKey(ctx, room.ID, kind, day, startMinute, endMinute)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove room period")
		}
		removed++
		s.emitAudit(ctx, actorID, room.ID)
	}
	if removed == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "no matching period found")
	}
	return nil
}

// Status reports every room's state at the given instant. Expired vacancy
// rows are purged first, then precedence applies: an explicit vacancy beats a
// recurring occupancy, and a room with neither is vacant by default.
func (s *RoomService) Status(ctx context.Context, at time.Time) ([]dto.RoomStatusItem, error) {
	if at.IsZero() {
		at = s.now()
	}

	if _, err := s.store.DeleteExpiredVacancies(ctx, isoWeekKey(at)); err != nil {
		s.logger.Warn("failed to purge expired vacancies", zap.Error(err))
	}

	rooms, err := s.store.ListRooms(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rooms")
	}
	occupancies, err := s.store.ListPeriods(ctx, models.PeriodOccupancy)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list occupancies")
	}
	vacancies, err := s.store.ListPeriods(ctx, models.PeriodVacancy)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list vacancies")
	}

	day := at.Weekday().String()
	minute := at.Hour()*60 + at.Minute()
	weekKey := isoWeekKey(at)

	occupied := make(map[string]string)
	for _, period := range occupancies {
		if periodCovers(period, day, minute) {
			occupied[period.RoomID] = period.Label
		}
	}
	vacantOverride := make(map[string]string)
	for _, period := range vacancies {
		if period.WeekKey != nil && *period.WeekKey != weekKey {
			continue
		}
		if periodCovers(period, day, minute) {
			vacantOverride[period.RoomID] = period.Label
		}
	}

	items := make([]dto.RoomStatusItem, 0, len(rooms))
	for _, room := range rooms {
		item := dto.RoomStatusItem{
			RoomID:   room.ID,
			RoomName: room.Name,
			Building: room.Building,
			Vacant:   true,
		}
		if label, ok := occupied[room.ID]; ok {
			item.Vacant = false
			item.Label = label
		}
		if label, ok := vacantOverride[room.ID]; ok {
			item.Vacant = true
			item.Label = label
		}
		items = append(items, item)
	}
	return items, nil
}

// ListVacancies returns the vacancy periods still in effect this week,
// purging expired rows first.
func (s *RoomService) ListVacancies(ctx context.Context) ([]models.RoomPeriod, error) {
	week := isoWeekKey(s.now())
	if _, err := s.store.DeleteExpiredVacancies(ctx, week); err != nil {
		s.logger.Warn("failed to purge expired vacancies", zap.Error(err))
	}
	vacancies, err := s.store.ListPeriods(ctx, models.PeriodVacancy)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list vacancies")
	}
	current := vacancies[:0]
	for _, period := range vacancies {
		if period.WeekKey != nil && *period.WeekKey != week {
			continue
		}
		current = append(current, period)
	}
	return current, nil
}

func (s *RoomService) resolveRequest(ctx context.Context, req dto.RoomPeriodRequest) ([]models.Room, string, int, int, error) {
	day := canonicalDay(req.DayOfWeek)
	if dayIndex(day) >= len(dayNames) {
		return nil, "", 0, 0, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown day of week %q", req.DayOfWeek))
	}
	startMinute, err := parseClockMinutes(req.StartTime)
	if err != nil {
		return nil, "", 0, 0, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid start time %q", req.StartTime))
	}
	endMinute, err := parseClockMinutes(req.EndTime)
	if err != nil {
		return nil, "", 0, 0, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid end time %q", req.EndTime))
	}
	if startMinute >= endMinute {
		return nil, "", 0, 0, appErrors.Clone(appErrors.ErrValidation, "start time must be before end time")
	}

	rooms, err := s.resolveRooms(ctx, req.RoomName)
	if err != nil {
		return nil, "", 0, 0, err
	}
	return rooms, day, startMinute, endMinute, nil
}

// resolveRooms matches a free-text room name against the canonical set. A
// compound name like "RM. 9/CL3" resolves to every room it mentions.
func (s *RoomService) resolveRooms(ctx context.Context, name string) ([]models.Room, error) {
	tokens := NormalizeRoomName(name)
	if len(tokens) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "room name is required")
	}

	rooms, err := s.store.ListRooms(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rooms")
	}

	wanted := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		wanted[token] = struct{}{}
	}

	var matched []models.Room
	for _, room := range rooms {
		for _, token := range NormalizeRoomName(room.Name) {
			if _, ok := wanted[token]; ok {
				matched = append(matched, room)
				break
			}
		}
	}
	if len(matched) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no room matches %q", name))
	}
	return matched, nil
}

// NormalizeRoomName folds a human-entered room name into comparable tokens:
// case-fold, strip whitespace and punctuation, split compound names on "/".
// "RM. 9/CL3" and "rm.9 / cl3" both yield ["rm9", "cl3"].
func NormalizeRoomName(raw string) []string {
	var tokens []string
	for _, part := range strings.Split(raw, "/") {
		var b strings.Builder
		for _, r := range strings.ToLower(part) {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
				b.WriteRune(r)
			}
		}
		if token := b.String(); token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

func periodCovers(period models.RoomPeriod, day string, minute int) bool {
	return strings.EqualFold(period.DayOfWeek, day) &&
		period.StartMinute <= minute && minute < period.EndMinute
}

// isoWeekKey renders the ISO year and week, e.g. "2026-W36". Vacancy rows
// keyed to an earlier week no longer apply.
func isoWeekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// parseClockMinutes converts "HH:MM" (or "H:MM") to minutes since midnight.
func parseClockMinutes(raw string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(raw), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("expected HH:MM, got %q", raw)
	}
	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in %q", raw)
	}
	minute, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in %q", raw)
	}
	return hour*60 + minute, nil
}

func (s *RoomService) emitAudit(ctx context.Context, actorID, roomID string) {
	if s.audit == nil {
		return
	}
	log := &models.AuditLog{
		UserID:     &actorID,
		Action:     models.AuditActionRoomUpdate,
		Resource:   "room",
		ResourceID: &roomID,
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to record audit log",
			zap.String("action", models.AuditActionRoomUpdate),
			zap.Error(err))
	}
}
