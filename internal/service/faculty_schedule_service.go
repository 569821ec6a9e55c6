package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/campuskit/campus-info-api/internal/dto"
	"github.com/campuskit/campus-info-api/internal/models"
	appErrors "github.com/campuskit/campus-info-api/pkg/errors"
)

type facultyReader interface {
	FindFacultyByID(ctx context.Context, id string) (*models.User, error)
}

type slotScanner interface {
	ListAggregationSlots(ctx context.Context) ([]models.AggregationSlot, error)
}

type thresholdReader interface {
	GetMinStudentsThreshold(ctx context.Context) (int, error)
}

// classValidationNotifier emits the one-time "class validated" notice.
// Implementations are best-effort and must never propagate failures.
type classValidationNotifier interface {
	NotifyClassValidated(ctx context.Context, facultyID string, class models.FacultyClass)
}

// FacultyScheduleService derives a faculty member's schedule from the
// free-text professor fields scattered across every student schedule. Nothing
// here is persisted; each call recomputes from live data.
type FacultyScheduleService struct {
	users     facultyReader
	slots     slotScanner
	threshold thresholdReader
	notifier  classValidationNotifier
	logger    *zap.Logger
}

// NewFacultyScheduleService constructs the aggregator.
func NewFacultyScheduleService(users facultyReader, slots slotScanner, threshold thresholdReader, notifier classValidationNotifier, logger *zap.Logger) *FacultyScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FacultyScheduleService{
		users:     users,
		slots:     slots,
		threshold: threshold,
		notifier:  notifier,
		logger:    logger,
	}
}

// Derive computes the faculty member's classes. Only validated classes are
// returned unless includeUnvalidated is set (administrative review).
func (s *FacultyScheduleService) Derive(ctx context.Context, facultyID string, includeUnvalidated bool) (*dto.FacultyScheduleResponse, error) {
	faculty, err := s.users.FindFacultyByID(ctx, facultyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "faculty not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty")
	}

	threshold, err := s.threshold.GetMinStudentsThreshold(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load validation threshold")
	}

	slots, err := s.slots.ListAggregationSlots(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to scan schedules")
	}

	candidates := buildNameCandidates(faculty)
	groups := make(map[string]*classAccumulator)

	for _, slot := range slots {
		professor := normalizeText(slot.ProfessorName)
		if isPlaceholder(professor) {
			continue
		}
		if !matchesFaculty(professor, candidates) {
			continue
		}

		key := classKey(slot)
		acc, ok := groups[key]
		if !ok {
			acc = newClassAccumulator(slot)
			groups[key] = acc
		}
		acc.add(slot)
	}

	classes := make([]models.FacultyClass, 0, len(groups))
	for _, acc := range groups {
		class := acc.finalize(threshold)
		if class.Validated {
			s.notifyValidated(ctx, facultyID, class)
		}
		if class.Validated || includeUnvalidated {
			classes = append(classes, class)
		}
	}

	sortClasses(classes)

	return &dto.FacultyScheduleResponse{
		FacultyID:   faculty.ID,
		FacultyName: displayName(faculty),
		Threshold:   threshold,
		Classes:     classes,
	}, nil
}

func (s *FacultyScheduleService) notifyValidated(ctx context.Context, facultyID string, class models.FacultyClass) {
	if s.notifier == nil {
		return
	}
	// Best-effort: the notifier performs its own persisted dedupe check and
	// swallows failures, so a notification problem never breaks the query.
	s.notifier.NotifyClassValidated(ctx, facultyID, class)
}

// classAccumulator folds matching slots into one derived class.
type classAccumulator struct {
	subject   string
	dayOfWeek string
	startTime string
	endTime   string
	room      string
	sections  map[string]struct{}
	students  map[string]struct{}
}

func newClassAccumulator(slot models.AggregationSlot) *classAccumulator {
	return &classAccumulator{
		subject:   strings.TrimSpace(slot.Subject),
		dayOfWeek: canonicalDay(slot.DayOfWeek),
		startTime: NormalizeClock(slot.StartTime),
		endTime:   NormalizeClock(slot.EndTime),
		sections:  make(map[string]struct{}),
		students:  make(map[string]struct{}),
	}
}

func (a *classAccumulator) add(slot models.AggregationSlot) {
	a.students[slot.StudentID] = struct{}{}
	if section := strings.TrimSpace(slot.Section); section != "" {
		a.sections[section] = struct{}{}
	}
	// Keep the first concrete room seen over placeholders like "TBA".
	if isPlaceholder(normalizeText(a.room)) {
		if room := strings.TrimSpace(slot.Room); !isPlaceholder(normalizeText(room)) {
			a.room = room
		}
	}
}

func (a *classAccumulator) finalize(threshold int) models.FacultyClass {
	sections := make([]string, 0, len(a.sections))
	for section := range a.sections {
		sections = append(sections, section)
	}
	sort.Strings(sections)

	count := len(a.students)
	needed := threshold - count
	if needed < 0 {
		needed = 0
	}
	return models.FacultyClass{
		Subject:        a.subject,
		DayOfWeek:      a.dayOfWeek,
		StartTime:      a.startTime,
		EndTime:        a.endTime,
		Room:           a.room,
		Sections:       sections,
		StudentCount:   count,
		Validated:      count >= threshold,
		StudentsNeeded: needed,
	}
}

func classKey(slot models.AggregationSlot) string {
	return fmt.Sprintf("%s|%s|%s|%s",
		normalizeText(slot.Subject),
		strings.ToLower(canonicalDay(slot.DayOfWeek)),
		NormalizeClock(slot.StartTime),
		NormalizeClock(slot.EndTime),
	)
}

// buildNameCandidates produces the exact-match strings tried first. It never
// fails; empty parts simply yield fewer candidates.
func buildNameCandidates(faculty *models.User) []string {
	first := normalizeText(faculty.FirstName)
	middle := normalizeText(faculty.MiddleName)
	last := normalizeText(faculty.LastName)

	var candidates []string
	appendCandidate := func(value string) {
		value = normalizeText(value)
		if value == "" {
			return
		}
		for _, existing := range candidates {
			if existing == value {
				return
			}
		}
		candidates = append(candidates, value)
	}

	if first != "" && last != "" {
		appendCandidate(first + " " + last)
		if middle != "" {
			appendCandidate(first + " " + middle + " " + last)
			appendCandidate(fmt.Sprintf("%s %s. %s", first, middle[:1], last))
			appendCandidate(fmt.Sprintf("%s %s %s", first, middle[:1], last))
		}
	}
	appendCandidate(faculty.DisplayName)

	return candidates
}

// matchesFaculty applies the tiered heuristic: exact candidate match, then
// last name plus first name or initial, then first and last name anywhere in
// the free text. Free-text professor fields carry no foreign key, so this can
// produce false positives for faculty sharing a last name.
func matchesFaculty(professor string, candidates []string) bool {
	if len(candidates) == 0 {
		return false
	}
	for _, candidate := range candidates {
		if professor == candidate {
			return true
		}
	}

	first, last := firstAndLastFromCandidates(candidates)
	if first == "" || last == "" {
		return false
	}

	if strings.Contains(professor, last) {
		if strings.Contains(professor, first) || containsInitial(professor, first) {
			return true
		}
	}

	return strings.Contains(professor, first) && strings.Contains(professor, last)
}

func firstAndLastFromCandidates(candidates []string) (string, string) {
	// The first candidate is always "first last" when both parts exist.
	parts := strings.Fields(candidates[0])
	if len(parts) < 2 {
		return "", ""
	}
	return parts[0], parts[len(parts)-1]
}

func containsInitial(professor, first string) bool {
	initial := first[:1]
	for _, token := range strings.Fields(professor) {
		token = strings.Trim(token, ".,")
		if token == initial {
			return true
		}
	}
	return strings.Contains(professor, initial+".")
}

var placeholderNames = map[string]struct{}{
	"":                {},
	"-":               {},
	"—":               {},
	"n/a":             {},
	"na":              {},
	"tba":             {},
	"tbd":             {},
	"to be announced": {},
	"none":            {},
}

func isPlaceholder(normalized string) bool {
	_, ok := placeholderNames[normalized]
	return ok
}

func normalizeText(raw string) string {
	return strings.Join(strings.Fields(strings.ToLower(raw)), " ")
}

var dayOrder = map[string]int{
	"monday":    0,
	"tuesday":   1,
	"wednesday": 2,
	"thursday":  3,
	"friday":    4,
	"saturday":  5,
	"sunday":    6,
}

var dayNames = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

func canonicalDay(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if idx, ok := dayOrder[key]; ok {
		return dayNames[idx]
	}
	return strings.TrimSpace(raw)
}

func dayIndex(day string) int {
	if idx, ok := dayOrder[strings.ToLower(strings.TrimSpace(day))]; ok {
		return idx
	}
	return len(dayNames)
}

func sortClasses(classes []models.FacultyClass) {
	sort.Slice(classes, func(i, j int) bool {
		di, dj := dayIndex(classes[i].DayOfWeek), dayIndex(classes[j].DayOfWeek)
		if di != dj {
			return di < dj
		}
		if classes[i].StartTime != classes[j].StartTime {
			return classes[i].StartTime < classes[j].StartTime
		}
		return classes[i].Subject < classes[j].Subject
	})
}

// NormalizeClock converts "H:MM" or "HH:MM" to zero-padded 24-hour form so
// lexicographic ordering matches chronological ordering. Unparseable values
// are returned trimmed.
func NormalizeClock(raw string) string {
	trimmed := strings.TrimSpace(raw)
	parts := strings.SplitN(trimmed, ":", 2)
	if len(parts) != 2 {
		return trimmed
	}
	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || hour < 0 || hour > 23 {
		return trimmed
	}
	minute, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || minute < 0 || minute > 59 {
		return trimmed
	}
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

func displayName(user *models.User) string {
	if strings.TrimSpace(user.DisplayName) != "" {
		return user.DisplayName
	}
	return strings.TrimSpace(user.FirstName + " " + user.LastName)
}
