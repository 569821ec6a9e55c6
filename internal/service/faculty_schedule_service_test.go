package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/campus-info-api/internal/models"
)

type mockFacultyReader struct {
	faculty *models.User
}

func (m *mockFacultyReader) FindFacultyByID(ctx context.Context, id string) (*models.User, error) {
	if m.faculty != nil && m.faculty.ID == id {
		return m.faculty, nil
	}
	return nil, sql.ErrNoRows
}

type mockSlotScanner struct {
	slots []models.AggregationSlot
}

func (m *mockSlotScanner) ListAggregationSlots(ctx context.Context) ([]models.AggregationSlot, error) {
	return m.slots, nil
}

type mockThresholdReader struct {
	threshold int
}

func (m *mockThresholdReader) GetMinStudentsThreshold(ctx context.Context) (int, error) {
	return m.threshold, nil
}

type mockNotifier struct {
	notified []models.FacultyClass
}

func (m *mockNotifier) NotifyClassValidated(ctx context.Context, facultyID string, class models.FacultyClass) {
	m.notified = append(m.notified, class)
}

func testFaculty() *models.User {
	return &models.User{
		ID:         "fac-1",
		FirstName:  "Juan",
		MiddleName: "Dela",
		LastName:   "Cruz",
		Role:       models.RoleFaculty,
	}
}

func slot(student, section, subject, day, start, end, room, professor string) models.AggregationSlot {
	return models.AggregationSlot{
		StudentID:     student,
		Section:       section,
		Subject:       subject,
		DayOfWeek:     day,
		StartTime:     start,
		EndTime:       end,
		Room:          room,
		ProfessorName: professor,
	}
}

func newAggregator(faculty *models.User, slots []models.AggregationSlot, threshold int, notifier *mockNotifier) *FacultyScheduleService {
	var n classValidationNotifier
	if notifier != nil {
		n = notifier
	}
	return NewFacultyScheduleService(
		&mockFacultyReader{faculty: faculty},
		&mockSlotScanner{slots: slots},
		&mockThresholdReader{threshold: threshold},
		n,
		nil,
	)
}

func TestDeriveMatchesNameVariants(t *testing.T) {
	slots := []models.AggregationSlot{
		slot("s1", "A", "Math 101", "Monday", "8:00", "9:30", "RM 1", "Juan Cruz"),
		slot("s2", "A", "Math 101", "Monday", "08:00", "09:30", "RM 1", "juan dela cruz"),
		slot("s3", "B", "Math 101", "Monday", "8:00", "9:30", "RM 1", "Prof. J. Cruz"),
		slot("s4", "B", "Math 101", "Monday", "8:00", "09:30", "RM 1", "CRUZ, Juan"),
		slot("s5", "C", "Math 101", "Monday", "8:00", "9:30", "RM 1", "Maria Santos"),
		slot("s6", "C", "Math 101", "Monday", "8:00", "9:30", "RM 1", "TBA"),
	}

	svc := newAggregator(testFaculty(), slots, 3, nil)
	derived, err := svc.Derive(context.Background(), "fac-1", true)
	require.NoError(t, err)
	require.Len(t, derived.Classes, 1)

	class := derived.Classes[0]
	// s5 belongs to another professor and s6 is a placeholder.
	assert.Equal(t, 4, class.StudentCount)
	assert.True(t, class.Validated)
	assert.Equal(t, []string{"A", "B"}, class.Sections)
}

func TestDeriveGroupsNormalizedTimes(t *testing.T) {
	// "8:00" and "08:00" denote the same slot and must land in one group.
	slots := []models.AggregationSlot{
		slot("s1", "A", "Physics", "Tuesday", "8:00", "9:30", "", "Juan Cruz"),
		slot("s2", "A", "Physics", "tuesday", "08:00", "09:30", "RM 2", "Juan Cruz"),
		slot("s3", "A", "Physics", "Tuesday", "10:00", "11:30", "RM 2", "Juan Cruz"),
	}

	svc := newAggregator(testFaculty(), slots, 1, nil)
	derived, err := svc.Derive(context.Background(), "fac-1", true)
	require.NoError(t, err)
	require.Len(t, derived.Classes, 2)

	assert.Equal(t, "08:00", derived.Classes[0].StartTime)
	assert.Equal(t, 2, derived.Classes[0].StudentCount)
	assert.Equal(t, "RM 2", derived.Classes[0].Room)
	assert.Equal(t, "10:00", derived.Classes[1].StartTime)
}

func TestDeriveOrdersMondayFirstThenTime(t *testing.T) {
	slots := []models.AggregationSlot{
		slot("s1", "A", "Chem", "Sunday", "07:00", "08:00", "", "Juan Cruz"),
		slot("s1", "A", "Bio", "Monday", "13:00", "14:00", "", "Juan Cruz"),
		slot("s1", "A", "Math", "Monday", "8:00", "9:00", "", "Juan Cruz"),
		slot("s1", "A", "PE", "Wednesday", "09:00", "10:00", "", "Juan Cruz"),
	}

	svc := newAggregator(testFaculty(), slots, 1, nil)
	derived, err := svc.Derive(context.Background(), "fac-1", true)
	require.NoError(t, err)
	require.Len(t, derived.Classes, 4)

	var order []string
	for _, class := range derived.Classes {
		order = append(order, class.Subject)
	}
	assert.Equal(t, []string{"Math", "Bio", "PE", "Chem"}, order)
}

func TestDeriveThresholdRecomputedEachCall(t *testing.T) {
	slots := []models.AggregationSlot{
		slot("s1", "A", "Math", "Monday", "08:00", "09:00", "", "Juan Cruz"),
		slot("s2", "A", "Math", "Monday", "08:00", "09:00", "", "Juan Cruz"),
	}

	svc := newAggregator(testFaculty(), slots, 3, nil)
	derived, err := svc.Derive(context.Background(), "fac-1", true)
	require.NoError(t, err)
	require.Len(t, derived.Classes, 1)
	assert.False(t, derived.Classes[0].Validated)
	assert.Equal(t, 1, derived.Classes[0].StudentsNeeded)

	// Nothing is persisted: lowering the threshold flips the same class.
	svc = newAggregator(testFaculty(), slots, 2, nil)
	derived, err = svc.Derive(context.Background(), "fac-1", true)
	require.NoError(t, err)
	assert.True(t, derived.Classes[0].Validated)
	assert.Equal(t, 0, derived.Classes[0].StudentsNeeded)
}

func TestDeriveHidesUnvalidatedByDefault(t *testing.T) {
	slots := []models.AggregationSlot{
		slot("s1", "A", "Math", "Monday", "08:00", "09:00", "", "Juan Cruz"),
		slot("s1", "A", "Chem", "Friday", "08:00", "09:00", "", "Juan Cruz"),
		slot("s2", "A", "Math", "Monday", "08:00", "09:00", "", "Juan Cruz"),
	}

	svc := newAggregator(testFaculty(), slots, 2, nil)

	derived, err := svc.Derive(context.Background(), "fac-1", false)
	require.NoError(t, err)
	require.Len(t, derived.Classes, 1)
	assert.Equal(t, "Math", derived.Classes[0].Subject)

	derived, err = svc.Derive(context.Background(), "fac-1", true)
	require.NoError(t, err)
	assert.Len(t, derived.Classes, 2)
}

func TestDeriveNotifiesOnlyValidatedClasses(t *testing.T) {
	slots := []models.AggregationSlot{
		slot("s1", "A", "Math", "Monday", "08:00", "09:00", "", "Juan Cruz"),
		slot("s2", "A", "Math", "Monday", "08:00", "09:00", "", "Juan Cruz"),
		slot("s3", "B", "Chem", "Friday", "10:00", "11:00", "", "Juan Cruz"),
	}

	notifier := &mockNotifier{}
	svc := newAggregator(testFaculty(), slots, 2, notifier)

	_, err := svc.Derive(context.Background(), "fac-1", true)
	require.NoError(t, err)
	require.Len(t, notifier.notified, 1)
	assert.Equal(t, "Math", notifier.notified[0].Subject)
}

func TestDeriveDedupeKeyIgnoresScanOrder(t *testing.T) {
	// Two spellings of the same class. Whichever the scan sees first supplies
	// the display subject, but the identity key must come out the same.
	upper := slot("s1", "A", "MATH 101", "Monday", "08:00", "09:00", "", "Juan Cruz")
	title := slot("s2", "A", "Math  101", "monday", "8:00", "9:00", "", "Juan Cruz")

	first := &mockNotifier{}
	svc := newAggregator(testFaculty(), []models.AggregationSlot{upper, title}, 2, first)
	_, err := svc.Derive(context.Background(), "fac-1", true)
	require.NoError(t, err)
	require.Len(t, first.notified, 1)

	second := &mockNotifier{}
	svc = newAggregator(testFaculty(), []models.AggregationSlot{title, upper}, 2, second)
	_, err = svc.Derive(context.Background(), "fac-1", true)
	require.NoError(t, err)
	require.Len(t, second.notified, 1)

	assert.Equal(t, first.notified[0].Key(), second.notified[0].Key())
	assert.Equal(t, "math 101|monday|08:00|09:00", first.notified[0].Key())
}

func TestDeriveNoMatchingSlots(t *testing.T) {
	slots := []models.AggregationSlot{
		slot("s1", "A", "Math", "Monday", "08:00", "09:00", "", "Maria Santos"),
		slot("s2", "B", "Chem", "Friday", "10:00", "11:00", "", "TBA"),
	}

	svc := newAggregator(testFaculty(), slots, 1, nil)
	derived, err := svc.Derive(context.Background(), "fac-1", true)
	require.NoError(t, err)
	assert.Empty(t, derived.Classes)
}

func TestDeriveUnknownFaculty(t *testing.T) {
	svc := newAggregator(testFaculty(), nil, 2, nil)
	_, err := svc.Derive(context.Background(), "missing", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "faculty not found")
}

func TestNormalizeClock(t *testing.T) {
	assert.Equal(t, "08:00", NormalizeClock("8:00"))
	assert.Equal(t, "08:05", NormalizeClock(" 8:05 "))
	assert.Equal(t, "13:30", NormalizeClock("13:30"))
	// Unparseable values pass through trimmed.
	assert.Equal(t, "25:00", NormalizeClock("25:00"))
	assert.Equal(t, "noon", NormalizeClock("noon"))
}

func TestMatchesFacultyTiers(t *testing.T) {
	candidates := buildNameCandidates(testFaculty())

	cases := []struct {
		professor string
		want      bool
	}{
		{"juan cruz", true},
		{"juan dela cruz", true},
		{"juan d. cruz", true},
		{"engr. juan cruz", true},
		{"j. cruz", true},
		{"cruz, juan", true},
		{"maria santos", false},
		{"pedro cruz", false},
		{"", false},
	}
	for _, tc := range cases {
		got := matchesFaculty(normalizeText(tc.professor), candidates)
		assert.Equalf(t, tc.want, got, "professor %q", tc.professor)
	}
}
