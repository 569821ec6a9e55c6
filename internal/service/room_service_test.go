package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/campus-info-api/internal/dto"
	"github.com/campuskit/campus-info-api/internal/models"
)

type mockRoomStore struct {
	rooms        []models.Room
	periods      []models.RoomPeriod
	purgedWeek   string
	deletedCount int64
}

func (m *mockRoomStore) ListRooms(ctx context.Context) ([]models.Room, error) {
	return m.rooms, nil
}

func (m *mockRoomStore) CreateRoom(ctx context.Context, room *models.Room) error {
	room.ID = "room-new"
	m.rooms = append(m.rooms, *room)
	return nil
}

func (m *mockRoomStore) ListPeriods(ctx context.Context, kind models.PeriodKind) ([]models.RoomPeriod, error) {
	var out []models.RoomPeriod
	for _, p := range m.periods {
		if p.Kind == kind {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockRoomStore) InsertPeriod(ctx context.Context, period *models.RoomPeriod) error {
	m.periods = append(m.periods, *period)
	return nil
}

func (m *mockRoomStore) DeletePeriodByKey(ctx context.Context, roomID string, kind models.PeriodKind, day string, startMinute, endMinute int) error {
	for i, p := range m.periods {
		if p.RoomID == roomID && p.Kind == kind && p.DayOfWeek == day && p.StartMinute == startMinute && p.EndMinute == endMinute {
			m.periods = append(m.periods[:i], m.periods[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *mockRoomStore) DeleteExpiredVacancies(ctx context.Context, currentWeekKey string) (int64, error) {
	m.purgedWeek = currentWeekKey
	kept := m.periods[:0]
	for _, p := range m.periods {
		if p.Kind == models.PeriodVacancy && p.WeekKey != nil && *p.WeekKey != currentWeekKey {
			m.deletedCount++
			continue
		}
		kept = append(kept, p)
	}
	m.periods = kept
	return m.deletedCount, nil
}

// Wednesday 2026-09-02 10:00, ISO week 2026-W36.
var testInstant = time.Date(2026, 9, 2, 10, 0, 0, 0, time.UTC)

func newRoomService(store *mockRoomStore) *RoomService {
	return NewRoomService(store, nil, func() time.Time { return testInstant }, nil)
}

func TestNormalizeRoomName(t *testing.T) {
	assert.Equal(t, []string{"rm9", "cl3"}, NormalizeRoomName("RM. 9/CL3"))
	assert.Equal(t, []string{"rm9", "cl3"}, NormalizeRoomName("rm.9 / cl3"))
	assert.Equal(t, []string{"cl3"}, NormalizeRoomName(" CL-3 "))
	assert.Empty(t, NormalizeRoomName(" / "))
}

func TestAddVacancyResolvesCompoundNames(t *testing.T) {
	store := &mockRoomStore{rooms: []models.Room{
		{ID: "r1", Name: "RM 9"},
		{ID: "r2", Name: "CL3"},
		{ID: "r3", Name: "LAB 1"},
	}}
	svc := newRoomService(store)

	periods, err := svc.AddPeriod(context.Background(), "admin", models.PeriodVacancy, dto.RoomPeriodRequest{
		RoomName:  "RM. 9/CL3",
		DayOfWeek: "Wednesday",
		StartTime: "9:00",
		EndTime:   "11:00",
		Label:     "Class suspended",
	})
	require.NoError(t, err)
	require.Len(t, periods, 2)

	for _, p := range periods {
		assert.Equal(t, 540, p.StartMinute)
		assert.Equal(t, 660, p.EndMinute)
		require.NotNil(t, p.WeekKey)
		assert.Equal(t, "2026-W36", *p.WeekKey)
	}
	assert.ElementsMatch(t, []string{"r1", "r2"}, []string{periods[0].RoomID, periods[1].RoomID})
}

func TestAddPeriodUnknownRoom(t *testing.T) {
	store := &mockRoomStore{rooms: []models.Room{{ID: "r1", Name: "RM 9"}}}
	svc := newRoomService(store)

	_, err := svc.AddPeriod(context.Background(), "admin", models.PeriodVacancy, dto.RoomPeriodRequest{
		RoomName:  "GYM",
		DayOfWeek: "Monday",
		StartTime: "08:00",
		EndTime:   "09:00",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no room matches")
}

func TestAddPeriodRejectsInvertedTimes(t *testing.T) {
	store := &mockRoomStore{rooms: []models.Room{{ID: "r1", Name: "RM 9"}}}
	svc := newRoomService(store)

	_, err := svc.AddPeriod(context.Background(), "admin", models.PeriodOccupancy, dto.RoomPeriodRequest{
		RoomName:  "RM 9",
		DayOfWeek: "Monday",
		StartTime: "10:00",
		EndTime:   "09:00",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "before end time")
}

func TestRemovePeriodExactKeyOnly(t *testing.T) {
	store := &mockRoomStore{
		rooms: []models.Room{{ID: "r1", Name: "RM 9"}},
		periods: []models.RoomPeriod{
			{ID: "p1", RoomID: "r1", Kind: models.PeriodOccupancy, DayOfWeek: "Monday", StartMinute: 480, EndMinute: 540},
		},
	}
	svc := newRoomService(store)

	// Overlapping but different key must not match.
	err := svc.RemovePeriod(context.Background(), "admin", models.PeriodOccupancy, dto.RoomPeriodRequest{
		RoomName: "RM 9", DayOfWeek: "Monday", StartTime: "08:00", EndTime: "08:30",
	})
	require.Error(t, err)
	assert.Len(t, store.periods, 1)

	err = svc.RemovePeriod(context.Background(), "admin", models.PeriodOccupancy, dto.RoomPeriodRequest{
		RoomName: "RM 9", DayOfWeek: "Monday", StartTime: "08:00", EndTime: "09:00",
	})
	require.NoError(t, err)
	assert.Empty(t, store.periods)
}

func TestStatusPrecedence(t *testing.T) {
	week := "2026-W36"
	store := &mockRoomStore{
		rooms: []models.Room{
			{ID: "r1", Name: "RM 9"},
			{ID: "r2", Name: "CL3"},
			{ID: "r3", Name: "LAB 1"},
		},
		periods: []models.RoomPeriod{
			// r1: occupied at the queried instant.
			{RoomID: "r1", Kind: models.PeriodOccupancy, DayOfWeek: "Wednesday", StartMinute: 540, EndMinute: 660, Label: "Math 101"},
			// r2: occupied but overridden vacant this week.
			{RoomID: "r2", Kind: models.PeriodOccupancy, DayOfWeek: "Wednesday", StartMinute: 540, EndMinute: 660},
			{RoomID: "r2", Kind: models.PeriodVacancy, DayOfWeek: "Wednesday", StartMinute: 540, EndMinute: 660, Label: "Faculty meeting", WeekKey: &week},
		},
	}
	svc := newRoomService(store)

	items, err := svc.Status(context.Background(), testInstant)
	require.NoError(t, err)
	require.Len(t, items, 3)

	byID := make(map[string]dto.RoomStatusItem)
	for _, item := range items {
		byID[item.RoomID] = item
	}
	assert.False(t, byID["r1"].Vacant)
	assert.Equal(t, "Math 101", byID["r1"].Label)
	assert.True(t, byID["r2"].Vacant)
	assert.Equal(t, "Faculty meeting", byID["r2"].Label)
	// No periods at all: vacant by default.
	assert.True(t, byID["r3"].Vacant)
}

func TestStatusPurgesExpiredVacancies(t *testing.T) {
	lastWeek := "2026-W35"
	store := &mockRoomStore{
		rooms: []models.Room{{ID: "r1", Name: "RM 9"}},
		periods: []models.RoomPeriod{
			{RoomID: "r1", Kind: models.PeriodOccupancy, DayOfWeek: "Wednesday", StartMinute: 540, EndMinute: 660},
			{RoomID: "r1", Kind: models.PeriodVacancy, DayOfWeek: "Wednesday", StartMinute: 540, EndMinute: 660, WeekKey: &lastWeek},
		},
	}
	svc := newRoomService(store)

	items, err := svc.Status(context.Background(), testInstant)
	require.NoError(t, err)
	require.Len(t, items, 1)

	// The stale vacancy no longer shadows the recurring booking.
	assert.Equal(t, "2026-W36", store.purgedWeek)
	assert.False(t, items[0].Vacant)
}

func TestListVacanciesFiltersExpired(t *testing.T) {
	thisWeek := "2026-W36"
	lastWeek := "2026-W35"
	store := &mockRoomStore{
		rooms: []models.Room{{ID: "r1", Name: "RM 9"}},
		periods: []models.RoomPeriod{
			{ID: "p1", RoomID: "r1", Kind: models.PeriodVacancy, DayOfWeek: "Monday", StartMinute: 480, EndMinute: 540, WeekKey: &thisWeek},
			{ID: "p2", RoomID: "r1", Kind: models.PeriodVacancy, DayOfWeek: "Tuesday", StartMinute: 480, EndMinute: 540, WeekKey: &lastWeek},
		},
	}
	svc := newRoomService(store)

	vacancies, err := svc.ListVacancies(context.Background())
	require.NoError(t, err)
	require.Len(t, vacancies, 1)
	assert.Equal(t, "p1", vacancies[0].ID)
	assert.Equal(t, "2026-W36", store.purgedWeek)
}

func TestIsoWeekKey(t *testing.T) {
	assert.Equal(t, "2026-W36", isoWeekKey(testInstant))
	// Jan 1 2027 falls in ISO week 53 of 2026.
	assert.Equal(t, "2026-W53", isoWeekKey(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)))
}
