package models

import "time"

// PeriodKind distinguishes recurring bookings from manual vacancy overrides.
type PeriodKind string

const (
	PeriodOccupancy PeriodKind = "OCCUPANCY"
	PeriodVacancy   PeriodKind = "VACANCY"
)

// Room is a canonical room record. Human-entered names like "RM. 9/CL3" are
// resolved against Name via normalization, never by exact string equality.
type Room struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Building  string    `db:"building" json:"building"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// RoomPeriod is a time-boxed entry attached to a room. Times are minutes
// since midnight. Vacancy rows carry the ISO week they were recorded in and
// stop applying once the week rolls over; occupancy rows recur weekly.
type RoomPeriod struct {
	ID          string     `db:"id" json:"id"`
	RoomID      string     `db:"room_id" json:"room_id"`
	Kind        PeriodKind `db:"kind" json:"kind"`
	DayOfWeek   string     `db:"day_of_week" json:"day_of_week"`
	StartMinute int        `db:"start_minute" json:"start_minute"`
	EndMinute   int        `db:"end_minute" json:"end_minute"`
	Label       string     `db:"label" json:"label"`
	WeekKey     *string    `db:"week_key" json:"week_key,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}
