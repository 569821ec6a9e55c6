package models

import "time"

// StudentSchedule is the denormalized schedule a student uploads; one record
// per student per semester/school-year.
type StudentSchedule struct {
	ID         string    `db:"id" json:"id"`
	StudentID  string    `db:"student_id" json:"student_id"`
	Course     string    `db:"course" json:"course"`
	YearLevel  string    `db:"year_level" json:"year_level"`
	Section    string    `db:"section" json:"section"`
	Semester   string    `db:"semester" json:"semester"`
	SchoolYear string    `db:"school_year" json:"school_year"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`

	Slots []ClassSlot `db:"-" json:"slots"`
}

// ClassSlot is a single class entry inside a student schedule. ProfessorName
// is free text entered by the student, not a reference to a faculty account.
type ClassSlot struct {
	ID            string `db:"id" json:"id"`
	ScheduleID    string `db:"schedule_id" json:"schedule_id"`
	Subject       string `db:"subject" json:"subject"`
	DayOfWeek     string `db:"day_of_week" json:"day_of_week"`
	StartTime     string `db:"start_time" json:"start_time"`
	EndTime       string `db:"end_time" json:"end_time"`
	Room          string `db:"room" json:"room"`
	ProfessorName string `db:"professor_name" json:"professor_name"`
}

// AggregationSlot is the flattened slot row the faculty aggregator scans:
// one row per class slot joined with its owning schedule's metadata.
type AggregationSlot struct {
	ScheduleID    string `db:"schedule_id" json:"schedule_id"`
	StudentID     string `db:"student_id" json:"student_id"`
	Section       string `db:"section" json:"section"`
	Subject       string `db:"subject" json:"subject"`
	DayOfWeek     string `db:"day_of_week" json:"day_of_week"`
	StartTime     string `db:"start_time" json:"start_time"`
	EndTime       string `db:"end_time" json:"end_time"`
	Room          string `db:"room" json:"room"`
	ProfessorName string `db:"professor_name" json:"professor_name"`
}

// ScheduleFilter describes query params for listing schedules.
type ScheduleFilter struct {
	Semester   string
	SchoolYear string
	Course     string
	Section    string
	Page       int
	PageSize   int
}
