package models

import (
	"fmt"
	"strings"
)

// FacultyClass is a computed aggregate derived from matching class slots
// across all student schedules. It is never persisted; every query recomputes
// it, so the validated flag can flip as enrollment changes.
type FacultyClass struct {
	Subject        string   `json:"subject"`
	DayOfWeek      string   `json:"day_of_week"`
	StartTime      string   `json:"start_time"`
	EndTime        string   `json:"end_time"`
	Room           string   `json:"room"`
	Sections       []string `json:"sections"`
	StudentCount   int      `json:"student_count"`
	Validated      bool     `json:"validated"`
	StudentsNeeded int      `json:"students_needed"`
}

// Key returns the identity key used for grouping and notification dedupe.
// Subject and day are case- and whitespace-folded so the key does not depend
// on which student's spelling the aggregation happened to see first.
func (c FacultyClass) Key() string {
	return fmt.Sprintf("%s|%s|%s|%s", foldKeyPart(c.Subject), foldKeyPart(c.DayOfWeek), c.StartTime, c.EndTime)
}

func foldKeyPart(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
