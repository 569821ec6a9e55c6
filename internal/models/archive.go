package models

import (
	"encoding/json"
	"time"
)

// ResetStatus tracks the delete phase of an archive-and-reset rollover.
type ResetStatus string

const (
	ResetStatusPending  ResetStatus = "PENDING"
	ResetStatusPartial  ResetStatus = "PARTIAL"
	ResetStatusComplete ResetStatus = "COMPLETE"
)

// ArchiveSnapshot is an immutable point-in-time copy of every student
// schedule, written before the live records are deleted. The reset marker
// makes the delete phase resumable after a mid-batch failure.
type ArchiveSnapshot struct {
	ID            string          `db:"id" json:"id"`
	Semester      string          `db:"semester" json:"semester"`
	SchoolYear    string          `db:"school_year" json:"school_year"`
	ArchivedBy    string          `db:"archived_by" json:"archived_by"`
	TotalStudents int             `db:"total_students" json:"total_students"`
	Payload       json.RawMessage `db:"payload" json:"-"`
	ResetStatus   ResetStatus     `db:"reset_status" json:"reset_status"`
	DeletedCount  int             `db:"deleted_count" json:"deleted_count"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	CompletedAt   *time.Time      `db:"completed_at" json:"completed_at,omitempty"`
}
