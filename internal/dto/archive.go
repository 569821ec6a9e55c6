package dto

// ArchiveResetRequest starts an end-of-semester rollover.
type ArchiveResetRequest struct {
	Semester   string `json:"semester" validate:"required"`
	SchoolYear string `json:"school_year" validate:"required"`
}

// ArchiveResetResult reports the outcome of the archive + delete phases.
type ArchiveResetResult struct {
	ArchiveID     string `json:"archive_id"`
	TotalStudents int    `json:"total_students"`
	DeletedCount  int    `json:"deleted_count"`
	ResetStatus   string `json:"reset_status"`
}
