package dto

import "github.com/campuskit/campus-info-api/internal/models"

// FacultyScheduleResponse bundles the derived schedule for a faculty member.
type FacultyScheduleResponse struct {
	FacultyID   string                `json:"faculty_id"`
	FacultyName string                `json:"faculty_name"`
	Threshold   int                   `json:"threshold"`
	Classes     []models.FacultyClass `json:"classes"`
}
