package dto

// ClassSlotPayload is one class entry in an uploaded schedule.
type ClassSlotPayload struct {
	Subject       string `json:"subject" validate:"required"`
	DayOfWeek     string `json:"day_of_week" validate:"required"`
	StartTime     string `json:"start_time" validate:"required"`
	EndTime       string `json:"end_time" validate:"required"`
	Room          string `json:"room"`
	ProfessorName string `json:"professor_name"`
}

// UploadScheduleRequest replaces a student's schedule wholesale.
type UploadScheduleRequest struct {
	StudentID  string             `json:"student_id" validate:"required"`
	Course     string             `json:"course" validate:"required"`
	YearLevel  string             `json:"year_level" validate:"required"`
	Section    string             `json:"section" validate:"required"`
	Semester   string             `json:"semester" validate:"required"`
	SchoolYear string             `json:"school_year" validate:"required"`
	Slots      []ClassSlotPayload `json:"slots" validate:"required,min=1,dive"`
}
