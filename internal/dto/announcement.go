package dto

import "time"

// CreateAnnouncementRequest publishes a new announcement.
type CreateAnnouncementRequest struct {
	Title         string     `json:"title" validate:"required"`
	Content       string     `json:"content" validate:"required"`
	Audience      string     `json:"audience" validate:"required,oneof=ALL STUDENTS FACULTY SECTION"`
	TargetSection string     `json:"target_section"`
	Priority      string     `json:"priority" validate:"omitempty,oneof=LOW NORMAL HIGH"`
	IsPinned      bool       `json:"is_pinned"`
	PublishedAt   *time.Time `json:"published_at"`
	ExpiresAt     *time.Time `json:"expires_at"`
}

// UpdateAnnouncementRequest rewrites an existing announcement.
type UpdateAnnouncementRequest struct {
	Title         string     `json:"title" validate:"required"`
	Content       string     `json:"content" validate:"required"`
	Audience      string     `json:"audience" validate:"required,oneof=ALL STUDENTS FACULTY SECTION"`
	TargetSection string     `json:"target_section"`
	Priority      string     `json:"priority" validate:"omitempty,oneof=LOW NORMAL HIGH"`
	IsPinned      bool       `json:"is_pinned"`
	PublishedAt   *time.Time `json:"published_at"`
	ExpiresAt     *time.Time `json:"expires_at"`
}
