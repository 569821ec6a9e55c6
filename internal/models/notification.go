package models

import "time"

// Notification types.
const (
	NotificationClassValidated = "CLASS_VALIDATED"
	NotificationAnnouncement   = "ANNOUNCEMENT"
)

// Notification is a persisted in-app notification. DedupeKey makes
// class-validation notices idempotent across repeated aggregations: at most
// one row exists per (user, key) pair.
type Notification struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Type      string    `db:"type" json:"type"`
	Title     string    `db:"title" json:"title"`
	Body      string    `db:"body" json:"body"`
	DedupeKey *string   `db:"dedupe_key" json:"dedupe_key,omitempty"`
	Read      bool      `db:"read" json:"read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
