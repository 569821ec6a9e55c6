package dto

import "time"

// ExportResult references a generated export file.
type ExportResult struct {
	Filename    string    `json:"filename"`
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}
