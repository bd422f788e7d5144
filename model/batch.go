package model

import "time"

type BatchStatus string

const (
	BatchStatusProcessing BatchStatus = "processing"

	// Terminal states, reached exactly when pending hits 0
	BatchStatusCompleted          BatchStatus = "completed"
	BatchStatusCompletedWithError BatchStatus = "completed_with_errors"
)

// BatchUpload aggregates the outcome of one multi-file upload.
// Invariant: successful + failed + pending = total.
type BatchUpload struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
	UserEmail string    `gorm:"not null;index" json:"user_email"`

	Total      int         `gorm:"not null" json:"total"`
	Successful int         `gorm:"not null;default:0" json:"successful"`
	Failed     int         `gorm:"not null;default:0" json:"failed"`
	Pending    int         `gorm:"not null" json:"pending"`
	Status     BatchStatus `gorm:"not null;default:processing" json:"status"`
}

func (BatchUpload) TableName() string {
	return "batch_uploads"
}

// DeriveStatus returns the status implied by the counters.
func (b *BatchUpload) DeriveStatus() BatchStatus {
	if b.Pending > 0 {
		return BatchStatusProcessing
	}
	if b.Failed > 0 {
		return BatchStatusCompletedWithError
	}
	return BatchStatusCompleted
}
