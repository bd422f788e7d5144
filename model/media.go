package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type MediaType string

const (
	MediaTypeImage    MediaType = "image"
	MediaTypeVideo    MediaType = "video"
	MediaTypeDocument MediaType = "document"
	MediaTypeAudio    MediaType = "audio"
	MediaTypeEmail    MediaType = "email"
	MediaTypeArchive  MediaType = "archive"
	MediaTypeCode     MediaType = "code"
	MediaTypeUnknown  MediaType = "unknown"
)

type ProcessingStatus string

const (
	// File registered, waiting for a worker to claim the job
	StatusPending ProcessingStatus = "pending"

	// A worker is running the analysis pipeline
	StatusProcessing ProcessingStatus = "processing"

	// Terminal states
	StatusCompleted ProcessingStatus = "completed"
	StatusFailed    ProcessingStatus = "failed"
)

// StringList is stored as a JSON array column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (l *StringList) Scan(value any) error {
	if value == nil {
		*l = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for StringList: %T", value)
	}
	return json.Unmarshal(data, l)
}

// MediaRecord stores one uploaded file and its analysis results.
// Composite index (user_email, created_at), fulltext index on file_name
// and description for the keyword side of hybrid search.
// The embedding vector itself lives in Milvus keyed by media id; only
// its dimension is stored here.
type MediaRecord struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `gorm:"not null;index:idx_email_created" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	UserEmail string         `gorm:"not null;index:idx_email_created" json:"user_email"`
	BatchID   *uint          `gorm:"index" json:"batch_id,omitempty"`

	FileName  string    `gorm:"not null;index:idx_fulltext_file_name,class:FULLTEXT,option:WITH PARSER ngram" json:"file_name"`
	MediaType MediaType `gorm:"not null;default:unknown" json:"media_type"`
	MimeType  string    `json:"mime_type"`
	FileSize  int64     `gorm:"not null" json:"file_size"`

	// Full path of the file in OSS, without the bucket name
	ObjectName string `gorm:"not null" json:"object_name"`

	ProcessingStatus      ProcessingStatus `gorm:"not null;default:pending;index" json:"processing_status"`
	Attempts              int              `gorm:"not null;default:0" json:"attempts"`
	ProcessingError       string           `gorm:"type:text" json:"processing_error,omitempty"`
	ProcessingStartedAt   *time.Time       `json:"processing_started_at,omitempty"`
	ProcessingCompletedAt *time.Time       `json:"processing_completed_at,omitempty"`

	Description         string     `gorm:"type:text" json:"description"`
	DetailedDescription string     `gorm:"type:text" json:"detailed_description,omitempty"`
	Tags                StringList `gorm:"type:json" json:"tags"`
	ExtractedText       string     `gorm:"type:longtext" json:"extracted_text,omitempty"`
	EmbeddingDim        int        `gorm:"not null;default:0" json:"embedding_dim"`

	// Structural metadata, populated per media type
	Width           int     `json:"width,omitempty"`
	Height          int     `json:"height,omitempty"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
	PageCount       int     `json:"page_count,omitempty"`
	Language        string  `json:"language,omitempty"`
	FaceCount       int     `json:"face_count,omitempty"`

	DocumentType             string  `json:"document_type,omitempty"`
	ClassificationConfidence float64 `json:"classification_confidence,omitempty"`

	ThumbnailObject string `json:"thumbnail_object,omitempty"`
	Favorite        bool   `gorm:"not null;default:false" json:"favorite"`
}

func (MediaRecord) TableName() string {
	return "media_records"
}
