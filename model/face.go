package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Float64List is stored as a JSON array column.
type Float64List []float64

func (l Float64List) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (l *Float64List) Scan(value any) error {
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
		return fmt.Errorf("unsupported type for Float64List: %T", value)
	}
	return json.Unmarshal(data, l)
}

// FaceGroup is one recurring person across a user's media. Centroid is
// the running mean of all member encodings.
type FaceGroup struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
	UserEmail string    `gorm:"not null;index" json:"user_email"`

	Centroid Float64List `gorm:"type:json" json:"-"`
	Size     int         `gorm:"not null;default:0" json:"size"`
}

func (FaceGroup) TableName() string {
	return "face_groups"
}

// FaceAppearance links one detected face to its group and the media it
// was seen in.
type FaceAppearance struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	GroupID   uint      `gorm:"not null;index" json:"group_id"`
	MediaID   uint      `gorm:"not null;index" json:"media_id"`
}

func (FaceAppearance) TableName() string {
	return "face_appearances"
}
