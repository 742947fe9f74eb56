package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Type identifies what a push notification announces
type Type string

const (
	TypeLiveClass          Type = "LIVE_CLASS"
	TypeRecordingAvailable Type = "RECORDING_AVAILABLE"
)

// NotificationLog is an append-only audit row, one per targeted user
type NotificationLog struct {
	ID          string         `json:"id" gorm:"primaryKey"`
	UserID      string         `json:"user_id" gorm:"index;not null"`
	Type        Type           `json:"type" gorm:"not null"`
	Title       string         `json:"title"`
	Body        string         `json:"body"`
	Data        datatypes.JSON `json:"data"`
	LiveClassID *string        `json:"live_class_id,omitempty" gorm:"index"`
	Sent        bool           `json:"sent"`
	SentAt      time.Time      `json:"sent_at"`
}
