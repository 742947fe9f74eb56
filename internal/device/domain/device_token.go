package domain

import "time"

// Platform identifies the kind of device a push token belongs to
type Platform string

const (
	PlatformAndroid Platform = "android"
	PlatformIOS     Platform = "ios"
	PlatformWeb     Platform = "web"
)

// IsValid reports whether p is a supported platform
func (p Platform) IsValid() bool {
	switch p {
	case PlatformAndroid, PlatformIOS, PlatformWeb:
		return true
	}
	return false
}

// DeviceToken represents a push registration token for one of a user's devices
type DeviceToken struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"uniqueIndex:idx_device_user_token;index;not null"`
	Token     string    `json:"-" gorm:"uniqueIndex:idx_device_user_token;not null"` // Don't expose token in JSON
	Platform  Platform  `json:"platform" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
