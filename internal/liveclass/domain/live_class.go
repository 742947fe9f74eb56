package domain

import (
	"time"

	coursedomain "liveclass-backend/internal/course/domain"
)

// Status represents where a live class is in its lifecycle
type Status string

const (
	StatusScheduled Status = "SCHEDULED"
	StatusLive      Status = "LIVE"
	StatusCompleted Status = "COMPLETED"
)

// LiveClass is a time-bound online session attached to a course
type LiveClass struct {
	ID                  string               `json:"id" gorm:"primaryKey"`
	CourseID            string               `json:"course_id" gorm:"index;not null"`
	Course              *coursedomain.Course `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	BatchID             *string              `json:"batch_id,omitempty" gorm:"index"`
	SectionID           *string              `json:"section_id,omitempty" gorm:"index"`
	Title               string               `json:"title" gorm:"not null"`
	Description         *string              `json:"description,omitempty"`
	ScheduledAt         time.Time            `json:"scheduled_at" gorm:"index;not null"`
	DurationMinutes     int                  `json:"duration_minutes" gorm:"not null"`
	MeetingURL          string               `json:"meeting_url" gorm:"not null"`
	RecordingURL        *string              `json:"recording_url,omitempty"`
	Status              Status               `json:"status" gorm:"index;default:SCHEDULED"`
	NotifySent          bool                 `json:"notify_sent" gorm:"default:false"`
	RecordingNotifySent bool                 `json:"recording_notify_sent" gorm:"default:false"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
}

// EndsAt returns the instant the class is expected to finish
func (lc *LiveClass) EndsAt() time.Time {
	return lc.ScheduledAt.Add(time.Duration(lc.DurationMinutes) * time.Minute)
}

// CourseTitle falls back to a generic name when the course was not preloaded
func (lc *LiveClass) CourseTitle() string {
	if lc.Course != nil && lc.Course.Title != "" {
		return lc.Course.Title
	}
	return "Your course"
}

// HasRecording reports whether a non-empty recording URL is attached
func (lc *LiveClass) HasRecording() bool {
	return lc.RecordingURL != nil && *lc.RecordingURL != ""
}
