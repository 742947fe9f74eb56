package usecase

import (
	"context"
	"time"

	"liveclass-backend/internal/liveclass/domain"
	"liveclass-backend/internal/notification"
)

// LiveClassUsecase defines the interface for live class business logic
type LiveClassUsecase interface {
	// Create schedules a new live class for an existing course
	Create(req CreateLiveClassRequest) (*domain.LiveClass, error)

	// Update edits the details of a live class
	Update(id string, req UpdateLiveClassRequest) (*domain.LiveClass, error)

	// MarkAsLive moves a SCHEDULED class to LIVE
	MarkAsLive(id string) (*domain.LiveClass, error)

	// MarkAsCompleted moves a class to COMPLETED
	MarkAsCompleted(id string) (*domain.LiveClass, error)

	// UploadRecording attaches a recording and forces the class to COMPLETED
	UploadRecording(id, recordingURL string) (*domain.LiveClass, error)

	// TriggerNotification sends the reminder now and latches it
	TriggerNotification(ctx context.Context, id string) (*notification.Outcome, error)

	// ListForCourse returns every class of a course for administrators
	ListForCourse(courseID string) ([]*domain.LiveClass, error)

	// GetByID returns a class for administrators
	GetByID(id string) (*domain.LiveClass, error)

	// Delete removes a class
	Delete(id string) error

	// TodayForStudent returns today's classes in the student's enrolled courses
	TodayForStudent(userID string) ([]domain.StudentLiveClass, error)

	// UpcomingForStudent returns upcoming classes in the student's enrolled courses
	UpcomingForStudent(userID string) ([]domain.StudentLiveClass, error)

	// CourseClassesForStudent returns a course's classes as shown in the catalog and curriculum.
	// The meeting URL is withheld from users not enrolled in the course.
	CourseClassesForStudent(userID, courseID string) ([]domain.StudentLiveClass, error)

	// RecordingsForCourse returns recordings of a course the student is enrolled in
	RecordingsForCourse(userID, courseID string) ([]Recording, error)
}

// CreateLiveClassRequest represents the request body for scheduling a class
type CreateLiveClassRequest struct {
	CourseID        string    `json:"course_id" binding:"required"`
	BatchID         *string   `json:"batch_id"`
	SectionID       *string   `json:"section_id"`
	Title           string    `json:"title" binding:"required,max=200"`
	Description     *string   `json:"description" binding:"omitempty,max=2000"`
	ScheduledAt     time.Time `json:"scheduled_at" binding:"required,future"`
	DurationMinutes int       `json:"duration_minutes" binding:"omitempty,min=5,max=480"`
	MeetingURL      string    `json:"meeting_url" binding:"required,url"`
}

// UpdateLiveClassRequest represents the fields that can be updated
type UpdateLiveClassRequest struct {
	Title           *string    `json:"title,omitempty" binding:"omitempty,min=1,max=200"`
	Description     *string    `json:"description,omitempty" binding:"omitempty,max=2000"`
	ScheduledAt     *time.Time `json:"scheduled_at,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty" binding:"omitempty,min=5,max=480"`
	MeetingURL      *string    `json:"meeting_url,omitempty" binding:"omitempty,url"`
	BatchID         *string    `json:"batch_id,omitempty"`
	SectionID       *string    `json:"section_id,omitempty"`
}

// Recording is the student-facing view of a recorded class
type Recording struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     *string   `json:"description,omitempty"`
	ScheduledAt     time.Time `json:"scheduled_at"`
	DurationMinutes int       `json:"duration_minutes"`
	RecordingURL    string    `json:"recording_url"`
}
