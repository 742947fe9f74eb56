package repository

import (
	"time"

	"liveclass-backend/internal/liveclass/domain"
)

// LiveClassRepository defines the interface for live class data access
type LiveClassRepository interface {
	// Create inserts a new live class
	Create(lc *domain.LiveClass) error

	// FindByID finds a live class by its ID, returning nil when absent
	FindByID(id string) (*domain.LiveClass, error)

	// UpdateDetails persists the admin-editable fields of lc
	UpdateDetails(lc *domain.LiveClass) error

	// Delete removes a live class
	Delete(id string) error

	// UpdateStatus moves a class from one status to the next.
	// Returns false when the stored status no longer equals from.
	UpdateStatus(id string, from, to domain.Status) (bool, error)

	// SetRecording stores the recording URL and forces the class to COMPLETED
	SetRecording(id, recordingURL string) error

	// MarkNotifySent latches the pre-class reminder flag
	MarkNotifySent(id string) error

	// MarkRecordingNotifySent latches the recording-ready flag
	MarkRecordingNotifySent(id string) error

	// FindPendingReminders returns SCHEDULED classes without a reminder
	// whose start falls within [now, now+lead]
	FindPendingReminders(now time.Time, lead time.Duration) ([]*domain.LiveClass, error)

	// FindPendingRecordingNotifications returns COMPLETED classes with a
	// recording whose recording alert has not been sent
	FindPendingRecordingNotifications() ([]*domain.LiveClass, error)

	// FindActiveBefore returns SCHEDULED classes that started at or before now
	// and every LIVE class, for status reconciliation
	FindActiveBefore(now time.Time) ([]*domain.LiveClass, error)

	// ListForCourse returns every class of a course, newest first
	ListForCourse(courseID string) ([]*domain.LiveClass, error)

	// FindBetweenForCourses returns classes of the courses scheduled within [from, to]
	FindBetweenForCourses(courseIDs []string, from, to time.Time) ([]*domain.LiveClass, error)

	// FindUpcomingForCourses returns not-yet-finished classes starting at or after now
	FindUpcomingForCourses(courseIDs []string, now time.Time, limit int) ([]*domain.LiveClass, error)

	// FindRecordingsForCourse returns completed classes with a recording, newest first
	FindRecordingsForCourse(courseID string) ([]*domain.LiveClass, error)
}
