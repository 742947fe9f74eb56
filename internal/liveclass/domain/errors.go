package domain

import "errors"

var (
	ErrLiveClassNotFound      = errors.New("live class not found")
	ErrCourseNotFound         = errors.New("course not found")
	ErrNotEnrolled            = errors.New("you are not enrolled in this course")
	ErrScheduledInPast        = errors.New("scheduled time must be in the future")
	ErrInvalidDuration        = errors.New("duration must be a positive number of minutes")
	ErrOnlyScheduledCanGoLive = errors.New("can only mark scheduled classes as live")
	ErrAlreadyCompleted       = errors.New("class is already completed")
	ErrNotEditable            = errors.New("schedule can only be changed while the class is scheduled")
	ErrRecordingURLRequired   = errors.New("recording url is required")
)

// IsValidationError reports whether err is a caller mistake rather than an internal failure
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrScheduledInPast,
		ErrInvalidDuration,
		ErrOnlyScheduledCanGoLive,
		ErrAlreadyCompleted,
		ErrNotEditable,
		ErrRecordingURLRequired,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
