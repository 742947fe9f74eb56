package domain

import "time"

func (s Status) rank() int {
	switch s {
	case StatusScheduled:
		return 0
	case StatusLive:
		return 1
	case StatusCompleted:
		return 2
	default:
		return -1
	}
}

// IsValid reports whether s is one of the known statuses
func (s Status) IsValid() bool {
	return s.rank() >= 0
}

// CanAdvanceTo reports whether moving from s to next keeps the lifecycle monotonic
func (s Status) CanAdvanceTo(next Status) bool {
	return s.IsValid() && next.IsValid() && next.rank() > s.rank()
}

// NextStatus returns the status the class should hold at now.
// The boolean is false when no transition is due.
func NextStatus(lc *LiveClass, now time.Time) (Status, bool) {
	end := lc.EndsAt()

	switch lc.Status {
	case StatusScheduled:
		if now.Before(lc.ScheduledAt) {
			return lc.Status, false
		}
		// Discovered after the end: skip LIVE entirely
		if now.Before(end) {
			return StatusLive, true
		}
		return StatusCompleted, true
	case StatusLive:
		if now.Before(end) {
			return lc.Status, false
		}
		return StatusCompleted, true
	default:
		return lc.Status, false
	}
}

// ValidateMarkLive checks a manual SCHEDULED -> LIVE transition
func ValidateMarkLive(lc *LiveClass) error {
	if lc.Status != StatusScheduled {
		return ErrOnlyScheduledCanGoLive
	}
	return nil
}

// ValidateMarkCompleted checks a manual transition to COMPLETED
func ValidateMarkCompleted(lc *LiveClass) error {
	if lc.Status == StatusCompleted {
		return ErrAlreadyCompleted
	}
	return nil
}

// ValidateScheduledAt requires t to be strictly after now
func ValidateScheduledAt(t, now time.Time) error {
	if !t.After(now) {
		return ErrScheduledInPast
	}
	return nil
}

// ValidateDuration requires a positive number of minutes
func ValidateDuration(minutes int) error {
	if minutes <= 0 {
		return ErrInvalidDuration
	}
	return nil
}

// StateMachine exposes the automatic transition rule behind an interface-friendly value
type StateMachine struct{}

func (StateMachine) NextStatus(lc *LiveClass, now time.Time) (Status, bool) {
	return NextStatus(lc, now)
}
