package domain

import (
	"math"
	"time"
)

// DefaultJoinWindow is how long before the start the meeting URL is disclosed
const DefaultJoinWindow = 15 * time.Minute

// JoinView is the join-gating decision for one viewer at one instant
type JoinView struct {
	MeetingURL *string
	CanJoin    bool
	StartsIn   int
}

// Visibility decides whether the meeting URL is exposed at now.
// The URL is shown while the class is LIVE or within [start-window, end].
func Visibility(lc *LiveClass, now time.Time, window time.Duration) JoinView {
	windowStart := lc.ScheduledAt.Add(-window)
	windowEnd := lc.EndsAt()

	inWindow := !now.Before(windowStart) && !now.After(windowEnd)
	canJoin := lc.Status == StatusLive || inWindow

	view := JoinView{CanJoin: canJoin}
	if canJoin {
		url := lc.MeetingURL
		view.MeetingURL = &url
	}
	if lc.ScheduledAt.After(now) {
		view.StartsIn = int(math.Round(lc.ScheduledAt.Sub(now).Minutes()))
	}
	return view
}

// StudentLiveClass is the non-administrative projection of a live class
type StudentLiveClass struct {
	ID              string    `json:"id"`
	CourseID        string    `json:"course_id"`
	CourseName      string    `json:"course_name,omitempty"`
	BatchID         *string   `json:"batch_id,omitempty"`
	SectionID       *string   `json:"section_id,omitempty"`
	Title           string    `json:"title"`
	Description     *string   `json:"description,omitempty"`
	ScheduledAt     time.Time `json:"scheduled_at"`
	DurationMinutes int       `json:"duration_minutes"`
	Status          Status    `json:"status"`
	MeetingURL      *string   `json:"meeting_url"`
	CanJoin         bool      `json:"can_join"`
	StartsIn        int       `json:"starts_in"`
}

// ToStudentView applies Visibility and strips admin-only fields
func ToStudentView(lc *LiveClass, now time.Time, window time.Duration) StudentLiveClass {
	view := Visibility(lc, now, window)

	out := StudentLiveClass{
		ID:              lc.ID,
		CourseID:        lc.CourseID,
		BatchID:         lc.BatchID,
		SectionID:       lc.SectionID,
		Title:           lc.Title,
		Description:     lc.Description,
		ScheduledAt:     lc.ScheduledAt,
		DurationMinutes: lc.DurationMinutes,
		Status:          lc.Status,
		MeetingURL:      view.MeetingURL,
		CanJoin:         view.CanJoin,
		StartsIn:        view.StartsIn,
	}
	if lc.Course != nil {
		out.CourseName = lc.Course.Title
	}
	return out
}

// ToStudentViews maps a list with a single shared instant
func ToStudentViews(classes []*LiveClass, now time.Time, window time.Duration) []StudentLiveClass {
	out := make([]StudentLiveClass, 0, len(classes))
	for _, lc := range classes {
		out = append(out, ToStudentView(lc, now, window))
	}
	return out
}
