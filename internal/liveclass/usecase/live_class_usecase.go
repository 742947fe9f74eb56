package usecase

import (
	"context"
	"log"
	"time"

	courserepo "liveclass-backend/internal/course/repository"
	"liveclass-backend/internal/liveclass/domain"
	"liveclass-backend/internal/liveclass/repository"
	"liveclass-backend/internal/notification"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	defaultDurationMinutes = 60
	upcomingLimit          = 20
)

// ReminderSender sends the pre-class reminder for a live class
type ReminderSender interface {
	SendLiveClassReminder(ctx context.Context, lc *domain.LiveClass) (*notification.Outcome, error)
}

// liveClassUsecase implements LiveClassUsecase interface
type liveClassUsecase struct {
	liveClassRepo repository.LiveClassRepository
	courseRepo    courserepo.CourseRepository
	reminders     ReminderSender
	joinWindow    time.Duration
	now           func() time.Time
}

// NewLiveClassUsecase creates a new instance of liveClassUsecase
func NewLiveClassUsecase(
	liveClassRepo repository.LiveClassRepository,
	courseRepo courserepo.CourseRepository,
	reminders ReminderSender,
	joinWindow time.Duration,
) LiveClassUsecase {
	if joinWindow <= 0 {
		joinWindow = domain.DefaultJoinWindow
	}
	return &liveClassUsecase{
		liveClassRepo: liveClassRepo,
		courseRepo:    courseRepo,
		reminders:     reminders,
		joinWindow:    joinWindow,
		now:           time.Now,
	}
}

func (u *liveClassUsecase) Create(req CreateLiveClassRequest) (*domain.LiveClass, error) {
	course, err := u.courseRepo.FindByID(req.CourseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, domain.ErrCourseNotFound
	}

	if err := domain.ValidateScheduledAt(req.ScheduledAt, u.now()); err != nil {
		return nil, err
	}

	duration := req.DurationMinutes
	if duration == 0 {
		duration = defaultDurationMinutes
	}
	if err := domain.ValidateDuration(duration); err != nil {
		return nil, err
	}

	lc := &domain.LiveClass{
		ID:              uuid.New().String(),
		CourseID:        req.CourseID,
		BatchID:         emptyToNil(req.BatchID),
		SectionID:       emptyToNil(req.SectionID),
		Title:           req.Title,
		Description:     req.Description,
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: duration,
		MeetingURL:      req.MeetingURL,
		Status:          domain.StatusScheduled,
	}
	if err := u.liveClassRepo.Create(lc); err != nil {
		return nil, err
	}
	lc.Course = course

	log.Printf("[LiveClass] Created live class %s for course %s", lc.ID, lc.CourseID)
	return lc, nil
}

func (u *liveClassUsecase) Update(id string, req UpdateLiveClassRequest) (*domain.LiveClass, error) {
	lc, err := u.mustFind(id)
	if err != nil {
		return nil, err
	}

	if req.ScheduledAt != nil {
		if lc.Status != domain.StatusScheduled {
			return nil, domain.ErrNotEditable
		}
		if err := domain.ValidateScheduledAt(*req.ScheduledAt, u.now()); err != nil {
			return nil, err
		}
		lc.ScheduledAt = *req.ScheduledAt
	}
	if req.DurationMinutes != nil {
		if err := domain.ValidateDuration(*req.DurationMinutes); err != nil {
			return nil, err
		}
		lc.DurationMinutes = *req.DurationMinutes
	}
	if req.Title != nil && *req.Title != "" {
		lc.Title = *req.Title
	}
	if req.Description != nil {
		lc.Description = emptyToNil(req.Description)
	}
	if req.MeetingURL != nil && *req.MeetingURL != "" {
		lc.MeetingURL = *req.MeetingURL
	}
	if req.BatchID != nil {
		lc.BatchID = emptyToNil(req.BatchID)
	}
	if req.SectionID != nil {
		lc.SectionID = emptyToNil(req.SectionID)
	}

	if err := u.liveClassRepo.UpdateDetails(lc); err != nil {
		return nil, err
	}

	log.Printf("[LiveClass] Updated live class %s", id)
	return lc, nil
}

func (u *liveClassUsecase) MarkAsLive(id string) (*domain.LiveClass, error) {
	lc, err := u.mustFind(id)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateMarkLive(lc); err != nil {
		return nil, err
	}
	return u.advance(lc, domain.StatusLive)
}

func (u *liveClassUsecase) MarkAsCompleted(id string) (*domain.LiveClass, error) {
	lc, err := u.mustFind(id)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateMarkCompleted(lc); err != nil {
		return nil, err
	}
	return u.advance(lc, domain.StatusCompleted)
}

// advance persists a forward transition, re-checking if the worker moved the class first
func (u *liveClassUsecase) advance(lc *domain.LiveClass, next domain.Status) (*domain.LiveClass, error) {
	changed, err := u.liveClassRepo.UpdateStatus(lc.ID, lc.Status, next)
	if err != nil {
		return nil, err
	}
	if !changed {
		current, err := u.mustFind(lc.ID)
		if err != nil {
			return nil, err
		}
		if next == domain.StatusLive {
			if err := domain.ValidateMarkLive(current); err != nil {
				return nil, err
			}
		}
		if err := domain.ValidateMarkCompleted(current); err != nil {
			return nil, err
		}
		return nil, errors.Errorf("live class %s changed concurrently, retry", lc.ID)
	}

	lc.Status = next
	log.Printf("[LiveClass] Marked live class %s as %s", lc.ID, next)
	return lc, nil
}

func (u *liveClassUsecase) UploadRecording(id, recordingURL string) (*domain.LiveClass, error) {
	if recordingURL == "" {
		return nil, domain.ErrRecordingURLRequired
	}
	lc, err := u.mustFind(id)
	if err != nil {
		return nil, err
	}

	// A recording means the session is over, whatever the status said
	if err := u.liveClassRepo.SetRecording(id, recordingURL); err != nil {
		return nil, err
	}
	lc.RecordingURL = &recordingURL
	lc.Status = domain.StatusCompleted

	log.Printf("[LiveClass] Recording uploaded for live class %s", id)
	return lc, nil
}

func (u *liveClassUsecase) TriggerNotification(ctx context.Context, id string) (*notification.Outcome, error) {
	lc, err := u.mustFind(id)
	if err != nil {
		return nil, err
	}

	outcome, err := u.reminders.SendLiveClassReminder(ctx, lc)
	if err != nil {
		return nil, err
	}
	if err := u.liveClassRepo.MarkNotifySent(id); err != nil {
		return nil, err
	}

	log.Printf("[LiveClass] Notification triggered manually for live class %s", id)
	return outcome, nil
}

func (u *liveClassUsecase) ListForCourse(courseID string) ([]*domain.LiveClass, error) {
	return u.liveClassRepo.ListForCourse(courseID)
}

func (u *liveClassUsecase) GetByID(id string) (*domain.LiveClass, error) {
	return u.mustFind(id)
}

func (u *liveClassUsecase) Delete(id string) error {
	if _, err := u.mustFind(id); err != nil {
		return err
	}
	if err := u.liveClassRepo.Delete(id); err != nil {
		return err
	}
	log.Printf("[LiveClass] Deleted live class %s", id)
	return nil
}

func (u *liveClassUsecase) TodayForStudent(userID string) ([]domain.StudentLiveClass, error) {
	courseIDs, err := u.courseRepo.FindEnrolledCourseIDs(userID)
	if err != nil {
		return nil, err
	}
	if len(courseIDs) == 0 {
		return []domain.StudentLiveClass{}, nil
	}

	now := u.now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	endOfDay := startOfDay.Add(24*time.Hour - time.Nanosecond)

	classes, err := u.liveClassRepo.FindBetweenForCourses(courseIDs, startOfDay, endOfDay)
	if err != nil {
		return nil, err
	}
	return domain.ToStudentViews(classes, now, u.joinWindow), nil
}

func (u *liveClassUsecase) UpcomingForStudent(userID string) ([]domain.StudentLiveClass, error) {
	courseIDs, err := u.courseRepo.FindEnrolledCourseIDs(userID)
	if err != nil {
		return nil, err
	}
	if len(courseIDs) == 0 {
		return []domain.StudentLiveClass{}, nil
	}

	now := u.now()
	classes, err := u.liveClassRepo.FindUpcomingForCourses(courseIDs, now, upcomingLimit)
	if err != nil {
		return nil, err
	}
	return domain.ToStudentViews(classes, now, u.joinWindow), nil
}

// CourseClassesForStudent shows the schedule to anyone; only enrolled users get the join link
func (u *liveClassUsecase) CourseClassesForStudent(userID, courseID string) ([]domain.StudentLiveClass, error) {
	enrolled, err := u.courseRepo.IsEnrolled(userID, courseID)
	if err != nil {
		return nil, err
	}

	classes, err := u.liveClassRepo.ListForCourse(courseID)
	if err != nil {
		return nil, err
	}

	views := domain.ToStudentViews(classes, u.now(), u.joinWindow)
	if !enrolled {
		for i := range views {
			views[i].MeetingURL = nil
			views[i].CanJoin = false
		}
	}
	return views, nil
}

func (u *liveClassUsecase) RecordingsForCourse(userID, courseID string) ([]Recording, error) {
	enrolled, err := u.courseRepo.IsEnrolled(userID, courseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, domain.ErrNotEnrolled
	}

	classes, err := u.liveClassRepo.FindRecordingsForCourse(courseID)
	if err != nil {
		return nil, err
	}

	recordings := make([]Recording, 0, len(classes))
	for _, lc := range classes {
		if !lc.HasRecording() {
			continue
		}
		recordings = append(recordings, Recording{
			ID:              lc.ID,
			Title:           lc.Title,
			Description:     lc.Description,
			ScheduledAt:     lc.ScheduledAt,
			DurationMinutes: lc.DurationMinutes,
			RecordingURL:    *lc.RecordingURL,
		})
	}
	return recordings, nil
}

func (u *liveClassUsecase) mustFind(id string) (*domain.LiveClass, error) {
	lc, err := u.liveClassRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if lc == nil {
		return nil, domain.ErrLiveClassNotFound
	}
	return lc, nil
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
