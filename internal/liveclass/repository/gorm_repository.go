package repository

import (
	"time"

	"liveclass-backend/internal/liveclass/domain"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// gormLiveClassRepository implements LiveClassRepository using GORM
type gormLiveClassRepository struct {
	db *gorm.DB
}

// NewGormLiveClassRepository creates a new GORM-based LiveClassRepository
func NewGormLiveClassRepository(db *gorm.DB) LiveClassRepository {
	return &gormLiveClassRepository{db: db}
}

// withCourse preloads only the columns notifications and student views need
func withCourse(db *gorm.DB) *gorm.DB {
	return db.Preload("Course", func(tx *gorm.DB) *gorm.DB {
		return tx.Select("id", "title")
	})
}

func (r *gormLiveClassRepository) Create(lc *domain.LiveClass) error {
	if lc.ID == "" {
		lc.ID = uuid.New().String()
	}
	if lc.Status == "" {
		lc.Status = domain.StatusScheduled
	}
	now := time.Now()
	lc.CreatedAt = now
	lc.UpdatedAt = now
	return errors.Wrap(r.db.Omit("Course").Create(lc).Error, "create live class")
}

func (r *gormLiveClassRepository) FindByID(id string) (*domain.LiveClass, error) {
	var lc domain.LiveClass
	err := withCourse(r.db).Where("id = ?", id).First(&lc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "find live class")
	}
	return &lc, nil
}

func (r *gormLiveClassRepository) UpdateDetails(lc *domain.LiveClass) error {
	lc.UpdatedAt = time.Now()
	err := r.db.Model(&domain.LiveClass{}).Where("id = ?", lc.ID).
		Updates(map[string]interface{}{
			"title":            lc.Title,
			"description":      lc.Description,
			"scheduled_at":     lc.ScheduledAt,
			"duration_minutes": lc.DurationMinutes,
			"meeting_url":      lc.MeetingURL,
			"batch_id":         lc.BatchID,
			"section_id":       lc.SectionID,
			"updated_at":       lc.UpdatedAt,
		}).Error
	return errors.Wrap(err, "update live class")
}

func (r *gormLiveClassRepository) Delete(id string) error {
	return errors.Wrap(r.db.Delete(&domain.LiveClass{}, "id = ?", id).Error, "delete live class")
}

func (r *gormLiveClassRepository) UpdateStatus(id string, from, to domain.Status) (bool, error) {
	if !from.CanAdvanceTo(to) {
		return false, errors.Errorf("refusing status change %s -> %s", from, to)
	}
	result := r.db.Model(&domain.LiveClass{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, errors.Wrap(result.Error, "update live class status")
	}
	return result.RowsAffected > 0, nil
}

func (r *gormLiveClassRepository) SetRecording(id, recordingURL string) error {
	err := r.db.Model(&domain.LiveClass{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"recording_url": recordingURL,
			"status":        domain.StatusCompleted,
			"updated_at":    time.Now(),
		}).Error
	return errors.Wrap(err, "set live class recording")
}

func (r *gormLiveClassRepository) MarkNotifySent(id string) error {
	return r.latch(id, "notify_sent")
}

func (r *gormLiveClassRepository) MarkRecordingNotifySent(id string) error {
	return r.latch(id, "recording_notify_sent")
}

func (r *gormLiveClassRepository) latch(id, column string) error {
	err := r.db.Model(&domain.LiveClass{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			column:       true,
			"updated_at": time.Now(),
		}).Error
	return errors.Wrapf(err, "set %s", column)
}

func (r *gormLiveClassRepository) FindPendingReminders(now time.Time, lead time.Duration) ([]*domain.LiveClass, error) {
	var classes []*domain.LiveClass
	err := withCourse(r.db).
		Where("status = ? AND notify_sent = ? AND scheduled_at >= ? AND scheduled_at <= ?",
			domain.StatusScheduled, false, now, now.Add(lead)).
		Order("scheduled_at ASC").
		Find(&classes).Error
	return classes, errors.Wrap(err, "find pending reminders")
}

func (r *gormLiveClassRepository) FindPendingRecordingNotifications() ([]*domain.LiveClass, error) {
	var classes []*domain.LiveClass
	err := withCourse(r.db).
		Where("status = ? AND recording_url IS NOT NULL AND recording_url <> '' AND recording_notify_sent = ?",
			domain.StatusCompleted, false).
		Find(&classes).Error
	return classes, errors.Wrap(err, "find pending recording notifications")
}

func (r *gormLiveClassRepository) FindActiveBefore(now time.Time) ([]*domain.LiveClass, error) {
	var classes []*domain.LiveClass
	err := r.db.
		Where("(status = ? AND scheduled_at <= ?) OR status = ?",
			domain.StatusScheduled, now, domain.StatusLive).
		Find(&classes).Error
	return classes, errors.Wrap(err, "find active live classes")
}

func (r *gormLiveClassRepository) ListForCourse(courseID string) ([]*domain.LiveClass, error) {
	var classes []*domain.LiveClass
	err := withCourse(r.db).Where("course_id = ?", courseID).
		Order("scheduled_at DESC").
		Find(&classes).Error
	return classes, errors.Wrap(err, "list live classes")
}

func (r *gormLiveClassRepository) FindBetweenForCourses(courseIDs []string, from, to time.Time) ([]*domain.LiveClass, error) {
	if len(courseIDs) == 0 {
		return nil, nil
	}
	var classes []*domain.LiveClass
	err := withCourse(r.db).
		Where("course_id IN ? AND scheduled_at >= ? AND scheduled_at <= ?", courseIDs, from, to).
		Order("scheduled_at ASC").
		Find(&classes).Error
	return classes, errors.Wrap(err, "find live classes in range")
}

func (r *gormLiveClassRepository) FindUpcomingForCourses(courseIDs []string, now time.Time, limit int) ([]*domain.LiveClass, error) {
	if len(courseIDs) == 0 {
		return nil, nil
	}
	var classes []*domain.LiveClass
	err := withCourse(r.db).
		Where("course_id IN ? AND scheduled_at >= ? AND status IN ?",
			courseIDs, now, []domain.Status{domain.StatusScheduled, domain.StatusLive}).
		Order("scheduled_at ASC").
		Limit(limit).
		Find(&classes).Error
	return classes, errors.Wrap(err, "find upcoming live classes")
}

func (r *gormLiveClassRepository) FindRecordingsForCourse(courseID string) ([]*domain.LiveClass, error) {
	var classes []*domain.LiveClass
	err := r.db.
		Where("course_id = ? AND status = ? AND recording_url IS NOT NULL AND recording_url <> ''",
			courseID, domain.StatusCompleted).
		Order("scheduled_at DESC").
		Find(&classes).Error
	return classes, errors.Wrap(err, "find recordings")
}
