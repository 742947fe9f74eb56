package repository

import (
	coursedomain "liveclass-backend/internal/course/domain"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// CourseRepository exposes the course and enrollment lookups live classes depend on
type CourseRepository interface {
	FindByID(id string) (*coursedomain.Course, error)
	FindEnrolledUserIDs(courseID string) ([]string, error)
	FindEnrolledCourseIDs(userID string) ([]string, error)
	IsEnrolled(userID, courseID string) (bool, error)
}

type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository creates a gorm-backed CourseRepository
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &courseRepository{db: db}
}

func (r *courseRepository) FindByID(id string) (*coursedomain.Course, error) {
	var course coursedomain.Course
	err := r.db.Where("id = ?", id).First(&course).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "find course")
	}
	return &course, nil
}

func (r *courseRepository) FindEnrolledUserIDs(courseID string) ([]string, error) {
	var userIDs []string
	err := r.db.Model(&coursedomain.Enrollment{}).
		Where("course_id = ?", courseID).
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return nil, errors.Wrapf(err, "find enrolled users of course %s", courseID)
	}
	return userIDs, nil
}

func (r *courseRepository) FindEnrolledCourseIDs(userID string) ([]string, error) {
	var courseIDs []string
	err := r.db.Model(&coursedomain.Enrollment{}).
		Where("user_id = ?", userID).
		Pluck("course_id", &courseIDs).Error
	if err != nil {
		return nil, errors.Wrapf(err, "find enrollments of user %s", userID)
	}
	return courseIDs, nil
}

func (r *courseRepository) IsEnrolled(userID, courseID string) (bool, error) {
	var count int64
	err := r.db.Model(&coursedomain.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "check enrollment")
	}
	return count > 0, nil
}
