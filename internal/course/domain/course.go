package domain

import "time"

// Course is the minimal view of a course the live-class features need
type Course struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Title     string    `json:"title" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Enrollment links a user to a course they have access to
type Enrollment struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"uniqueIndex:idx_enrollment_user_course;not null"`
	CourseID  string    `json:"course_id" gorm:"uniqueIndex:idx_enrollment_user_course;index;not null"`
	CreatedAt time.Time `json:"created_at"`
}
