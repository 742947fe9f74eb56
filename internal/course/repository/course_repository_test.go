package repository

import (
	"testing"

	coursedomain "liveclass-backend/internal/course/domain"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupRepo(t *testing.T) CourseRepository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&coursedomain.Course{}, &coursedomain.Enrollment{}))
	require.NoError(t, db.Create(&[]coursedomain.Course{
		{ID: "course-1", Title: "Calculus I"},
		{ID: "course-2", Title: "Physics"},
	}).Error)
	require.NoError(t, db.Create(&[]coursedomain.Enrollment{
		{ID: "e1", UserID: "user-a", CourseID: "course-1"},
		{ID: "e2", UserID: "user-b", CourseID: "course-1"},
		{ID: "e3", UserID: "user-a", CourseID: "course-2"},
	}).Error)
	return NewCourseRepository(db)
}

func TestCourseRepository(t *testing.T) {
	repo := setupRepo(t)

	course, err := repo.FindByID("course-2")
	require.NoError(t, err)
	require.NotNil(t, course)
	assert.Equal(t, "Physics", course.Title)

	missing, err := repo.FindByID("course-9")
	require.NoError(t, err)
	assert.Nil(t, missing)

	users, err := repo.FindEnrolledUserIDs("course-1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"user-a", "user-b"}, users)

	courses, err := repo.FindEnrolledCourseIDs("user-a")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"course-1", "course-2"}, courses)

	enrolled, err := repo.IsEnrolled("user-b", "course-2")
	require.NoError(t, err)
	assert.False(t, enrolled)

	enrolled, err = repo.IsEnrolled("user-b", "course-1")
	require.NoError(t, err)
	assert.True(t, enrolled)
}
