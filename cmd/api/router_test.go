package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	coursedomain "liveclass-backend/internal/course/domain"
	courseRepo "liveclass-backend/internal/course/repository"
	deviceDelivery "liveclass-backend/internal/device/delivery"
	devicedomain "liveclass-backend/internal/device/domain"
	deviceRepo "liveclass-backend/internal/device/repository"
	liveClassDelivery "liveclass-backend/internal/liveclass/delivery"
	liveclassdomain "liveclass-backend/internal/liveclass/domain"
	liveClassRepo "liveclass-backend/internal/liveclass/repository"
	liveClassUsecase "liveclass-backend/internal/liveclass/usecase"
	"liveclass-backend/internal/notification"
	notificationDelivery "liveclass-backend/internal/notification/delivery"
	notificationdomain "liveclass-backend/internal/notification/domain"
	notificationRepo "liveclass-backend/internal/notification/repository"
	"liveclass-backend/pkg/config"
	"liveclass-backend/pkg/fcm"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret"

func token(t *testing.T, userID, role string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&coursedomain.Course{}, &coursedomain.Enrollment{}, &liveclassdomain.LiveClass{}, &devicedomain.DeviceToken{}, &notificationdomain.NotificationLog{}))
	require.NoError(t, db.Create(&coursedomain.Course{ID: "course-1", Title: "Calculus I"}).Error)
	require.NoError(t, db.Create(&coursedomain.Enrollment{ID: "e1", UserID: "student", CourseID: "course-1"}).Error)

	courses := courseRepo.NewCourseRepository(db)
	classes := liveClassRepo.NewGormLiveClassRepository(db)
	devices := deviceRepo.NewDeviceTokenRepository(db)
	logs := notificationRepo.NewLogRepository(db)
	notifier := notification.NewService(fcm.NewDispatcher(nil), courses, devices, logs, notification.Options{})
	uc := liveClassUsecase.NewLiveClassUsecase(classes, courses, notifier, 0)

	handler := NewHandler(
		&config.Config{JWTSecret: testSecret},
		liveClassDelivery.NewLiveClassHandler(uc),
		liveClassDelivery.NewWorkerHandler(nil, notifier),
		deviceDelivery.NewDeviceHandler(devices),
		notificationDelivery.NewNotificationHandler(logs),
	)
	return handler.Router()
}

func do(t *testing.T, r http.Handler, method, path, bearer string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t)
	w := do(t, r, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/api/admin/live-classes/course/course-1", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, r, http.MethodGet, "/api/admin/live-classes/course/course-1", token(t, "student", "student"), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, r, http.MethodGet, "/api/admin/live-classes/course/course-1", token(t, "instructor", "admin"), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLiveClassLifecycleOverHTTP(t *testing.T) {
	r := newTestRouter(t)
	admin := token(t, "instructor", "admin")
	student := token(t, "student", "student")

	w := do(t, r, http.MethodPost, "/api/admin/live-classes", admin, gin.H{
		"course_id":    "course-1",
		"title":        "Derivatives",
		"scheduled_at": time.Now().Add(-time.Hour),
		"meeting_url":  "https://meet.example.com/abc",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/api/admin/live-classes", admin, gin.H{
		"course_id":    "course-9",
		"title":        "Derivatives",
		"scheduled_at": time.Now().Add(2 * time.Hour),
		"meeting_url":  "https://meet.example.com/abc",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodPost, "/api/admin/live-classes", admin, gin.H{
		"course_id":    "course-1",
		"title":        "Derivatives",
		"scheduled_at": time.Now().Add(2 * time.Hour),
		"meeting_url":  "https://meet.example.com/abc",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created liveclassdomain.LiveClass
	decode(t, w, &created)
	assert.Equal(t, liveclassdomain.StatusScheduled, created.Status)

	// Too early to join: the meeting URL stays hidden
	w = do(t, r, http.MethodGet, "/api/live-classes/upcoming", student, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var upcoming struct {
		LiveClasses []liveclassdomain.StudentLiveClass `json:"live_classes"`
	}
	decode(t, w, &upcoming)
	require.Len(t, upcoming.LiveClasses, 1)
	assert.Nil(t, upcoming.LiveClasses[0].MeetingURL)
	assert.False(t, upcoming.LiveClasses[0].CanJoin)
	assert.Contains(t, w.Body.String(), `"meeting_url":null`)

	w = do(t, r, http.MethodPatch, "/api/admin/live-classes/"+created.ID+"/live", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodPatch, "/api/admin/live-classes/"+created.ID+"/live", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Once LIVE the URL is shown regardless of the window
	w = do(t, r, http.MethodGet, "/api/courses/course-1/live-classes", student, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var catalog struct {
		LiveClasses []liveclassdomain.StudentLiveClass `json:"live_classes"`
	}
	decode(t, w, &catalog)
	require.Len(t, catalog.LiveClasses, 1)
	require.NotNil(t, catalog.LiveClasses[0].MeetingURL)
	assert.Equal(t, "https://meet.example.com/abc", *catalog.LiveClasses[0].MeetingURL)

	// Outsiders see the schedule without the join link
	w = do(t, r, http.MethodGet, "/api/courses/course-1/live-classes", token(t, "stranger", "student"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"meeting_url":null`)
	assert.NotContains(t, w.Body.String(), "meet.example.com")

	w = do(t, r, http.MethodPost, "/api/admin/live-classes/"+created.ID+"/recording", admin, gin.H{"recording_url": "https://cdn.example.com/rec.mp4"})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/api/courses/course-1/recordings", student, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "https://cdn.example.com/rec.mp4")

	w = do(t, r, http.MethodGet, "/api/courses/course-1/recordings", token(t, "stranger", "student"), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, r, http.MethodPost, "/api/devices", student, gin.H{"token": "student-phone"})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodPost, "/api/admin/live-classes/"+created.ID+"/notify", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Delivery is disabled here, yet the targeted student is still logged
	w = do(t, r, http.MethodGet, "/api/admin/live-classes/"+created.ID+"/notifications", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)
	assert.Contains(t, w.Body.String(), `"user_id":"student"`)

	w = do(t, r, http.MethodDelete, "/api/admin/live-classes/"+created.ID, admin, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/api/admin/live-classes/"+created.ID, admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeviceRegistration(t *testing.T) {
	r := newTestRouter(t)
	student := token(t, "student", "student")

	w := do(t, r, http.MethodPost, "/api/devices", student, gin.H{"token": "tok-1", "platform": "ios"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/api/devices", student, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"platform":"ios"`)
	assert.NotContains(t, w.Body.String(), "tok-1")

	w = do(t, r, http.MethodPost, "/api/devices", student, gin.H{"token": "tok-1", "platform": "blackberry"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/api/devices", student, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodDelete, "/api/devices/tok-1", student, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWorkerRoutesWhenDisabled(t *testing.T) {
	r := newTestRouter(t)
	admin := token(t, "instructor", "admin")

	w := do(t, r, http.MethodGet, "/api/admin/worker", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"enabled":false}`, w.Body.String())

	w = do(t, r, http.MethodPost, "/api/admin/worker/tick", admin, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = do(t, r, http.MethodPost, "/api/admin/notifications/test", admin, gin.H{"token": "tok-x"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"delivered":false}`, w.Body.String())
}
