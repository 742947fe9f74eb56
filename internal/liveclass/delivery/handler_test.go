package delivery

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"liveclass-backend/internal/liveclass/domain"
	"liveclass-backend/internal/liveclass/usecase"
	"liveclass-backend/internal/notification"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubUsecase implements only what the handler tests call
type stubUsecase struct {
	usecase.LiveClassUsecase

	notifyCtxErr error
	notifiedID   string
	courseUser   string
	courseID     string
}

func (s *stubUsecase) TriggerNotification(ctx context.Context, id string) (*notification.Outcome, error) {
	s.notifyCtxErr = ctx.Err()
	s.notifiedID = id
	if id == "missing" {
		return nil, domain.ErrLiveClassNotFound
	}
	return &notification.Outcome{Users: 2, Tokens: 3, Success: 3}, nil
}

func (s *stubUsecase) CourseClassesForStudent(userID, courseID string) ([]domain.StudentLiveClass, error) {
	s.courseUser = userID
	s.courseID = courseID
	return []domain.StudentLiveClass{}, nil
}

func newLiveClassRouter(uc usecase.LiveClassUsecase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewLiveClassHandler(uc)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", "student-1")
		c.Next()
	})
	r.POST("/live-classes/:id/notify", h.TriggerNotification)
	r.GET("/courses/:courseId/live-classes", h.CourseClasses)
	return r
}

func TestTriggerNotificationOutlivesClientDisconnect(t *testing.T) {
	uc := &stubUsecase{}
	r := newLiveClassRouter(uc)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/live-classes/lc-1/notify", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "lc-1", uc.notifiedID)
	assert.NoError(t, uc.notifyCtxErr)
	assert.Contains(t, w.Body.String(), `"success":3`)
}

func TestTriggerNotificationNotFound(t *testing.T) {
	w := serve(newLiveClassRouter(&stubUsecase{}), http.MethodPost, "/live-classes/missing/notify", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCourseClassesPassesCaller(t *testing.T) {
	uc := &stubUsecase{}
	w := serve(newLiveClassRouter(uc), http.MethodGet, "/courses/course-1/live-classes", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "student-1", uc.courseUser)
	assert.Equal(t, "course-1", uc.courseID)
}
