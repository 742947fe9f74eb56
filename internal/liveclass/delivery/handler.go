package delivery

import (
	"context"
	"net/http"

	"liveclass-backend/internal/liveclass/domain"
	"liveclass-backend/internal/liveclass/usecase"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// LiveClassHandler handles live class HTTP requests for admins and students
type LiveClassHandler struct {
	liveClassUsecase usecase.LiveClassUsecase
}

// NewLiveClassHandler creates a new LiveClassHandler
func NewLiveClassHandler(liveClassUsecase usecase.LiveClassUsecase) *LiveClassHandler {
	return &LiveClassHandler{
		liveClassUsecase: liveClassUsecase,
	}
}

// UploadRecordingRequest represents the request body for attaching a recording
type UploadRecordingRequest struct {
	RecordingURL string `json:"recording_url" binding:"required,url"`
}

// respondError maps domain errors to HTTP status codes
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrLiveClassNotFound), errors.Is(err, domain.ErrCourseNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotEnrolled):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case domain.IsValidationError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// Create schedules a live class
// POST /api/admin/live-classes
func (h *LiveClassHandler) Create(c *gin.Context) {
	var req usecase.CreateLiveClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lc, err := h.liveClassUsecase.Create(req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, lc)
}

// Update edits a live class
// PUT /api/admin/live-classes/:id
func (h *LiveClassHandler) Update(c *gin.Context) {
	var req usecase.UpdateLiveClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lc, err := h.liveClassUsecase.Update(c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, lc)
}

// GetByID returns a live class with admin-only fields
// GET /api/admin/live-classes/:id
func (h *LiveClassHandler) GetByID(c *gin.Context) {
	lc, err := h.liveClassUsecase.GetByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, lc)
}

// ListForCourse returns all live classes of a course
// GET /api/admin/live-classes/course/:courseId
func (h *LiveClassHandler) ListForCourse(c *gin.Context) {
	classes, err := h.liveClassUsecase.ListForCourse(c.Param("courseId"))
	if err != nil {
		respondError(c, err)
		return
	}
	if classes == nil {
		classes = []*domain.LiveClass{}
	}

	c.JSON(http.StatusOK, gin.H{"live_classes": classes, "count": len(classes)})
}

// Delete removes a live class
// DELETE /api/admin/live-classes/:id
func (h *LiveClassHandler) Delete(c *gin.Context) {
	if err := h.liveClassUsecase.Delete(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Live class deleted successfully"})
}

// MarkAsLive starts a scheduled class
// PATCH /api/admin/live-classes/:id/live
func (h *LiveClassHandler) MarkAsLive(c *gin.Context) {
	lc, err := h.liveClassUsecase.MarkAsLive(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, lc)
}

// MarkAsCompleted ends a class
// PATCH /api/admin/live-classes/:id/complete
func (h *LiveClassHandler) MarkAsCompleted(c *gin.Context) {
	lc, err := h.liveClassUsecase.MarkAsCompleted(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, lc)
}

// UploadRecording attaches a recording URL
// POST /api/admin/live-classes/:id/recording
func (h *LiveClassHandler) UploadRecording(c *gin.Context) {
	var req UploadRecordingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lc, err := h.liveClassUsecase.UploadRecording(c.Param("id"), req.RecordingURL)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, lc)
}

// TriggerNotification sends the reminder immediately
// POST /api/admin/live-classes/:id/notify
func (h *LiveClassHandler) TriggerNotification(c *gin.Context) {
	// failed batches prune tokens, so a closed request must not cancel the send
	outcome, err := h.liveClassUsecase.TriggerNotification(context.WithoutCancel(c.Request.Context()), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification sent successfully", "outcome": outcome})
}

// Today returns today's classes for the authenticated student
// GET /api/live-classes/today
func (h *LiveClassHandler) Today(c *gin.Context) {
	classes, err := h.liveClassUsecase.TodayForStudent(c.GetString("userID"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"live_classes": classes})
}

// Upcoming returns upcoming classes for the authenticated student
// GET /api/live-classes/upcoming
func (h *LiveClassHandler) Upcoming(c *gin.Context) {
	classes, err := h.liveClassUsecase.UpcomingForStudent(c.GetString("userID"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"live_classes": classes})
}

// CourseClasses returns a course's classes with join gating applied
// GET /api/courses/:courseId/live-classes
func (h *LiveClassHandler) CourseClasses(c *gin.Context) {
	classes, err := h.liveClassUsecase.CourseClassesForStudent(c.GetString("userID"), c.Param("courseId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"live_classes": classes})
}

// Recordings returns the recordings of a course the student is enrolled in
// GET /api/courses/:courseId/recordings
func (h *LiveClassHandler) Recordings(c *gin.Context) {
	recordings, err := h.liveClassUsecase.RecordingsForCourse(c.GetString("userID"), c.Param("courseId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recordings": recordings})
}
