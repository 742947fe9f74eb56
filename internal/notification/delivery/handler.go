package delivery

import (
	"log"
	"net/http"

	notificationdomain "liveclass-backend/internal/notification/domain"

	"github.com/gin-gonic/gin"
)

// LogReader reads the notification audit trail
type LogReader interface {
	FindByLiveClassID(liveClassID string) ([]*notificationdomain.NotificationLog, error)
}

// NotificationHandler exposes the audit trail to administrators
type NotificationHandler struct {
	logs LogReader
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(logs LogReader) *NotificationHandler {
	return &NotificationHandler{logs: logs}
}

// ListForLiveClass returns every notification sent for a live class
// GET /api/admin/live-classes/:id/notifications
func (h *NotificationHandler) ListForLiveClass(c *gin.Context) {
	liveClassID := c.Param("id")
	logs, err := h.logs.FindByLiveClassID(liveClassID)
	if err != nil {
		log.Printf("[Notifier] Failed to read logs for live class %s: %v", liveClassID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": logs, "count": len(logs)})
}
