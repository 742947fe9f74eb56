package delivery

import (
	"context"
	"net/http"

	"liveclass-backend/internal/liveclass/scheduler"

	"github.com/gin-gonic/gin"
)

// WorkerController is the operational surface of the notification worker
type WorkerController interface {
	Status() scheduler.WorkerStatus
	TriggerTick(ctx context.Context) (*scheduler.TickSummary, bool)
}

// TestSender sends a diagnostic push to one device
type TestSender interface {
	SendTest(ctx context.Context, token string) bool
}

// WorkerHandler exposes worker status and manual ticks to administrators
type WorkerHandler struct {
	worker WorkerController
	tester TestSender
}

// NewWorkerHandler creates a new WorkerHandler; worker may be nil when disabled
func NewWorkerHandler(worker WorkerController, tester TestSender) *WorkerHandler {
	return &WorkerHandler{worker: worker, tester: tester}
}

// Status reports the worker state
// GET /api/admin/worker
func (h *WorkerHandler) Status(c *gin.Context) {
	if h.worker == nil {
		c.JSON(http.StatusOK, gin.H{"enabled": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"enabled": true, "status": h.worker.Status()})
}

// Tick runs one worker tick synchronously
// POST /api/admin/worker/tick
func (h *WorkerHandler) Tick(c *gin.Context) {
	if h.worker == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "worker is disabled on this instance"})
		return
	}

	// a dropped admin connection must not abort the tick halfway through its batches
	summary, ran := h.worker.TriggerTick(context.WithoutCancel(c.Request.Context()))
	if !ran {
		c.JSON(http.StatusConflict, gin.H{"error": "tick skipped: another tick is running or the lease is held elsewhere"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// SendTestRequest represents the request body for a test push
type SendTestRequest struct {
	Token string `json:"token" binding:"required"`
}

// SendTest pushes a test notification to one token
// POST /api/admin/notifications/test
func (h *WorkerHandler) SendTest(c *gin.Context) {
	var req SendTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	delivered := h.tester.SendTest(context.WithoutCancel(c.Request.Context()), req.Token)
	c.JSON(http.StatusOK, gin.H{"delivered": delivered})
}
