package api

import (
	"net/http"

	authDelivery "liveclass-backend/internal/auth/delivery"
	deviceDelivery "liveclass-backend/internal/device/delivery"
	liveClassDelivery "liveclass-backend/internal/liveclass/delivery"
	notificationDelivery "liveclass-backend/internal/notification/delivery"
	"liveclass-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	r *gin.Engine,
	cfg *config.Config,
	liveClassHandler *liveClassDelivery.LiveClassHandler,
	workerHandler *liveClassDelivery.WorkerHandler,
	deviceHandler *deviceDelivery.DeviceHandler,
	notificationHandler *notificationDelivery.NotificationHandler,
) {
	auth := authDelivery.AuthMiddleware(cfg.JWTSecret)

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Device token routes (protected)
		devices := api.Group("/devices")
		devices.Use(auth)
		{
			devices.GET("", deviceHandler.List)
			devices.POST("", deviceHandler.Register)
			devices.DELETE("/:token", deviceHandler.Unregister)
		}

		// Student routes (protected)
		liveClasses := api.Group("/live-classes")
		liveClasses.Use(auth)
		{
			liveClasses.GET("/today", liveClassHandler.Today)
			liveClasses.GET("/upcoming", liveClassHandler.Upcoming)
		}

		courses := api.Group("/courses")
		courses.Use(auth)
		{
			courses.GET("/:courseId/live-classes", liveClassHandler.CourseClasses)
			courses.GET("/:courseId/recordings", liveClassHandler.Recordings)
		}

		// Admin routes (protected, admin role)
		admin := api.Group("/admin")
		admin.Use(auth, authDelivery.RequireAdmin())
		{
			adminClasses := admin.Group("/live-classes")
			{
				adminClasses.POST("", liveClassHandler.Create)
				adminClasses.GET("/course/:courseId", liveClassHandler.ListForCourse)
				adminClasses.GET("/:id", liveClassHandler.GetByID)
				adminClasses.PUT("/:id", liveClassHandler.Update)
				adminClasses.DELETE("/:id", liveClassHandler.Delete)
				adminClasses.PATCH("/:id/live", liveClassHandler.MarkAsLive)
				adminClasses.PATCH("/:id/complete", liveClassHandler.MarkAsCompleted)
				adminClasses.POST("/:id/recording", liveClassHandler.UploadRecording)
				adminClasses.POST("/:id/notify", liveClassHandler.TriggerNotification)
				adminClasses.GET("/:id/notifications", notificationHandler.ListForLiveClass)
			}

			admin.GET("/worker", workerHandler.Status)
			admin.POST("/worker/tick", workerHandler.Tick)
			admin.POST("/notifications/test", workerHandler.SendTest)
		}
	}
}
