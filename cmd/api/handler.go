package api

import (
	"log"
	"net/http"
	"time"

	deviceDelivery "liveclass-backend/internal/device/delivery"
	liveClassDelivery "liveclass-backend/internal/liveclass/delivery"
	notificationDelivery "liveclass-backend/internal/notification/delivery"
	"liveclass-backend/pkg/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	config              *config.Config
	liveClassHandler    *liveClassDelivery.LiveClassHandler
	workerHandler       *liveClassDelivery.WorkerHandler
	deviceHandler       *deviceDelivery.DeviceHandler
	notificationHandler *notificationDelivery.NotificationHandler
}

func NewHandler(
	cfg *config.Config,
	liveClassHandler *liveClassDelivery.LiveClassHandler,
	workerHandler *liveClassDelivery.WorkerHandler,
	deviceHandler *deviceDelivery.DeviceHandler,
	notificationHandler *notificationDelivery.NotificationHandler,
) *Handler {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := RegisterValidators(v); err != nil {
			log.Printf("Warning: Failed to register custom validators: %v", err)
		}
	}

	return &Handler{
		config:              cfg,
		liveClassHandler:    liveClassHandler,
		workerHandler:       workerHandler,
		deviceHandler:       deviceHandler,
		notificationHandler: notificationHandler,
	}
}

// Router builds the gin engine with middleware and routes
func (h *Handler) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOriginFunc:  func(origin string) bool { return true },
		AllowMethods:     []string{"POST", "OPTIONS", "GET", "PUT", "DELETE", "PATCH"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "Accept", "Origin", "Cache-Control", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	SetupRoutes(r, h.config, h.liveClassHandler, h.workerHandler, h.deviceHandler, h.notificationHandler)
	return r
}

// NewServer wraps the router in an http.Server so main can shut it down gracefully
func (h *Handler) NewServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
