package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	api "liveclass-backend/cmd/api"
	coursedomain "liveclass-backend/internal/course/domain"
	courseRepo "liveclass-backend/internal/course/repository"
	deviceDelivery "liveclass-backend/internal/device/delivery"
	devicedomain "liveclass-backend/internal/device/domain"
	deviceRepo "liveclass-backend/internal/device/repository"
	liveClassDelivery "liveclass-backend/internal/liveclass/delivery"
	liveclassdomain "liveclass-backend/internal/liveclass/domain"
	liveClassRepo "liveclass-backend/internal/liveclass/repository"
	"liveclass-backend/internal/liveclass/scheduler"
	liveClassUsecase "liveclass-backend/internal/liveclass/usecase"
	"liveclass-backend/internal/notification"
	"liveclass-backend/internal/notification/audit"
	notificationDelivery "liveclass-backend/internal/notification/delivery"
	notificationdomain "liveclass-backend/internal/notification/domain"
	notificationRepo "liveclass-backend/internal/notification/repository"
	"liveclass-backend/pkg/config"
	"liveclass-backend/pkg/database"
	"liveclass-backend/pkg/fcm"

	"github.com/redis/go-redis/v9"
)

const workerLeaseKey = "liveclass:notification-worker:lease"

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(&coursedomain.Course{}, &coursedomain.Enrollment{}, &liveclassdomain.LiveClass{}, &devicedomain.DeviceToken{}, &notificationdomain.NotificationLog{}); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	courseRepository := courseRepo.NewCourseRepository(db)
	liveClassRepository := liveClassRepo.NewGormLiveClassRepository(db)
	deviceTokenRepository := deviceRepo.NewDeviceTokenRepository(db)
	logRepository := notificationRepo.NewLogRepository(db)

	ctx := context.Background()

	// Push gateway: Admin SDK first, legacy server key as fallback, otherwise disabled
	gateway := fcm.SelectGateway(ctx, cfg.FirebaseCredentials, cfg.FCMServerKey)
	dispatcher := fcm.NewDispatcher(gateway)

	// Optional audit stream
	notifierOpts := notification.Options{
		ReminderLead:     cfg.ReminderLead,
		PruneOnlyInvalid: cfg.PruneOnlyInvalid,
	}
	var publisher *audit.PubSubPublisher
	if cfg.GoogleProjectID != "" && cfg.NotificationAuditTopic != "" {
		publisher, err = audit.NewPubSubPublisher(ctx, cfg.GoogleProjectID, cfg.NotificationAuditTopic, cfg.GoogleCredentials)
		if err != nil {
			log.Printf("[WARN] Failed to initialize audit publisher: %v", err)
		} else {
			notifierOpts.Publisher = publisher
		}
	}

	notifier := notification.NewService(dispatcher, courseRepository, deviceTokenRepository, logRepository, notifierOpts)

	// Initialize use cases
	liveClassUc := liveClassUsecase.NewLiveClassUsecase(liveClassRepository, courseRepository, notifier, cfg.JoinWindow)

	// Notification worker
	var worker *scheduler.LiveClassScheduler
	var workerController liveClassDelivery.WorkerController
	if cfg.WorkerEnabled {
		schedulerCfg := scheduler.Config{
			Interval:     cfg.WorkerInterval,
			ReminderLead: cfg.ReminderLead,
		}
		if cfg.RedisURL != "" {
			opts, err := redis.ParseURL(cfg.RedisURL)
			if err != nil {
				log.Fatal("Invalid REDIS_URL:", err)
			}
			// Held across ticks so the owning instance keeps it while alive
			schedulerCfg.Lease = scheduler.NewRedisLease(redis.NewClient(opts), workerLeaseKey, 2*cfg.WorkerInterval)
			log.Println("[LiveClassWorker] Redis lease enabled")
		}

		worker = scheduler.NewLiveClassScheduler(liveClassRepository, notifier, liveclassdomain.StateMachine{}, schedulerCfg)
		workerController = worker
		worker.Start()
	} else {
		log.Println("[WARN] WORKER_ENABLED=false, notification worker not started on this instance")
	}

	// Initialize HTTP handlers
	handler := api.NewHandler(
		cfg,
		liveClassDelivery.NewLiveClassHandler(liveClassUc),
		liveClassDelivery.NewWorkerHandler(workerController, notifier),
		deviceDelivery.NewDeviceHandler(deviceTokenRepository),
		notificationDelivery.NewNotificationHandler(logRepository),
	)
	server := handler.NewServer(":" + cfg.Port)

	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Printf("Received %s, shutting down", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Stop the worker first so no new tick begins while we drain
	if worker != nil {
		select {
		case <-worker.Stop().Done():
		case <-shutdownCtx.Done():
			log.Println("[WARN] In-flight tick did not finish before shutdown timeout")
		}
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[WARN] HTTP server shutdown: %v", err)
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			log.Printf("[WARN] Audit publisher close: %v", err)
		}
	}
	log.Println("Shutdown complete")
}
