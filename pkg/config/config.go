package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   string

	// Notification worker
	WorkerEnabled  bool
	WorkerInterval time.Duration
	ReminderLead   time.Duration
	JoinWindow     time.Duration

	// Push delivery; both empty disables delivery
	FCMServerKey        string
	FirebaseCredentials string
	PruneOnlyInvalid    bool

	// Optional single-active-worker lease
	RedisURL string

	// Optional Pub/Sub audit stream
	GoogleProjectID        string
	GoogleCredentials      string
	NotificationAuditTopic string
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=liveclass port=5432 sslmode=disable"),
		JWTSecret:   getEnv("JWT_SECRET", "your-secret-key-change-in-production"),

		WorkerEnabled:  getEnvBool("WORKER_ENABLED", true),
		WorkerInterval: getEnvMinutes("WORKER_INTERVAL_MINUTES", 5),
		ReminderLead:   getEnvMinutes("REMINDER_LEAD_MINUTES", 30),
		JoinWindow:     getEnvMinutes("JOIN_WINDOW_MINUTES", 15),

		FCMServerKey:        getEnv("FCM_SERVER_KEY", ""),
		FirebaseCredentials: getEnv("FIREBASE_CREDENTIALS", ""),
		PruneOnlyInvalid:    getEnvBool("FCM_PRUNE_ONLY_INVALID", false),

		RedisURL: getEnv("REDIS_URL", ""),

		GoogleProjectID:        getEnv("GOOGLE_PROJECT_ID", ""),
		GoogleCredentials:      getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		NotificationAuditTopic: getEnv("NOTIFICATION_AUDIT_TOPIC", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	switch strings.ToLower(value) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return defaultValue
}

// getEnvMinutes reads a positive whole number of minutes
func getEnvMinutes(key string, defaultMinutes int) time.Duration {
	minutes := defaultMinutes
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			minutes = parsed
		}
	}
	return time.Duration(minutes) * time.Minute
}
