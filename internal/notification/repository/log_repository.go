package repository

import (
	notificationdomain "liveclass-backend/internal/notification/domain"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const createBatchSize = 500

// LogRepository persists notification audit rows
type LogRepository interface {
	CreateBatch(logs []*notificationdomain.NotificationLog) error
	FindByLiveClassID(liveClassID string) ([]*notificationdomain.NotificationLog, error)
}

type logRepository struct {
	db *gorm.DB
}

// NewLogRepository creates a gorm-backed LogRepository
func NewLogRepository(db *gorm.DB) LogRepository {
	return &logRepository{db: db}
}

func (r *logRepository) CreateBatch(logs []*notificationdomain.NotificationLog) error {
	if len(logs) == 0 {
		return nil
	}
	for _, l := range logs {
		if l.ID == "" {
			l.ID = uuid.New().String()
		}
	}
	return errors.Wrap(r.db.CreateInBatches(logs, createBatchSize).Error, "create notification logs")
}

func (r *logRepository) FindByLiveClassID(liveClassID string) ([]*notificationdomain.NotificationLog, error) {
	var logs []*notificationdomain.NotificationLog
	err := r.db.Where("live_class_id = ?", liveClassID).Order("sent_at ASC").Find(&logs).Error
	if err != nil {
		return nil, errors.Wrap(err, "find notification logs")
	}
	return logs, nil
}
