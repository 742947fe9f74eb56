package repository

import (
	"time"

	devicedomain "liveclass-backend/internal/device/domain"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DeviceTokenRepository defines the interface for push token operations
type DeviceTokenRepository interface {
	SaveToken(userID, token string, platform devicedomain.Platform) error
	GetTokensByUserID(userID string) ([]devicedomain.DeviceToken, error)
	FindTokensByUserIDs(userIDs []string) ([]devicedomain.DeviceToken, error)
	DeleteToken(userID, token string) error
	DeleteTokens(tokens []string) (int64, error)
}

// deviceTokenRepository implements DeviceTokenRepository interface
type deviceTokenRepository struct {
	db *gorm.DB
}

// NewDeviceTokenRepository creates a new instance of deviceTokenRepository
func NewDeviceTokenRepository(db *gorm.DB) DeviceTokenRepository {
	return &deviceTokenRepository{
		db: db,
	}
}

// SaveToken saves or updates a token for a user (atomic upsert)
func (r *deviceTokenRepository) SaveToken(userID, token string, platform devicedomain.Platform) error {
	now := time.Now()
	deviceToken := &devicedomain.DeviceToken{
		ID:        uuid.New().String(),
		UserID:    userID,
		Token:     token,
		Platform:  platform,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// INSERT ... ON CONFLICT (user_id, token) DO UPDATE
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"platform", "updated_at"}),
	}).Create(deviceToken).Error
	return errors.Wrap(err, "save device token")
}

// GetTokensByUserID returns all tokens for a user
func (r *deviceTokenRepository) GetTokensByUserID(userID string) ([]devicedomain.DeviceToken, error) {
	var tokens []devicedomain.DeviceToken
	err := r.db.Where("user_id = ?", userID).Find(&tokens).Error
	if err != nil {
		return nil, errors.Wrap(err, "get device tokens")
	}
	return tokens, nil
}

// FindTokensByUserIDs returns every token registered by any of the users
func (r *deviceTokenRepository) FindTokensByUserIDs(userIDs []string) ([]devicedomain.DeviceToken, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var tokens []devicedomain.DeviceToken
	err := r.db.Where("user_id IN ?", userIDs).Find(&tokens).Error
	if err != nil {
		return nil, errors.Wrap(err, "find device tokens")
	}
	return tokens, nil
}

// DeleteToken removes one of a user's tokens
func (r *deviceTokenRepository) DeleteToken(userID, token string) error {
	err := r.db.Where("user_id = ? AND token = ?", userID, token).Delete(&devicedomain.DeviceToken{}).Error
	return errors.Wrap(err, "delete device token")
}

// DeleteTokens removes every row holding one of the tokens, whoever owns it
func (r *deviceTokenRepository) DeleteTokens(tokens []string) (int64, error) {
	if len(tokens) == 0 {
		return 0, nil
	}
	result := r.db.Where("token IN ?", tokens).Delete(&devicedomain.DeviceToken{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "delete device tokens")
	}
	return result.RowsAffected, nil
}
