package repository

import (
	"testing"

	devicedomain "liveclass-backend/internal/device/domain"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&devicedomain.DeviceToken{}))
	return db
}

func TestSaveTokenUpserts(t *testing.T) {
	repo := NewDeviceTokenRepository(setupDB(t))

	require.NoError(t, repo.SaveToken("user-a", "tok-1", devicedomain.PlatformAndroid))
	require.NoError(t, repo.SaveToken("user-a", "tok-1", devicedomain.PlatformWeb))
	require.NoError(t, repo.SaveToken("user-a", "tok-2", devicedomain.PlatformIOS))

	tokens, err := repo.GetTokensByUserID("user-a")
	require.NoError(t, err)
	require.Len(t, tokens, 2)

	platforms := map[string]devicedomain.Platform{}
	for _, tok := range tokens {
		platforms[tok.Token] = tok.Platform
	}
	assert.Equal(t, devicedomain.PlatformWeb, platforms["tok-1"])
	assert.Equal(t, devicedomain.PlatformIOS, platforms["tok-2"])
}

func TestFindTokensByUserIDs(t *testing.T) {
	repo := NewDeviceTokenRepository(setupDB(t))
	require.NoError(t, repo.SaveToken("user-a", "tok-a", devicedomain.PlatformAndroid))
	require.NoError(t, repo.SaveToken("user-b", "tok-b", devicedomain.PlatformAndroid))
	require.NoError(t, repo.SaveToken("user-c", "tok-c", devicedomain.PlatformAndroid))

	tokens, err := repo.FindTokensByUserIDs([]string{"user-a", "user-c", "user-z"})
	require.NoError(t, err)

	var values []string
	for _, tok := range tokens {
		values = append(values, tok.Token)
	}
	assert.ElementsMatch(t, []string{"tok-a", "tok-c"}, values)

	empty, err := repo.FindTokensByUserIDs(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDeleteTokens(t *testing.T) {
	repo := NewDeviceTokenRepository(setupDB(t))
	require.NoError(t, repo.SaveToken("user-a", "shared", devicedomain.PlatformAndroid))
	require.NoError(t, repo.SaveToken("user-b", "shared", devicedomain.PlatformAndroid))
	require.NoError(t, repo.SaveToken("user-b", "keep", devicedomain.PlatformAndroid))

	count, err := repo.DeleteTokens([]string{"shared", "unknown"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	remaining, err := repo.FindTokensByUserIDs([]string{"user-a", "user-b"})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "keep", remaining[0].Token)

	count, err = repo.DeleteTokens(nil)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestDeleteTokenIsScopedToUser(t *testing.T) {
	repo := NewDeviceTokenRepository(setupDB(t))
	require.NoError(t, repo.SaveToken("user-a", "shared", devicedomain.PlatformAndroid))
	require.NoError(t, repo.SaveToken("user-b", "shared", devicedomain.PlatformAndroid))

	require.NoError(t, repo.DeleteToken("user-a", "shared"))

	a, err := repo.GetTokensByUserID("user-a")
	require.NoError(t, err)
	assert.Empty(t, a)

	b, err := repo.GetTokensByUserID("user-b")
	require.NoError(t, err)
	assert.Len(t, b, 1)
}
