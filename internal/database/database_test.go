package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm/logger"

	"resumeforge/internal/config"
)

func TestOpenAppliesPoolSettings(t *testing.T) {
	db, err := Open(sqlite.Open("file:database_pool?mode=memory&cache=shared"), config.DatabaseConfig{
		MaxOpenConns:    2,
		MaxIdleConns:    10,
		ConnMaxLifetime: time.Minute,
		LogLevel:        "silent",
	})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	assert.Equal(t, 2, sqlDB.Stats().MaxOpenConnections)

	user := User{Username: "ada", PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)
	resume := Resume{UserID: user.ID, Title: "CV"}
	require.NoError(t, db.Create(&resume).Error)

	var stored Resume
	require.NoError(t, db.First(&stored, resume.ID).Error)
	assert.Equal(t, "classic", stored.TemplateName)
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]logger.LogLevel{
		"":        logger.Warn,
		"warn":    logger.Warn,
		"INFO":    logger.Info,
		" error ": logger.Error,
		"silent":  logger.Silent,
		"verbose": logger.Warn,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseLogLevel(in), "level %q", in)
	}
}
