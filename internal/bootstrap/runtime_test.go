package bootstrap

import (
	"context"
	"testing"

	"shepherd/internal/config"
	"shepherd/internal/database"
	"shepherd/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), database.GormConfig())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

func userCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.User{}).Count(&n).Error)
	return n
}

func TestSeedIfEmpty_SeedsOnce(t *testing.T) {
	db := openDB(t)
	cfg := &config.Config{Env: "development"}
	ctx := context.Background()

	require.NoError(t, SeedIfEmpty(ctx, cfg, db, "small_congregation"))
	seeded := userCount(t, db)
	assert.Equal(t, int64(10), seeded)

	require.NoError(t, SeedIfEmpty(ctx, cfg, db, "small_congregation"))
	assert.Equal(t, seeded, userCount(t, db))
}

func TestSeedIfEmpty_Skips(t *testing.T) {
	tests := []struct {
		name   string
		env    string
		preset string
	}{
		{"no preset", "development", ""},
		{"production", "production", "small_congregation"},
		{"staging", "staging", "small_congregation"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := openDB(t)
			require.NoError(t, SeedIfEmpty(context.Background(), &config.Config{Env: tt.env}, db, tt.preset))
			assert.Zero(t, userCount(t, db))
		})
	}
}

func TestSeedIfEmpty_UnknownPreset(t *testing.T) {
	db := openDB(t)
	err := SeedIfEmpty(context.Background(), &config.Config{Env: "test"}, db, "no_such_preset")
	assert.Error(t, err)
}
