package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/freshbowl/storefront/pkg/config"
	"github.com/freshbowl/storefront/pkg/logger"
)

func TestNewOpensSQLiteWhenFlagged(t *testing.T) {
	cfg := &config.Config{
		FeatureFlags: config.FeatureFlagsConfig{UseSQLite: true},
		DB: config.DBConfig{
			SQLitePath:   filepath.Join(t.TempDir(), "carts.db"),
			MaxOpenConns: 1,
		},
	}

	client, err := New(context.Background(), cfg, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	assert.Equal(t, DialectSQLite, client.Dialect())
	require.NoError(t, client.Ping(context.Background()))

	sqlDB, err := client.DB().DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestDialectorRequiresConnectionSettings(t *testing.T) {
	_, _, err := dialectorFor(&config.Config{FeatureFlags: config.FeatureFlagsConfig{UseSQLite: true}})
	require.Error(t, err)

	_, _, err = dialectorFor(&config.Config{})
	require.Error(t, err)

	_, dialect, err := dialectorFor(&config.Config{DB: config.DBConfig{DSN: "postgres://localhost/storefront"}})
	require.NoError(t, err)
	assert.Equal(t, DialectPostgres, dialect)
}

func TestWrapDetectsSQLite(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	client := Wrap(conn)
	assert.Equal(t, DialectSQLite, client.Dialect())
	assert.Same(t, conn, client.DB())
	require.NoError(t, client.Close())
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(gorm.ErrRecordNotFound))
	assert.False(t, IsNotFound(nil))
}
