package database

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"folio/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestConfigurePool(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	cfg := &config.Config{
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           5,
		DBConnMaxLifetimeMinutes: 15,
	}

	require.NoError(t, configurePool(db, cfg))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 10, sqlDB.Stats().MaxOpenConnections)
}

func TestMigrate_CreatesTables(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, Migrate(db))

	for _, table := range []string{"users", "blog_posts", "projects", "comments", "reactions", "page_views"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestDSN_DefaultsSSLMode(t *testing.T) {
	cfg := &config.Config{DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "folio"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=folio sslmode=disable", DSN(cfg))
}

func TestGormLogger_Trace(t *testing.T) {
	var buf bytes.Buffer
	l := NewGormLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	query := func() (string, int64) { return "SELECT 1", 1 }
	ctx := context.Background()

	l.Trace(ctx, time.Now(), query, gorm.ErrRecordNotFound)
	l.Trace(ctx, time.Now(), query, nil)
	assert.Empty(t, buf.String(), "missing rows and fast queries stay quiet at warn")

	l.Trace(ctx, time.Now().Add(-time.Second), query, nil)
	assert.Contains(t, buf.String(), "slow query")

	buf.Reset()
	l.Trace(ctx, time.Now(), query, errors.New("connection reset"))
	assert.Contains(t, buf.String(), "query failed")
	assert.Contains(t, buf.String(), "connection reset")

	buf.Reset()
	l.LogMode(logger.Silent).Trace(ctx, time.Now(), query, errors.New("ignored"))
	l.LogMode(logger.Info).Trace(ctx, time.Now(), query, nil)
	assert.Contains(t, buf.String(), "msg=query")
	assert.NotContains(t, buf.String(), "ignored")
}
