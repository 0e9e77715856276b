package database

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"testing/fstest"
	"time"

	"socialnet/internal/config"
	"socialnet/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestConfigurePool(t *testing.T) {
	db := openSQLite(t)

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

func TestConfigurePool_Defaults(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, configurePool(db, &config.Config{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 25, sqlDB.Stats().MaxOpenConnections)
}

func TestDSN(t *testing.T) {
	cfg := &config.Config{DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "n"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", DSN(cfg))

	cfg.DBSSLMode = "require"
	assert.Contains(t, DSN(cfg), "sslmode=require")
}

func TestPersistentModels_AutoMigrate(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, db.AutoMigrate(PersistentModels()...))

	for _, table := range []string{"users", "friendships", "posts", "attachments", "comments", "likes"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.True(t, db.Migrator().HasIndex(&models.Like{}, "idx_likes_user_post"))
	assert.True(t, db.Migrator().HasIndex(&models.Friendship{}, "idx_friendship_sender_receiver"))
}

func TestEmbeddedMigrations(t *testing.T) {
	migrations, err := Migrations()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)
	assert.Equal(t, 1, migrations[0].Version)
	assert.Equal(t, "init_schema", migrations[0].Name)
	assert.Contains(t, migrations[0].UpScript, "CREATE UNIQUE INDEX IF NOT EXISTS idx_likes_user_post")
	assert.Contains(t, migrations[0].DownScript, "DROP TABLE IF EXISTS likes")
}

func TestLoadMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"m/000002_second.up.sql":   {Data: []byte("CREATE TABLE b (id INTEGER)")},
		"m/000002_second.down.sql": {Data: []byte("DROP TABLE b")},
		"m/000001_first.up.sql":    {Data: []byte("CREATE TABLE a (id INTEGER)")},
		"m/000001_first.down.sql":  {Data: []byte("DROP TABLE a")},
		"m/README.md":              {Data: []byte("ignored")},
	}

	migrations, err := LoadMigrations(fsys, "m")
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, "000001_first", migrations[0].String())
	assert.Equal(t, "000002_second", migrations[1].String())
}

func TestLoadMigrations_MissingDown(t *testing.T) {
	fsys := fstest.MapFS{
		"m/000001_first.up.sql": {Data: []byte("CREATE TABLE a (id INTEGER)")},
	}
	_, err := LoadMigrations(fsys, "m")
	assert.Error(t, err)
}

func TestRunMigrations_IsIdempotent(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()
	migrations := []Migration{
		{Version: 1, Name: "first", UpScript: "CREATE TABLE a (id INTEGER)", DownScript: "DROP TABLE a"},
		{Version: 2, Name: "second", UpScript: "CREATE TABLE b (id INTEGER)", DownScript: "DROP TABLE b"},
	}

	require.NoError(t, RunMigrations(ctx, db, migrations))
	require.NoError(t, RunMigrations(ctx, db, migrations))

	var count int64
	require.NoError(t, db.Model(&MigrationLog{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
	assert.True(t, db.Migrator().HasTable("b"))

	require.NoError(t, RollbackMigration(ctx, db, migrations, 2))
	assert.False(t, db.Migrator().HasTable("b"))
	assert.Error(t, RollbackMigration(ctx, db, migrations, 2))
}

func TestRunMigrations_UnknownAppliedVersion(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()
	require.NoError(t, db.AutoMigrate(&MigrationLog{}))
	require.NoError(t, db.Create(&MigrationLog{Version: 99, Name: "future"}).Error)

	err := RunMigrations(ctx, db, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "000099")
}

func TestSchemaPolicy(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		wantSQL bool
		wantAut bool
		wantErr bool
	}{
		{"hybrid development", config.Config{Env: "development"}, true, true, false},
		{"hybrid production", config.Config{Env: "production", DBSchemaMode: "hybrid"}, true, false, false},
		{"sql only", config.Config{Env: "development", DBSchemaMode: "sql"}, true, false, false},
		{"auto in production refused", config.Config{Env: "production", DBSchemaMode: "auto"}, false, false, true},
		{"auto in production allowed", config.Config{Env: "production", DBSchemaMode: "auto", DBAutoMigrateAllowDestructive: true}, false, true, false},
		{"unknown mode", config.Config{DBSchemaMode: "yolo"}, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runSQL, runAuto, err := schemaPolicy(&tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, runSQL)
			assert.Equal(t, tt.wantAut, runAuto)
		})
	}
}

func TestGormLogger_Trace(t *testing.T) {
	var buf bytes.Buffer
	l := NewGormLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	ctx := context.Background()
	fc := func() (string, int64) { return "SELECT 1", 1 }

	l.Trace(ctx, time.Now(), fc, gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String())

	l.Trace(ctx, time.Now(), fc, errors.New("boom"))
	assert.Contains(t, buf.String(), "GORM query error")

	buf.Reset()
	l.Trace(ctx, time.Now().Add(-time.Second), fc, nil)
	assert.Contains(t, buf.String(), "GORM slow query")

	buf.Reset()
	l.LogMode(logger.Silent).Trace(ctx, time.Now(), fc, errors.New("boom"))
	assert.Empty(t, buf.String())
}
