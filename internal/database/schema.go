package database

import (
	"context"
	"fmt"
	"log/slog"

	"socialnet/internal/config"
	"socialnet/internal/middleware"

	"gorm.io/gorm"
)

// Schema modes selected with DB_SCHEMA_MODE.
const (
	// SchemaModeHybrid runs SQL migrations, then AutoMigrate outside production.
	SchemaModeHybrid = "hybrid"
	// SchemaModeSQL runs SQL migrations only.
	SchemaModeSQL = "sql"
	// SchemaModeAuto runs AutoMigrate only.
	SchemaModeAuto = "auto"
)

func schemaPolicy(cfg *config.Config) (runSQL bool, runAuto bool, err error) {
	mode := cfg.DBSchemaMode
	if mode == "" {
		mode = SchemaModeHybrid
	}

	switch mode {
	case SchemaModeSQL:
		return true, false, nil
	case SchemaModeAuto:
		if cfg.IsProduction() && !cfg.DBAutoMigrateAllowDestructive {
			return false, false, fmt.Errorf("refusing DB_SCHEMA_MODE=auto in %q without DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE=true", cfg.Env)
		}
		return false, true, nil
	case SchemaModeHybrid:
		return true, !cfg.IsProduction(), nil
	default:
		return false, false, fmt.Errorf("unsupported DB_SCHEMA_MODE %q", mode)
	}
}

// ApplySchema brings the database schema up to date according to cfg.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	runSQL, runAuto, err := schemaPolicy(cfg)
	if err != nil {
		return err
	}

	if runSQL {
		migrations, err := Migrations()
		if err != nil {
			return err
		}
		if err := RunMigrations(ctx, db, migrations); err != nil {
			return fmt.Errorf("run sql migrations: %w", err)
		}
	}

	if runAuto {
		middleware.Logger.InfoContext(ctx, "Running GORM AutoMigrate", slog.String("env", cfg.Env))
		if err := db.WithContext(ctx).AutoMigrate(PersistentModels()...); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
	}

	return nil
}
