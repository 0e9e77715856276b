// Command migrate runs schema operations against the configured database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"socialnet/internal/config"
	"socialnet/internal/database"

	"gorm.io/gorm"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func usage() error {
	return fmt.Errorf("usage: go run ./cmd/migrate <up|auto|status|down> [version]")
}

func run() error {
	flag.Parse()
	if flag.NArg() < 1 {
		return usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.Open(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	migrations, err := database.Migrations()
	if err != nil {
		return err
	}

	ctx := context.Background()
	switch strings.ToLower(strings.TrimSpace(flag.Arg(0))) {
	case "up":
		if err := database.RunMigrations(ctx, db, migrations); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
		log.Println("sql migrations applied")
	case "auto":
		cfg.DBSchemaMode = database.SchemaModeAuto
		if err := database.ApplySchema(ctx, db, cfg); err != nil {
			return fmt.Errorf("auto schema apply failed: %w", err)
		}
		log.Println("automigrations applied")
	case "status":
		return status(ctx, db, migrations)
	case "down":
		if flag.NArg() < 2 {
			return fmt.Errorf("usage: go run ./cmd/migrate down <version>")
		}
		version, err := strconv.Atoi(flag.Arg(1))
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", flag.Arg(1), err)
		}
		if err := database.RollbackMigration(ctx, db, migrations, version); err != nil {
			return fmt.Errorf("rollback failed: %w", err)
		}
		log.Printf("rolled back migration %d", version)
	default:
		return usage()
	}

	return nil
}

func status(ctx context.Context, db *gorm.DB, migrations []database.Migration) error {
	applied := make(map[int]bool)
	if db.Migrator().HasTable(&database.MigrationLog{}) {
		var versions []int
		if err := db.WithContext(ctx).Model(&database.MigrationLog{}).Pluck("version", &versions).Error; err != nil {
			return fmt.Errorf("read migration log: %w", err)
		}
		for _, v := range versions {
			applied[v] = true
		}
	}

	pending := 0
	for _, m := range migrations {
		state := "applied"
		if !applied[m.Version] {
			state = "pending"
			pending++
		}
		log.Printf("%-8s %s", state, m)
	}
	log.Printf("applied=%d pending=%d", len(migrations)-pending, pending)
	return nil
}
