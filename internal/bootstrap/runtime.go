// Package bootstrap wires the runtime dependencies shared by the server and
// the command-line tools.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"socialnet/internal/cache"
	"socialnet/internal/config"
	"socialnet/internal/database"
	"socialnet/internal/middleware"
	"socialnet/internal/models"
	"socialnet/internal/storage"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Runtime holds the connected backends.
type Runtime struct {
	DB    *gorm.DB
	Redis *redis.Client
	Blobs storage.BlobStore
}

// InitRuntime connects the database, Redis and the object store. Redis is
// optional: when unreachable Runtime.Redis is nil.
func InitRuntime(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	rdb := cache.InitRedis(ctx, cfg.RedisURL)

	blobs, err := storage.NewMinioStore(cfg)
	if err != nil {
		return nil, err
	}
	if err := blobs.EnsureBucket(ctx); err != nil {
		return nil, err
	}

	if err := EnsureDevRootAdmin(ctx, cfg, db); err != nil {
		return nil, fmt.Errorf("failed to bootstrap development root admin: %w", err)
	}

	return &Runtime{DB: db, Redis: rdb, Blobs: blobs}, nil
}

// EnsureDevRootAdmin creates (or re-promotes) a superuser account in
// development when DEV_BOOTSTRAP_ROOT is set.
func EnsureDevRootAdmin(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") || !cfg.DevBootstrapRoot {
		return nil
	}

	username := strings.TrimSpace(cfg.DevRootUsername)
	if username == "" {
		username = "socialnet_root"
	}
	email := strings.ToLower(strings.TrimSpace(cfg.DevRootEmail))
	password := cfg.DevRootPassword
	if password == "" {
		return errors.New("DEV_ROOT_PASSWORD must be set when DEV_BOOTSTRAP_ROOT is enabled")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash root password: %w", err)
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var root models.User
		findErr := tx.Where("username = ?", username).First(&root).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			root = models.User{
				Username:    username,
				Email:       email,
				Password:    string(hashed),
				IsActive:    true,
				IsStaff:     true,
				IsSuperuser: true,
			}
			return tx.Create(&root).Error
		case findErr != nil:
			return findErr
		}

		updates := map[string]any{
			"is_active":    true,
			"is_staff":     true,
			"is_superuser": true,
			"role":         models.RoleAdmin,
		}
		if cfg.DevRootForceCredentials {
			updates["email"] = email
			updates["password"] = string(hashed)
		}
		return tx.Model(&root).Updates(updates).Error
	})
	if err != nil {
		return err
	}

	middleware.Logger.InfoContext(ctx, "development root admin ensured", slog.String("username", username))
	return nil
}
