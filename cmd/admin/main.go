// Package main provides admin role management for accounts.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"socialnet/internal/cache"
	"socialnet/internal/config"
	"socialnet/internal/database"
	"socialnet/internal/models"

	"gorm.io/gorm"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage:")
		fmt.Println("  go run ./cmd/admin promote <user_id>   - Grant the admin role")
		fmt.Println("  go run ./cmd/admin demote <user_id>    - Revoke the admin role")
		fmt.Println("  go run ./cmd/admin list-admins         - List all admins")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()
	// Role changes must evict the cached account representation the API serves.
	if cfg.RedisURL != "" {
		if rdb := cache.InitRedis(ctx, cfg.RedisURL); rdb != nil {
			defer rdb.Close()
		}
	}

	switch command := os.Args[1]; command {
	case "promote", "demote":
		if len(os.Args) < 3 {
			fmt.Printf("Usage: go run ./cmd/admin %s <user_id>\n", command)
			os.Exit(1)
		}
		role := models.RoleAdmin
		if command == "demote" {
			role = models.RoleNormal
		}
		user, changed, err := setRole(ctx, db, os.Args[2], role)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			fmt.Printf("User with ID %s not found\n", os.Args[2])
			os.Exit(1)
		case err != nil:
			log.Fatalf("Failed to update role: %v", err)
		case !changed:
			fmt.Printf("User %s (ID: %d) already has role %s\n", user.Username, user.ID, role.Display())
		default:
			fmt.Printf("Updated %s (ID: %d) to role %s\n", user.Username, user.ID, role.Display())
		}

	case "list-admins":
		listAdmins(db)

	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}

// setRole updates the account's role and drops its cached representation.
// changed is false when the account already had the role.
func setRole(ctx context.Context, db *gorm.DB, userID string, role models.Role) (user models.User, changed bool, err error) {
	if err := db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return user, false, err
	}
	if user.Role == role {
		return user, false, nil
	}

	if err := db.WithContext(ctx).Model(&user).Update("role", role).Error; err != nil {
		return user, false, err
	}
	user.Role = role
	cache.InvalidateUser(ctx, user.ID)
	return user, true, nil
}

func listAdmins(db *gorm.DB) {
	var admins []models.User
	if err := db.Where("role = ?", models.RoleAdmin).Order("id").Find(&admins).Error; err != nil {
		log.Fatalf("Failed to fetch admins: %v", err)
	}

	if len(admins) == 0 {
		fmt.Println("No admins found in the system")
		return
	}

	fmt.Println("\nCurrent Admins:")
	fmt.Println("─────────────────────────────────────")
	for _, admin := range admins {
		fmt.Printf("ID: %d | Username: %s | Email: %s | Active: %t\n", admin.ID, admin.Username, admin.Email, admin.IsActive)
	}
	fmt.Println("─────────────────────────────────────")
}
