package database

import "socialnet/internal/models"

// PersistentModels returns the schema-managed GORM models in dependency order.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Friendship{},
		&models.Post{},
		&models.Attachment{},
		&models.Comment{},
		&models.Like{},
	}
}
