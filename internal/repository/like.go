package repository

import (
	"context"
	"time"

	"socialnet/internal/models"

	"gorm.io/gorm"
)

// ToggleResult reports which branch of a like toggle ran.
type ToggleResult string

const (
	LikeAdded   ToggleResult = "added"
	LikeRemoved ToggleResult = "removed"
)

// LikeRepository flips the like relation between an account and a post.
type LikeRepository interface {
	Toggle(ctx context.Context, userID, postID uint) (ToggleResult, error)
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository returns a new LikeRepository implementation.
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

// Toggle deletes the like when present, otherwise inserts it. The insert
// ignores a conflicting row, so racing toggles never produce a duplicate.
// When the insert writes nothing a concurrent toggle committed the row
// first, and this toggle removes it instead.
func (r *likeRepository) Toggle(ctx context.Context, userID, postID uint) (ToggleResult, error) {
	var result ToggleResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			result = LikeRemoved
			return nil
		}

		ins := tx.Exec(
			`INSERT INTO likes (user_id, post_id, created_at) VALUES (?, ?, ?) ON CONFLICT (user_id, post_id) DO NOTHING`,
			userID, postID, time.Now(),
		)
		if ins.Error != nil {
			return ins.Error
		}
		if ins.RowsAffected > 0 {
			result = LikeAdded
			return nil
		}

		if err := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		result = LikeRemoved
		return nil
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			return "", models.NewNotFoundError("Post", postID)
		}
		return "", models.NewInternalError(err)
	}
	return result, nil
}
