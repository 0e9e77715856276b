package repository

import (
	"context"

	"socialnet/internal/models"
	"socialnet/internal/observability"

	"gorm.io/gorm"
)

// CommentFilter narrows the comment listing.
type CommentFilter struct {
	ListQuery
	UserID uint
	PostID uint
}

var commentOrdering = orderSpec{
	table: "comments",
	allowed: map[string]string{
		"created_at": "comments.created_at",
		"text":       "comments.text",
	},
	def: "-created_at",
}

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	List(ctx context.Context, filter CommentFilter) ([]models.Comment, int64, error)
	UpdateOwned(ctx context.Context, id, authorID uint, text string) (*models.Comment, error)
	Delete(ctx context.Context, id uint) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Omit("User", "Post").Create(comment).Error; err != nil {
		if isForeignKeyViolation(err) {
			return models.NewValidationError("post does not exist")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("User").First(&comment, id).Error; err != nil {
		return nil, wrapLookupError(err, "Comment", id)
	}
	return &comment, nil
}

func (r *commentRepository) List(ctx context.Context, filter CommentFilter) ([]models.Comment, int64, error) {
	defer observability.TrackQuery("list", "comments")()

	base := func(db *gorm.DB) *gorm.DB {
		if filter.UserID != 0 {
			db = db.Where("comments.user_id = ?", filter.UserID)
		}
		if filter.PostID != 0 {
			db = db.Where("comments.post_id = ?", filter.PostID)
		}
		return db.Scopes(search(filter.Search,
			likeExpr("comments.text"),
			"comments.user_id IN (SELECT id FROM users WHERE "+likeExpr("users.username")+")",
		))
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Comment{}).Scopes(base).Count(&count).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	comments := []models.Comment{}
	err := r.db.WithContext(ctx).Preload("User").
		Scopes(base, order(commentOrdering, filter.Ordering), paginate(filter.ListQuery)).
		Find(&comments).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return comments, count, nil
}

// UpdateOwned rewrites the text of a comment written by authorID; other
// comments are reported as not found.
func (r *commentRepository) UpdateOwned(ctx context.Context, id, authorID uint, text string) (*models.Comment, error) {
	res := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ? AND user_id = ?", id, authorID).
		Update("text", text)
	if res.Error != nil {
		return nil, models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.NewNotFoundError("Comment", id)
	}
	return r.GetByID(ctx, id)
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Comment{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", id)
	}
	return nil
}
