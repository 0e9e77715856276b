package repository

import (
	"context"

	"socialnet/internal/models"
	"socialnet/internal/observability"

	"gorm.io/gorm"
)

// PostFilter narrows the post listing. Pointer and bool filters are applied
// only when set.
type PostFilter struct {
	ListQuery
	// ViewerID drives is_liked; 0 when anonymous.
	ViewerID uint
	UserID   uint
	IsDraft  *bool
	// LikedOnly keeps posts the viewer has liked.
	LikedOnly bool
}

var postOrdering = orderSpec{
	table: "posts",
	allowed: map[string]string{
		"created_at": "posts.created_at",
		"text":       "posts.text",
	},
	def: "-created_at",
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetDetails(ctx context.Context, id, viewerID uint) (*models.Post, error)
	GetVisible(ctx context.Context, id, viewerID uint) (*models.Post, error)
	List(ctx context.Context, filter PostFilter) ([]models.Post, int64, error)
	UpdateOwned(ctx context.Context, id, authorID uint, fields map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func published(db *gorm.DB) *gorm.DB {
	return db.Where("posts.is_draft = ?", false)
}

// postDetails selects the computed counters and the viewer's like flag in the
// same query, and loads the author and attachments.
func postDetails(viewerID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		selectQuery := "posts.*, " +
			"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS likes_count, " +
			"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comments_count"

		if viewerID != 0 {
			db = db.Select(selectQuery+", EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) AS is_liked", viewerID)
		} else {
			db = db.Select(selectQuery + ", FALSE AS is_liked")
		}
		return db.Preload("User").Preload("Attachments", func(db *gorm.DB) *gorm.DB {
			return db.Order("attachments.id ASC")
		})
	}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Omit("User", "Attachments").Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, wrapLookupError(err, "Post", id)
	}
	return &post, nil
}

func (r *postRepository) GetDetails(ctx context.Context, id, viewerID uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Scopes(postDetails(viewerID)).First(&post, id).Error; err != nil {
		return nil, wrapLookupError(err, "Post", id)
	}
	return &post, nil
}

func (r *postRepository) GetVisible(ctx context.Context, id, viewerID uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Scopes(published, postDetails(viewerID)).
		First(&post, id).Error
	if err != nil {
		return nil, wrapLookupError(err, "Post", id)
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, filter PostFilter) ([]models.Post, int64, error) {
	defer observability.TrackQuery("list", "posts")()

	if filter.LikedOnly && filter.ViewerID == 0 {
		return []models.Post{}, 0, nil
	}

	base := func(db *gorm.DB) *gorm.DB {
		db = published(db)
		if filter.UserID != 0 {
			db = db.Where("posts.user_id = ?", filter.UserID)
		}
		if filter.IsDraft != nil {
			db = db.Where("posts.is_draft = ?", *filter.IsDraft)
		}
		if filter.LikedOnly {
			db = db.Where("posts.id IN (SELECT post_id FROM likes WHERE likes.user_id = ?)", filter.ViewerID)
		}
		return db.Scopes(search(filter.Search,
			likeExpr("posts.text"),
			"posts.user_id IN (SELECT id FROM users WHERE "+likeExpr("users.username")+")",
		))
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Scopes(base).Count(&count).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	posts := []models.Post{}
	err := r.db.WithContext(ctx).
		Scopes(base, postDetails(filter.ViewerID), order(postOrdering, filter.Ordering), paginate(filter.ListQuery)).
		Find(&posts).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return posts, count, nil
}

// UpdateOwned updates a published post owned by authorID. Posts outside that
// scope, drafts included, are reported as not found.
func (r *postRepository) UpdateOwned(ctx context.Context, id, authorID uint, fields map[string]interface{}) error {
	var post models.Post
	err := r.db.WithContext(ctx).Scopes(published).
		Where("posts.user_id = ?", authorID).
		First(&post, id).Error
	if err != nil {
		return wrapLookupError(err, "Post", id)
	}
	if len(fields) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Model(&post).Updates(fields).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	return nil
}
