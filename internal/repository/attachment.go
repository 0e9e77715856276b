package repository

import (
	"context"

	"socialnet/internal/models"

	"gorm.io/gorm"
)

// AttachmentFilter narrows the attachment listing.
type AttachmentFilter struct {
	ListQuery
	PostID uint
}

var attachmentOrdering = orderSpec{
	table: "attachments",
	allowed: map[string]string{
		"created_at": "attachments.created_at",
	},
	def: "-created_at",
}

// AttachmentRepository stores the object keys bound to posts.
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *models.Attachment) error
	GetByID(ctx context.Context, id uint) (*models.Attachment, error)
	List(ctx context.Context, filter AttachmentFilter) ([]models.Attachment, int64, error)
}

type attachmentRepository struct {
	db *gorm.DB
}

// NewAttachmentRepository returns a new AttachmentRepository implementation.
func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *models.Attachment) error {
	if err := r.db.WithContext(ctx).Create(attachment).Error; err != nil {
		if isForeignKeyViolation(err) {
			return models.NewValidationError("post does not exist")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *attachmentRepository) GetByID(ctx context.Context, id uint) (*models.Attachment, error) {
	var a models.Attachment
	if err := r.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, wrapLookupError(err, "Attachment", id)
	}
	return &a, nil
}

func (r *attachmentRepository) List(ctx context.Context, filter AttachmentFilter) ([]models.Attachment, int64, error) {
	base := func(db *gorm.DB) *gorm.DB {
		if filter.PostID != 0 {
			return db.Where("attachments.post_id = ?", filter.PostID)
		}
		return db
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Attachment{}).Scopes(base).Count(&count).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	out := []models.Attachment{}
	err := r.db.WithContext(ctx).
		Scopes(base, order(attachmentOrdering, filter.Ordering), paginate(filter.ListQuery)).
		Find(&out).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return out, count, nil
}
