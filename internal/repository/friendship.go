package repository

import (
	"context"

	"socialnet/internal/models"
	"socialnet/internal/observability"

	"gorm.io/gorm"
)

// FriendshipFilter narrows the caller's received requests.
type FriendshipFilter struct {
	ListQuery
	ReceiverID uint
	// Status is applied when non-empty.
	Status models.FriendshipStatus
}

var friendshipOrdering = orderSpec{
	table: "friendships",
	allowed: map[string]string{
		"created_at": "friendships.created_at",
		"id":         "friendships.id",
	},
	def: "-created_at",
}

// FriendshipRepository persists directed friendship requests. Every read and
// transition except Create is scoped to the receiver.
type FriendshipRepository interface {
	Create(ctx context.Context, friendship *models.Friendship) error
	GetReceived(ctx context.Context, id, receiverID uint) (*models.Friendship, error)
	ListReceived(ctx context.Context, filter FriendshipFilter) ([]models.Friendship, int64, error)
	Accept(ctx context.Context, id, receiverID uint) (*models.Friendship, error)
	Reject(ctx context.Context, id, receiverID uint) (*models.Friendship, error)
	Delete(ctx context.Context, id, receiverID uint) (*models.Friendship, error)
}

type friendshipRepository struct {
	db *gorm.DB
}

// NewFriendshipRepository returns a new FriendshipRepository implementation.
func NewFriendshipRepository(db *gorm.DB) FriendshipRepository {
	return &friendshipRepository{db: db}
}

func withParties(db *gorm.DB) *gorm.DB {
	return db.Preload("Sender").Preload("Receiver")
}

func (r *friendshipRepository) Create(ctx context.Context, friendship *models.Friendship) error {
	if friendship.Status == "" {
		friendship.Status = models.FriendshipStatusWaiting
	}
	if err := r.db.WithContext(ctx).Omit("Sender", "Receiver").Create(friendship).Error; err != nil {
		if isUniqueViolation(err) {
			return models.NewConflictError("You already sent a friendship request.")
		}
		if isForeignKeyViolation(err) {
			return models.NewValidationError("receiver does not exist")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *friendshipRepository) GetReceived(ctx context.Context, id, receiverID uint) (*models.Friendship, error) {
	var f models.Friendship
	err := r.db.WithContext(ctx).Scopes(withParties).
		Where("receiver_id = ?", receiverID).
		First(&f, id).Error
	if err != nil {
		return nil, wrapLookupError(err, "Friendship", id)
	}
	return &f, nil
}

func (r *friendshipRepository) ListReceived(ctx context.Context, filter FriendshipFilter) ([]models.Friendship, int64, error) {
	defer observability.TrackQuery("list", "friendships")()

	base := func(db *gorm.DB) *gorm.DB {
		db = db.Where("friendships.receiver_id = ?", filter.ReceiverID)
		if filter.Status != "" {
			db = db.Where("friendships.status = ?", filter.Status)
		}
		return db
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Friendship{}).Scopes(base).Count(&count).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	out := []models.Friendship{}
	err := r.db.WithContext(ctx).
		Scopes(base, withParties, order(friendshipOrdering, filter.Ordering), paginate(filter.ListQuery)).
		Find(&out).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return out, count, nil
}

// Accept moves a waiting request to accepted. The status check is part of the
// UPDATE, so two concurrent accepts cannot both succeed.
func (r *friendshipRepository) Accept(ctx context.Context, id, receiverID uint) (*models.Friendship, error) {
	res := r.db.WithContext(ctx).Model(&models.Friendship{}).
		Where("id = ? AND receiver_id = ? AND status = ?", id, receiverID, models.FriendshipStatusWaiting).
		Update("status", models.FriendshipStatusAccepted)
	if res.Error != nil {
		return nil, models.NewInternalError(res.Error)
	}

	f, err := r.GetReceived(ctx, id, receiverID)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 {
		return nil, models.NewPreconditionError("not available")
	}
	return f, nil
}

// Reject removes a waiting or accepted request and returns the removed row.
func (r *friendshipRepository) Reject(ctx context.Context, id, receiverID uint) (*models.Friendship, error) {
	return r.remove(ctx, id, receiverID, models.FriendshipStatusWaiting, models.FriendshipStatusAccepted)
}

// Delete removes a received request regardless of its status.
func (r *friendshipRepository) Delete(ctx context.Context, id, receiverID uint) (*models.Friendship, error) {
	return r.remove(ctx, id, receiverID)
}

func (r *friendshipRepository) remove(ctx context.Context, id, receiverID uint, statuses ...models.FriendshipStatus) (*models.Friendship, error) {
	f, err := r.GetReceived(ctx, id, receiverID)
	if err != nil {
		return nil, err
	}

	q := r.db.WithContext(ctx).Where("id = ? AND receiver_id = ?", id, receiverID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	res := q.Delete(&models.Friendship{})
	if res.Error != nil {
		return nil, models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		if len(statuses) > 0 {
			return nil, models.NewPreconditionError("not available")
		}
		return nil, models.NewNotFoundError("Friendship", id)
	}
	return f, nil
}
