package repository

import (
	"context"

	"socialnet/internal/models"
	"socialnet/internal/observability"

	"gorm.io/gorm"
)

// UserFilter narrows the public account listing.
type UserFilter struct {
	ListQuery
	// ViewerID is the authenticated caller, 0 when anonymous.
	ViewerID uint
	// FriendsOnly keeps accounts connected to the viewer by an accepted friendship.
	FriendsOnly bool
}

var userOrdering = orderSpec{
	table: "users",
	allowed: map[string]string{
		"created_at": "users.created_at",
		"username":   "users.username",
	},
	def: "-created_at",
}

// UserRepository defines persistence operations for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetVisible(ctx context.Context, id uint) (*models.User, error)
	List(ctx context.Context, filter UserFilter) ([]models.User, int64, error)
	UpdateProfile(ctx context.Context, id uint, fields map[string]interface{}) (*models.User, error)
	SetPersonalImage(ctx context.Context, id uint, key string) error
	HasPosts(ctx context.Context, id uint) (bool, error)
	Delete(ctx context.Context, id uint) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// visibleUsers excludes superuser, staff and inactive accounts.
func visibleUsers(db *gorm.DB) *gorm.DB {
	return db.Where("users.is_superuser = ? AND users.is_staff = ? AND users.is_active = ?", false, false, true)
}

// friendsOf keeps accounts joined to viewerID by an accepted friendship in
// either direction.
func friendsOf(viewerID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(
			"(users.id IN (SELECT receiver_id FROM friendships WHERE sender_id = ? AND status = ?)"+
				" OR users.id IN (SELECT sender_id FROM friendships WHERE receiver_id = ? AND status = ?))",
			viewerID, models.FriendshipStatusAccepted, viewerID, models.FriendshipStatusAccepted,
		)
	}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return models.NewConflictError("A user with that username already exists.")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, wrapLookupError(err, "User", id)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, wrapLookupError(err, "User", username)
	}
	return &user, nil
}

func (r *userRepository) GetVisible(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Scopes(visibleUsers).First(&user, id).Error; err != nil {
		return nil, wrapLookupError(err, "User", id)
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]models.User, int64, error) {
	defer observability.TrackQuery("list", "users")()

	scopes := []func(*gorm.DB) *gorm.DB{
		visibleUsers,
		search(filter.Search, likeExpr("users.username"), likeExpr("users.email")),
	}
	if filter.FriendsOnly {
		if filter.ViewerID == 0 {
			return []models.User{}, 0, nil
		}
		scopes = append(scopes, friendsOf(filter.ViewerID))
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Scopes(scopes...).Count(&count).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	users := []models.User{}
	if err := r.db.WithContext(ctx).
		Scopes(scopes...).
		Scopes(order(userOrdering, filter.Ordering), paginate(filter.ListQuery)).
		Find(&users).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return users, count, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, id uint, fields map[string]interface{}) (*models.User, error) {
	if len(fields) > 0 {
		err := r.db.WithContext(ctx).Model(&models.User{ID: id}).Updates(fields).Error
		if err != nil {
			if isUniqueViolation(err) {
				return nil, models.NewConflictError("A user with that username already exists.")
			}
			return nil, models.NewInternalError(err)
		}
	}
	return r.GetByID(ctx, id)
}

func (r *userRepository) SetPersonalImage(ctx context.Context, id uint, key string) error {
	res := r.db.WithContext(ctx).Model(&models.User{ID: id}).Update("personal_image", key)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	return nil
}

func (r *userRepository) HasPosts(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("user_id = ?", id).Limit(1).Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.User{}, id)
	if res.Error != nil {
		if isForeignKeyViolation(res.Error) {
			return models.NewPreconditionError("not available")
		}
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	return nil
}
