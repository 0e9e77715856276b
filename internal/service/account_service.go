package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"socialnet/internal/cache"
	"socialnet/internal/middleware"
	"socialnet/internal/models"
	"socialnet/internal/observability"
	"socialnet/internal/repository"
	"socialnet/internal/storage"
	"socialnet/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer mints access tokens for authenticated accounts.
type TokenIssuer interface {
	Issue(userID uint, username string) (string, error)
}

// LoginData is returned by registration and login.
type LoginData struct {
	Token string
	User  *models.User
}

// RegisterInput is the registration payload.
type RegisterInput struct {
	Username  string `json:"username" validate:"required,username"`
	Email     string `json:"email" validate:"optional_email"`
	Password1 string `json:"new_password1" validate:"required,max=128"`
	Password2 string `json:"new_password2" validate:"required,max=128"`
}

// UpdateAccountInput carries the profile fields a caller may change. Nil
// fields are left untouched.
type UpdateAccountInput struct {
	Username *string
	Email    *string
}

// AvatarUpload is a personal image submitted by the account owner.
type AvatarUpload struct {
	Filename string
	Content  []byte
}

const errBadCredentials = "Incorrect authentication credentials."

// AccountService implements registration, login and profile management.
type AccountService struct {
	users          repository.UserRepository
	tokens         TokenIssuer
	blobs          storage.BlobStore
	maxUploadBytes int64
}

// NewAccountService returns a new AccountService.
func NewAccountService(users repository.UserRepository, tokens TokenIssuer, blobs storage.BlobStore, maxUploadBytes int64) *AccountService {
	return &AccountService{
		users:          users,
		tokens:         tokens,
		blobs:          blobs,
		maxUploadBytes: maxUploadBytes,
	}
}

// Register creates a normal, active account and logs it in.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*LoginData, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if err := validation.ValidatePasswordPair(in.Password1, in.Password2); err != nil {
		return nil, models.NewValidationError("new_password2: " + err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password2), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: string(hash),
		IsActive: true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return s.loginData(user)
}

// Login checks credentials. Unknown users, inactive accounts and wrong
// passwords all produce the same AuthenticationError.
func (s *AccountService) Login(ctx context.Context, username, password string) (*LoginData, error) {
	if username == "" || password == "" {
		return nil, models.NewValidationError("username and password are required")
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if isNotFound(err) {
			return nil, models.NewAuthenticationError(errBadCredentials)
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, models.NewAuthenticationError(errBadCredentials)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewAuthenticationError(errBadCredentials)
	}
	return s.loginData(user)
}

func (s *AccountService) loginData(user *models.User) (*LoginData, error) {
	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &LoginData{Token: token, User: user}, nil
}

// List returns the public account listing.
func (s *AccountService) List(ctx context.Context, filter repository.UserFilter) ([]models.User, int64, error) {
	return s.users.List(ctx, filter)
}

// Get returns a publicly visible account, served from the cache when possible.
func (s *AccountService) Get(ctx context.Context, id uint) (*models.User, error) {
	return cache.Aside(ctx, cache.UserKey(id), cache.UserTTL, func(ctx context.Context) (*models.User, error) {
		return s.users.GetVisible(ctx, id)
	})
}

// Update changes the caller's own profile. Other accounts are out of scope
// and reported as not found.
func (s *AccountService) Update(ctx context.Context, callerID, targetID uint, in UpdateAccountInput) (*models.User, error) {
	if callerID != targetID {
		return nil, models.NewNotFoundError("User", targetID)
	}

	fields := make(map[string]interface{})
	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if err := validation.ValidateUsername(username); err != nil {
			return nil, models.NewValidationError("username: " + err.Error())
		}
		fields["username"] = username
	}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if err := validation.ValidateEmail(email); err != nil {
			return nil, models.NewValidationError("email: " + err.Error())
		}
		fields["email"] = email
	}

	user, err := s.users.UpdateProfile(ctx, targetID, fields)
	if err != nil {
		return nil, err
	}
	cache.InvalidateUser(ctx, targetID)
	return user, nil
}

// SetPersonalImage stores a new avatar for the caller and removes the old one.
func (s *AccountService) SetPersonalImage(ctx context.Context, callerID, targetID uint, in AvatarUpload) (*models.User, error) {
	if callerID != targetID {
		return nil, models.NewNotFoundError("User", targetID)
	}
	if s.maxUploadBytes > 0 && int64(len(in.Content)) > s.maxUploadBytes {
		return nil, models.NewValidationError(fmt.Sprintf("personal_image: file too large (max %d bytes)", s.maxUploadBytes))
	}

	user, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	encoded, err := ProcessAvatar(in.Content)
	if err != nil {
		return nil, err
	}

	key, err := s.blobs.Upload(ctx, storage.Object{
		Prefix:      fmt.Sprintf("avatars/%d", targetID),
		Filename:    "avatar.webp",
		ContentType: avatarContentType,
		Size:        int64(len(encoded)),
		Body:        bytes.NewReader(encoded),
		Metadata:    map[string]string{"original-filename": in.Filename},
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	observability.UploadedBytes.WithLabelValues("avatar").Add(float64(len(encoded)))

	if err := s.users.SetPersonalImage(ctx, targetID, key); err != nil {
		_ = s.blobs.Delete(ctx, key)
		return nil, err
	}
	if previous := user.PersonalImage; previous != "" {
		if err := s.blobs.Delete(ctx, previous); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to delete previous avatar",
				slog.String("key", previous), slog.String("error", err.Error()))
		}
	}
	cache.InvalidateUser(ctx, targetID)

	user.PersonalImage = key
	return user, nil
}

// Delete removes the caller's own account. Accounts that still own posts
// cannot be deleted.
func (s *AccountService) Delete(ctx context.Context, callerID, targetID uint) error {
	if callerID != targetID {
		return models.NewNotFoundError("User", targetID)
	}
	hasPosts, err := s.users.HasPosts(ctx, targetID)
	if err != nil {
		return err
	}
	if hasPosts {
		return models.NewPreconditionError("not available")
	}
	if err := s.users.Delete(ctx, targetID); err != nil {
		return err
	}
	cache.InvalidateUser(ctx, targetID)
	return nil
}
