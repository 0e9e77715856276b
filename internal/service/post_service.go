package service

import (
	"context"
	"strings"

	"socialnet/internal/models"
	"socialnet/internal/repository"
)

// maxTextLen bounds post and comment bodies.
const maxTextLen = 10000

// AdminCheck reports whether userID holds the admin role.
type AdminCheck func(ctx context.Context, userID uint) (bool, error)

// AdminCheckFromUsers builds an AdminCheck backed by the account store.
func AdminCheckFromUsers(users repository.UserRepository) AdminCheck {
	return func(ctx context.Context, userID uint) (bool, error) {
		user, err := users.GetByID(ctx, userID)
		if err != nil {
			if isNotFound(err) {
				return false, nil
			}
			return false, err
		}
		return user.IsAdmin(), nil
	}
}

// CreatePostInput is the post creation payload.
type CreatePostInput struct {
	Text    string `json:"text"`
	IsDraft bool   `json:"is_draft"`
}

// UpdatePostInput carries post changes. With Partial unset every field is
// required, as for PUT.
type UpdatePostInput struct {
	Text    *string `json:"text"`
	IsDraft *bool   `json:"is_draft"`
	Partial bool    `json:"-"`
}

// PostService implements post CRUD.
type PostService struct {
	posts   repository.PostRepository
	isAdmin AdminCheck
}

// NewPostService returns a new PostService.
func NewPostService(posts repository.PostRepository, isAdmin AdminCheck) *PostService {
	return &PostService{
		posts:   posts,
		isAdmin: isAdmin,
	}
}

func validateText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", models.NewValidationError("text: this field may not be blank")
	}
	if len(text) > maxTextLen {
		return "", models.NewValidationError("text: ensure this field has no more than 10000 characters")
	}
	return text, nil
}

// Create stores a post authored by authorID.
func (s *PostService) Create(ctx context.Context, authorID uint, in CreatePostInput) (*models.Post, error) {
	text, err := validateText(in.Text)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		UserID:  authorID,
		Text:    text,
		IsDraft: in.IsDraft,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.posts.GetDetails(ctx, post.ID, authorID)
}

// List returns published posts matching filter.
func (s *PostService) List(ctx context.Context, filter repository.PostFilter) ([]models.Post, int64, error) {
	return s.posts.List(ctx, filter)
}

// Get returns one published post as seen by viewerID.
func (s *PostService) Get(ctx context.Context, id, viewerID uint) (*models.Post, error) {
	return s.posts.GetVisible(ctx, id, viewerID)
}

// Update edits a published post owned by authorID. Drafts cannot be edited.
func (s *PostService) Update(ctx context.Context, id, authorID uint, in UpdatePostInput) (*models.Post, error) {
	fields := make(map[string]interface{})
	if in.Text != nil {
		text, err := validateText(*in.Text)
		if err != nil {
			return nil, err
		}
		fields["text"] = text
	} else if !in.Partial {
		return nil, models.NewValidationError("text: this field is required")
	}
	if in.IsDraft != nil {
		fields["is_draft"] = *in.IsDraft
	}

	if err := s.posts.UpdateOwned(ctx, id, authorID, fields); err != nil {
		return nil, err
	}
	return s.posts.GetDetails(ctx, id, authorID)
}

// Delete removes a post. Only the author or an admin may delete it; anyone
// else gets NotFound.
func (s *PostService) Delete(ctx context.Context, id, callerID uint) error {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if post.UserID != callerID {
		admin, err := s.isAdmin(ctx, callerID)
		if err != nil {
			return err
		}
		if !admin {
			return models.NewNotFoundError("Post", id)
		}
	}
	return s.posts.Delete(ctx, id)
}
