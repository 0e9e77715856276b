package service

import (
	"context"

	"socialnet/internal/models"
	"socialnet/internal/notifications"
	"socialnet/internal/repository"
)

// CreateCommentInput is the comment creation payload.
type CreateCommentInput struct {
	PostID uint   `json:"post"`
	Text   string `json:"text"`
}

// UpdateCommentInput carries comment changes. With Partial unset the text is
// required, as for PUT.
type UpdateCommentInput struct {
	Text    *string `json:"text"`
	Partial bool    `json:"-"`
}

// CommentEvent is the realtime payload sent to a post author.
type CommentEvent struct {
	CommentID uint `json:"comment_id"`
	PostID    uint `json:"post_id"`
	UserID    uint `json:"user_id"`
}

// CommentService implements comment CRUD.
type CommentService struct {
	comments  repository.CommentRepository
	posts     repository.PostRepository
	isAdmin   AdminCheck
	publisher notifications.Publisher
}

// NewCommentService returns a new CommentService. publisher may be nil.
func NewCommentService(
	comments repository.CommentRepository,
	posts repository.PostRepository,
	isAdmin AdminCheck,
	publisher notifications.Publisher,
) *CommentService {
	return &CommentService{
		comments:  comments,
		posts:     posts,
		isAdmin:   isAdmin,
		publisher: publisher,
	}
}

// Create stores a comment by authorID on an existing post.
func (s *CommentService) Create(ctx context.Context, authorID uint, in CreateCommentInput) (*models.Comment, error) {
	if in.PostID == 0 {
		return nil, models.NewValidationError("post: this field is required")
	}
	text, err := validateText(in.Text)
	if err != nil {
		return nil, err
	}

	post, err := s.posts.GetByID(ctx, in.PostID)
	if err != nil {
		if isNotFound(err) {
			return nil, models.NewValidationError("post: post does not exist")
		}
		return nil, err
	}

	comment := &models.Comment{
		UserID: authorID,
		PostID: in.PostID,
		Text:   text,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	if post.UserID != authorID {
		notifications.Emit(ctx, s.publisher, notifications.EventPostCommented, CommentEvent{
			CommentID: comment.ID,
			PostID:    post.ID,
			UserID:    authorID,
		}, post.UserID)
	}
	return s.comments.GetByID(ctx, comment.ID)
}

// List returns comments matching filter.
func (s *CommentService) List(ctx context.Context, filter repository.CommentFilter) ([]models.Comment, int64, error) {
	return s.comments.List(ctx, filter)
}

// Get returns one comment.
func (s *CommentService) Get(ctx context.Context, id uint) (*models.Comment, error) {
	return s.comments.GetByID(ctx, id)
}

// Update edits a comment owned by authorID; other comments are NotFound.
func (s *CommentService) Update(ctx context.Context, id, authorID uint, in UpdateCommentInput) (*models.Comment, error) {
	if in.Text == nil {
		if !in.Partial {
			return nil, models.NewValidationError("text: this field is required")
		}
		comment, err := s.comments.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if comment.UserID != authorID {
			return nil, models.NewNotFoundError("Comment", id)
		}
		return comment, nil
	}

	text, err := validateText(*in.Text)
	if err != nil {
		return nil, err
	}
	return s.comments.UpdateOwned(ctx, id, authorID, text)
}

// Delete removes a comment. Only the author or an admin may delete it.
func (s *CommentService) Delete(ctx context.Context, id, callerID uint) error {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if comment.UserID != callerID {
		admin, err := s.isAdmin(ctx, callerID)
		if err != nil {
			return err
		}
		if !admin {
			return models.NewNotFoundError("Comment", id)
		}
	}
	return s.comments.Delete(ctx, id)
}
