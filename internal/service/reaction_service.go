package service

import (
	"context"

	"socialnet/internal/notifications"
	"socialnet/internal/observability"
	"socialnet/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// LikeEvent is the realtime payload sent to a post author.
type LikeEvent struct {
	PostID uint `json:"post_id"`
	UserID uint `json:"user_id"`
}

// ReactionService toggles likes on published posts.
type ReactionService struct {
	likes     repository.LikeRepository
	posts     repository.PostRepository
	publisher notifications.Publisher
}

// NewReactionService returns a new ReactionService. publisher may be nil.
func NewReactionService(likes repository.LikeRepository, posts repository.PostRepository, publisher notifications.Publisher) *ReactionService {
	return &ReactionService{
		likes:     likes,
		posts:     posts,
		publisher: publisher,
	}
}

// Toggle likes postID for userID, or removes the like when one exists.
func (s *ReactionService) Toggle(ctx context.Context, postID, userID uint) (_ repository.ToggleResult, err error) {
	ctx, span := observability.StartSpan(ctx, "reaction", "toggle",
		attribute.Int64("post_id", int64(postID)),
		attribute.Int64("user_id", int64(userID)),
	)
	defer func() { observability.EndSpan(span, err) }()

	post, err := s.posts.GetVisible(ctx, postID, userID)
	if err != nil {
		return "", err
	}

	result, err := s.likes.Toggle(ctx, userID, postID)
	if err != nil {
		return "", err
	}
	observability.LikeToggles.WithLabelValues(string(result)).Inc()

	if result == repository.LikeAdded && post.UserID != userID {
		notifications.Emit(ctx, s.publisher, notifications.EventPostLiked, LikeEvent{
			PostID: postID,
			UserID: userID,
		}, post.UserID)
	}
	return result, nil
}
