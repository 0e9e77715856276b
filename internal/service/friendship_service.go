package service

import (
	"context"

	"socialnet/internal/models"
	"socialnet/internal/notifications"
	"socialnet/internal/observability"
	"socialnet/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// FriendshipEvent is the realtime payload for friendship transitions.
type FriendshipEvent struct {
	FriendshipID uint                    `json:"friendship_id"`
	SenderID     uint                    `json:"sender_id"`
	ReceiverID   uint                    `json:"receiver_id"`
	Status       models.FriendshipStatus `json:"status"`
}

// FriendshipService drives the friendship request lifecycle. Every action
// other than Request is scoped to requests received by the caller.
type FriendshipService struct {
	friendships repository.FriendshipRepository
	users       repository.UserRepository
	publisher   notifications.Publisher
}

// NewFriendshipService returns a new FriendshipService. publisher may be nil.
func NewFriendshipService(friendships repository.FriendshipRepository, users repository.UserRepository, publisher notifications.Publisher) *FriendshipService {
	return &FriendshipService{
		friendships: friendships,
		users:       users,
		publisher:   publisher,
	}
}

// Request sends a friendship request from senderID to receiverID.
func (s *FriendshipService) Request(ctx context.Context, senderID, receiverID uint) (_ *models.Friendship, err error) {
	ctx, span := observability.StartSpan(ctx, "friendship", "request",
		attribute.Int64("sender_id", int64(senderID)),
		attribute.Int64("receiver_id", int64(receiverID)),
	)
	defer func() { observability.EndSpan(span, err) }()

	if receiverID == 0 {
		return nil, models.NewValidationError("receiver: this field is required")
	}
	if senderID == receiverID {
		return nil, models.NewValidationError("receiver: you cannot send a friendship request to yourself")
	}

	sender, err := s.users.GetByID(ctx, senderID)
	if err != nil {
		return nil, err
	}
	receiver, err := s.users.GetByID(ctx, receiverID)
	if err != nil {
		if isNotFound(err) {
			return nil, models.NewValidationError("receiver: user does not exist")
		}
		return nil, err
	}

	friendship := &models.Friendship{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     models.FriendshipStatusWaiting,
	}
	if err := s.friendships.Create(ctx, friendship); err != nil {
		return nil, err
	}
	friendship.Sender = *sender
	friendship.Receiver = *receiver

	observability.FriendshipTransitions.WithLabelValues(observability.TransitionRequested).Inc()
	s.emit(ctx, notifications.EventFriendshipRequested, friendship)
	return friendship, nil
}

// List returns the requests received by receiverID.
func (s *FriendshipService) List(ctx context.Context, filter repository.FriendshipFilter) ([]models.Friendship, int64, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, models.NewValidationError("status: select a valid choice")
	}
	return s.friendships.ListReceived(ctx, filter)
}

// Get returns one received request.
func (s *FriendshipService) Get(ctx context.Context, id, receiverID uint) (*models.Friendship, error) {
	return s.friendships.GetReceived(ctx, id, receiverID)
}

// Accept moves a waiting request to accepted.
func (s *FriendshipService) Accept(ctx context.Context, id, receiverID uint) (*models.Friendship, error) {
	friendship, err := s.friendships.Accept(ctx, id, receiverID)
	if err != nil {
		return nil, err
	}
	observability.FriendshipTransitions.WithLabelValues(observability.TransitionAccepted).Inc()
	s.emit(ctx, notifications.EventFriendshipAccepted, friendship)
	return friendship, nil
}

// Reject removes a waiting or accepted request.
func (s *FriendshipService) Reject(ctx context.Context, id, receiverID uint) (*models.Friendship, error) {
	friendship, err := s.friendships.Reject(ctx, id, receiverID)
	if err != nil {
		return nil, err
	}
	observability.FriendshipTransitions.WithLabelValues(observability.TransitionRejected).Inc()
	s.emit(ctx, notifications.EventFriendshipRejected, friendship)
	return friendship, nil
}

// Delete removes a received request regardless of status.
func (s *FriendshipService) Delete(ctx context.Context, id, receiverID uint) error {
	friendship, err := s.friendships.Delete(ctx, id, receiverID)
	if err != nil {
		return err
	}
	observability.FriendshipTransitions.WithLabelValues(observability.TransitionDeleted).Inc()
	s.emit(ctx, notifications.EventFriendshipDeleted, friendship)
	return nil
}

func (s *FriendshipService) emit(ctx context.Context, eventType string, f *models.Friendship) {
	notifications.Emit(ctx, s.publisher, eventType, FriendshipEvent{
		FriendshipID: f.ID,
		SenderID:     f.SenderID,
		ReceiverID:   f.ReceiverID,
		Status:       f.Status,
	}, f.SenderID, f.ReceiverID)
}
