package notifications

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"socialnet/internal/middleware"
	"socialnet/internal/observability"
)

// Realtime event types.
const (
	EventFriendshipRequested = "friendship_requested"
	EventFriendshipAccepted  = "friendship_accepted"
	EventFriendshipRejected  = "friendship_rejected"
	EventFriendshipDeleted   = "friendship_deleted"
	EventPostLiked           = "post_liked"
	EventPostCommented       = "post_commented"
)

// Event is the envelope written to websocket clients.
type Event struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// Encode renders the event as a JSON string.
func (e Event) Encode() (string, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Emit publishes an event of eventType to each of userIDs. Delivery is best
// effort: failures are logged and never returned to the caller.
func Emit(ctx context.Context, p Publisher, eventType string, payload interface{}, userIDs ...uint) {
	if p == nil || len(userIDs) == 0 {
		return
	}
	encoded, err := Event{Type: eventType, Payload: payload, Timestamp: time.Now().UTC()}.Encode()
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "failed to encode realtime event",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()),
		)
		return
	}

	seen := make(map[uint]struct{}, len(userIDs))
	for _, id := range userIDs {
		if id == 0 {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if err := p.PublishUser(ctx, id, encoded); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to publish realtime event",
				slog.String("event_type", eventType),
				slog.Uint64("target_user_id", uint64(id)),
				slog.String("error", err.Error()),
			)
			continue
		}
		observability.WebSocketEventsTotal.WithLabelValues(eventType).Inc()
	}
}
