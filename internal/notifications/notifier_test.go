package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_NilRedisIsNoop(t *testing.T) {
	n := NewNotifier(nil)
	assert.NoError(t, n.PublishUser(context.Background(), 1, "test payload"))
	assert.NoError(t, n.PublishBroadcast(context.Background(), "test payload"))
	assert.NoError(t, n.StartPatternSubscriber(context.Background(), func(string, string) {}))
}

func TestUserChannel(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "notifications:user:1", UserChannel(1))
	assert.Equal(t, "notifications:user:100", UserChannel(100))

	id, ok := parseUserChannel("notifications:user:42")
	assert.True(t, ok)
	assert.Equal(t, uint(42), id)

	for _, bad := range []string{"notifications:user:", "notifications:user:x", "chat:conv:1", "notifications:user:0"} {
		_, ok := parseUserChannel(bad)
		assert.False(t, ok, bad)
	}
}

func TestHub_StartWiringForwardsRedisMessages(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	n := NewNotifier(rdb)
	require.NoError(t, hub.StartWiring(ctx, n))

	alice, err := hub.Register(21, nil)
	require.NoError(t, err)
	bob, err := hub.Register(22, nil)
	require.NoError(t, err)

	require.NoError(t, n.PublishUser(context.Background(), 21, "for-alice"))
	assert.Equal(t, "for-alice", receive(t, alice))

	require.NoError(t, n.PublishBroadcast(context.Background(), "for-all"))
	assert.Equal(t, "for-all", receive(t, alice))
	assert.Equal(t, "for-all", receive(t, bob))
}

type recordingPublisher struct {
	mu   sync.Mutex
	sent map[uint][]string
	fail uint
}

func (p *recordingPublisher) PublishUser(_ context.Context, userID uint, payload string) error {
	if userID == p.fail {
		return errors.New("publish failed")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sent == nil {
		p.sent = make(map[uint][]string)
	}
	p.sent[userID] = append(p.sent[userID], payload)
	return nil
}

func TestEmit(t *testing.T) {
	p := &recordingPublisher{fail: 3}
	Emit(context.Background(), p, EventFriendshipAccepted, map[string]uint{"friendship_id": 9}, 1, 2, 2, 0, 3)

	assert.Len(t, p.sent[1], 1)
	assert.Len(t, p.sent[2], 1)
	assert.NotContains(t, p.sent, uint(3))

	var ev struct {
		Type    string          `json:"type"`
		Payload map[string]uint `json:"payload"`
	}
	require.NoError(t, json.Unmarshal([]byte(p.sent[1][0]), &ev))
	assert.Equal(t, EventFriendshipAccepted, ev.Type)
	assert.Equal(t, uint(9), ev.Payload["friendship_id"])

	assert.NotPanics(t, func() { Emit(context.Background(), nil, EventPostLiked, nil, 1) })
}
