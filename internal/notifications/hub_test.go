package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testEventuallyTimeout = time.Second
	testPollInterval      = 10 * time.Millisecond
)

func receive(t *testing.T, c *Client) string {
	t.Helper()
	select {
	case msg := <-c.Send:
		return string(msg)
	case <-time.After(testEventuallyTimeout):
		t.Fatal("no message delivered")
		return ""
	}
}

func userConns(h *Hub, userID uint) map[*Client]struct{} {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.conns[userID]
}

func TestHub_RegisterAndBroadcast(t *testing.T) {
	hub := NewHub()
	a1, err := hub.Register(1, nil)
	require.NoError(t, err)
	a2, err := hub.Register(1, nil)
	require.NoError(t, err)
	b, err := hub.Register(2, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, hub.ConnectionCount())
	assert.Len(t, userConns(hub, 1), 2)

	hub.Broadcast(1, "hello")
	assert.Equal(t, "hello", receive(t, a1))
	assert.Equal(t, "hello", receive(t, a2))
	assert.Empty(t, b.Send)

	hub.BroadcastAll("all")
	assert.Equal(t, "all", receive(t, b))
	assert.Equal(t, "all", receive(t, a1))
}

func TestHub_UnregisterIsIdempotent(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register(7, nil)
	require.NoError(t, err)

	hub.UnregisterClient(c)
	hub.UnregisterClient(c)
	assert.Empty(t, userConns(hub, 7))
	assert.Zero(t, hub.ConnectionCount())

	_, open := <-c.Send
	assert.False(t, open)

	// Sending to a closed client is dropped instead of panicking.
	assert.NotPanics(t, func() { c.TrySend([]byte("late")) })
}

func TestHub_PerUserLimit(t *testing.T) {
	hub := NewHub()
	for i := 0; i < maxConnsPerUser; i++ {
		_, err := hub.Register(3, nil)
		require.NoError(t, err)
	}
	_, err := hub.Register(3, nil)
	assert.ErrorIs(t, err, ErrUserFull)

	_, err = hub.Register(4, nil)
	assert.NoError(t, err)
}

func TestHub_ShutdownRefusesNewClients(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register(5, nil)
	require.NoError(t, err)

	require.NoError(t, hub.Shutdown(context.Background()))
	require.NoError(t, hub.Shutdown(context.Background()))

	_, open := <-c.Send
	assert.False(t, open)
	assert.Zero(t, hub.ConnectionCount())

	_, err = hub.Register(5, nil)
	assert.ErrorIs(t, err, ErrServerFull)
}

func TestClient_TrySendDropsWhenFull(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register(9, nil)
	require.NoError(t, err)

	for i := 0; i < sendBufferSize+5; i++ {
		c.TrySend([]byte("x"))
	}
	assert.Len(t, c.Send, sendBufferSize)
}

func TestHub_PublishUserDeliversLocally(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register(11, nil)
	require.NoError(t, err)

	require.NoError(t, hub.PublishUser(context.Background(), 11, "local"))
	assert.Equal(t, "local", receive(t, c))
}
