package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub()

	c1 := &Client{PostID: 1}
	c2 := &Client{PostID: 1}
	c3 := &Client{PostID: 2}

	hub.Register(c1)
	hub.Register(c2)
	hub.Register(c3)

	assert.Equal(t, 2, hub.SubscriberCount(1))
	assert.Equal(t, 1, hub.SubscriberCount(2))
	assert.Equal(t, 3, hub.ConnectionCount())

	hub.Unregister(c1)
	assert.Equal(t, 1, hub.SubscriberCount(1))
	assert.Equal(t, 2, hub.ConnectionCount())

	// Room is removed when the last subscriber leaves
	hub.Unregister(c2)
	assert.Equal(t, 0, hub.SubscriberCount(1))
	assert.Equal(t, 1, hub.ConnectionCount())
}

func TestHub_UnregisterUnknownClient(t *testing.T) {
	hub := NewHub()

	// Unregistering a client that was never registered should not panic
	hub.Unregister(&Client{PostID: 42})
	assert.Equal(t, 0, hub.ConnectionCount())
}

func TestHub_BroadcastToEmptyRoom(t *testing.T) {
	hub := NewHub()

	err := hub.BroadcastToPost(99, &Message{
		Type: EventCommentCreated,
		Data: map[string]interface{}{"id": 1},
	})
	assert.NoError(t, err)
}

func TestHub_SubscriberCountUnknownPost(t *testing.T) {
	hub := NewHub()
	assert.Equal(t, 0, hub.SubscriberCount(123))
}
