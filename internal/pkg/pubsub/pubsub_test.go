package pubsub

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return client, mr
}

func TestPublishAndSubscribe(t *testing.T) {
	client, _ := setupRedis(t)

	pub := NewPublisher(client)
	sub := NewSubscriber(client)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan *CommentEvent, 1)
	done := make(chan struct{})

	go func() {
		defer close(done)
		_ = sub.Subscribe(ctx, func(event *CommentEvent) {
			received <- event
		})
	}()

	// give the subscriber time to attach
	time.Sleep(50 * time.Millisecond)

	payload, _ := json.Marshal(map[string]int64{"id": 42})
	err := pub.PublishCommentEvent(ctx, &CommentEvent{
		Type:    "comment_created",
		PostID:  7,
		Payload: payload,
	})
	require.NoError(t, err)

	select {
	case event := <-received:
		assert.Equal(t, "comment_created", event.Type)
		assert.Equal(t, int64(7), event.PostID)
		assert.JSONEq(t, `{"id":42}`, string(event.Payload))
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber did not stop after cancel")
	}
}

func TestSubscribeIgnoresMalformedMessages(t *testing.T) {
	client, _ := setupRedis(t)

	pub := NewPublisher(client)
	sub := NewSubscriber(client)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan *CommentEvent, 1)
	go func() {
		_ = sub.Subscribe(ctx, func(event *CommentEvent) {
			received <- event
		})
	}()

	time.Sleep(50 * time.Millisecond)

	// garbage first, then a valid event
	err := client.Publish(ctx, ChannelCommentEvents, "not json").Err()
	require.NoError(t, err)

	err = pub.PublishCommentEvent(ctx, &CommentEvent{Type: "comment_deleted", PostID: 3})
	require.NoError(t, err)

	select {
	case event := <-received:
		assert.Equal(t, "comment_deleted", event.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}
