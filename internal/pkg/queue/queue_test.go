package queue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupQueue(t *testing.T) *Queue {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewQueue(client, "test_notifications")
}

func TestPushAndPop(t *testing.T) {
	q := setupQueue(t)
	ctx := context.Background()

	msg := &NotificationMessage{
		CommentID:      1,
		PostID:         2,
		PostTitle:      "Understanding Goroutines",
		AuthorName:     "alice",
		Excerpt:        "Great post, but what about channel buffering?",
		RecipientEmail: "author@example.com",
	}

	err := q.Push(ctx, msg)
	require.NoError(t, err)

	length, err := q.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), length)

	popped, err := q.Pop(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, popped)
	assert.Equal(t, msg.CommentID, popped.CommentID)
	assert.Equal(t, msg.PostTitle, popped.PostTitle)
	assert.Equal(t, msg.RecipientEmail, popped.RecipientEmail)

	length, err = q.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), length)
}

func TestPopFIFOOrder(t *testing.T) {
	q := setupQueue(t)
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		err := q.Push(ctx, &NotificationMessage{CommentID: i})
		require.NoError(t, err)
	}

	for i := int64(1); i <= 3; i++ {
		msg, err := q.Pop(ctx, time.Second)
		require.NoError(t, err)
		require.NotNil(t, msg)
		assert.Equal(t, i, msg.CommentID)
	}
}

func TestPopTimeout(t *testing.T) {
	q := setupQueue(t)

	msg, err := q.Pop(context.Background(), 100*time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, msg)
}
