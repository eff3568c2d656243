package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const (
	ChannelCommentEvents = "comment_events"
)

// CommentEvent 评论变更事件。
// 通过 Redis 发布，多实例部署时每个实例都能把事件推给
// 自己持有的 WebSocket 连接。
type CommentEvent struct {
	Type    string          `json:"type"`
	PostID  int64           `json:"post_id"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Publisher Redis 发布者
type Publisher struct {
	client *redis.Client
}

// NewPublisher 创建发布者
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// PublishCommentEvent 发布评论事件
func (p *Publisher) PublishCommentEvent(ctx context.Context, event *CommentEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal comment event: %w", err)
	}

	return p.client.Publish(ctx, ChannelCommentEvents, data).Err()
}

// Subscriber Redis 订阅者
type Subscriber struct {
	client *redis.Client
}

// NewSubscriber 创建订阅者
func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

// Subscribe 订阅评论事件，阻塞直到 ctx 取消
func (s *Subscriber) Subscribe(ctx context.Context, handler func(*CommentEvent)) error {
	pubsub := s.client.Subscribe(ctx, ChannelCommentEvents)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var event CommentEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				continue // 忽略解析错误
			}

			handler(&event)
		}
	}
}
