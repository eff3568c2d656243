package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/example/techblog-server/internal/model"
)

// Mode 可见性模式，同时作为缓存 key 的一段。
// 只允许两个取值，key 编码保持唯一规范，失效时不需要兼容多种拼写。
type Mode string

const (
	ModePublic Mode = "public" // 仅已审核评论
	ModeAll    Mode = "all"    // 已审核 + 待审核评论
)

// Modes 全部可见性模式，写操作失效时遍历
var Modes = []Mode{ModePublic, ModeAll}

// DefaultTTL 评论缓存默认过期时间
const DefaultTTL = 10 * time.Minute

// CommentCache 评论查询的读穿缓存。
// client 为 nil 时所有操作退化为未命中/空操作，关闭缓存不影响正确性。
type CommentCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCommentCache(client *redis.Client, ttl time.Duration) *CommentCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CommentCache{client: client, ttl: ttl}
}

// PostCommentsKey 文章评论列表的缓存 key
func PostCommentsKey(postID int64, mode Mode) string {
	return fmt.Sprintf("comments:post:%d:%s", postID, mode)
}

// AllCommentsKey 全站评论列表的缓存 key
func AllCommentsKey(mode Mode) string {
	return fmt.Sprintf("comments:all:%s", mode)
}

// CommentKey 单条评论的缓存 key
func CommentKey(id int64) string {
	return fmt.Sprintf("comment:%d", id)
}

func (c *CommentCache) enabled() bool {
	return c != nil && c.client != nil
}

// GetComments 读取平面评论列表，未命中返回 false
func (c *CommentCache) GetComments(ctx context.Context, key string) ([]*model.Comment, bool) {
	if !c.enabled() {
		return nil, false
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}

	var comments []*model.Comment
	if err := json.Unmarshal(data, &comments); err != nil {
		log.Printf("cache: failed to unmarshal %s: %v", key, err)
		return nil, false
	}
	return comments, true
}

// SetComments 写入平面评论列表，尽力而为
func (c *CommentCache) SetComments(ctx context.Context, key string, comments []*model.Comment) {
	if !c.enabled() {
		return
	}

	data, err := json.Marshal(comments)
	if err != nil {
		log.Printf("cache: failed to marshal %s: %v", key, err)
		return
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		log.Printf("cache: failed to set %s: %v", key, err)
	}
}

// GetComment 读取单条评论
func (c *CommentCache) GetComment(ctx context.Context, id int64) (*model.Comment, bool) {
	if !c.enabled() {
		return nil, false
	}

	data, err := c.client.Get(ctx, CommentKey(id)).Bytes()
	if err != nil {
		return nil, false
	}

	var comment model.Comment
	if err := json.Unmarshal(data, &comment); err != nil {
		log.Printf("cache: failed to unmarshal comment %d: %v", id, err)
		return nil, false
	}
	return &comment, true
}

// SetComment 写入单条评论
func (c *CommentCache) SetComment(ctx context.Context, comment *model.Comment) {
	if !c.enabled() || comment == nil {
		return
	}

	data, err := json.Marshal(comment)
	if err != nil {
		log.Printf("cache: failed to marshal comment %d: %v", comment.ID, err)
		return
	}

	if err := c.client.Set(ctx, CommentKey(comment.ID), data, c.ttl).Err(); err != nil {
		log.Printf("cache: failed to set comment %d: %v", comment.ID, err)
	}
}

// InvalidateComment 失效写操作可能影响到的全部 key：
// 单条评论、该文章两种模式的列表、全站两种模式的列表。
// 必须在存储提交成功之后调用。
func (c *CommentCache) InvalidateComment(ctx context.Context, commentID, postID int64) {
	if !c.enabled() {
		return
	}

	keys := []string{CommentKey(commentID)}
	for _, mode := range Modes {
		keys = append(keys, PostCommentsKey(postID, mode), AllCommentsKey(mode))
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		log.Printf("cache: failed to invalidate comment %d: %v", commentID, err)
	}
}
