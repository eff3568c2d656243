package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/example/techblog-server/internal/model"
)

var fixtureSeq int64

func nextSeq() int64 {
	return atomic.AddInt64(&fixtureSeq, 1)
}

// TestUser 创建测试用户
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	seq := nextSeq()
	user := &model.User{
		Username:     fmt.Sprintf("testuser_%d", seq),
		Email:        fmt.Sprintf("test_%d@example.com", seq),
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuvwxyz123456", // bcrypt hash placeholder
		Role:         model.RoleUser,
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithUsername 设置用户名
func WithUsername(username string) func(*model.User) {
	return func(u *model.User) {
		u.Username = username
	}
}

// WithEmail 设置邮箱
func WithEmail(email string) func(*model.User) {
	return func(u *model.User) {
		u.Email = email
	}
}

// WithRole 设置角色
func WithRole(role string) func(*model.User) {
	return func(u *model.User) {
		u.Role = role
	}
}

// TestPost 创建测试文章
func TestPost(t *testing.T, db *gorm.DB, authorID int64, opts ...func(*model.Post)) *model.Post {
	t.Helper()

	seq := nextSeq()
	post := &model.Post{
		AuthorID:    authorID,
		Title:       fmt.Sprintf("Test Post %d", seq),
		Slug:        fmt.Sprintf("test-post-%d", seq),
		Content:     "Test post content.",
		IsPublished: true,
	}

	for _, opt := range opts {
		opt(post)
	}

	if err := db.Create(post).Error; err != nil {
		t.Fatalf("Failed to create test post: %v", err)
	}

	return post
}

// WithTitle 设置文章标题
func WithTitle(title string) func(*model.Post) {
	return func(p *model.Post) {
		p.Title = title
	}
}

// WithPublished 设置发布状态
func WithPublished(published bool) func(*model.Post) {
	return func(p *model.Post) {
		p.IsPublished = published
	}
}

// TestComment 创建测试评论
func TestComment(t *testing.T, db *gorm.DB, postID int64, opts ...func(*model.Comment)) *model.Comment {
	t.Helper()

	seq := nextSeq()
	comment := &model.Comment{
		PostID:      postID,
		AuthorName:  fmt.Sprintf("Visitor %d", seq),
		AuthorEmail: fmt.Sprintf("visitor_%d@example.com", seq),
		Content:     fmt.Sprintf("Test comment %d", seq),
	}

	for _, opt := range opts {
		opt(comment)
	}

	if err := db.Create(comment).Error; err != nil {
		t.Fatalf("Failed to create test comment: %v", err)
	}

	return comment
}

// Approved 设置评论为已审核
func Approved() func(*model.Comment) {
	return func(c *model.Comment) {
		c.IsApproved = true
	}
}

// Deleted 设置评论为已删除
func Deleted() func(*model.Comment) {
	return func(c *model.Comment) {
		c.IsDeleted = true
	}
}

// WithParent 设置父评论
func WithParent(parentID int64) func(*model.Comment) {
	return func(c *model.Comment) {
		c.ParentID = &parentID
	}
}

// WithAuthor 关联注册用户
func WithAuthor(userID int64) func(*model.Comment) {
	return func(c *model.Comment) {
		c.AuthorID = &userID
	}
}

// WithContent 设置评论内容
func WithContent(content string) func(*model.Comment) {
	return func(c *model.Comment) {
		c.Content = content
	}
}

// WithCreatedAt 设置创建时间
func WithCreatedAt(ts time.Time) func(*model.Comment) {
	return func(c *model.Comment) {
		c.CreatedAt = ts
	}
}
