package model

import (
	"time"
)

type Comment struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	PostID      int64     `gorm:"not null;index" json:"post_id"`
	ParentID    *int64    `gorm:"index" json:"parent_id,omitempty"`
	AuthorID    *int64    `gorm:"index" json:"author_id,omitempty"`
	AuthorName  string    `gorm:"size:100;not null" json:"author_name"`
	AuthorEmail string    `gorm:"size:100;not null" json:"-"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	IsApproved  bool      `gorm:"not null;default:false;index" json:"is_approved"`
	IsDeleted   bool      `gorm:"not null;default:false;index" json:"-"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// 关联
	Post *Post `gorm:"foreignKey:PostID" json:"post,omitempty"`
}

func (Comment) TableName() string {
	return "comments"
}

// IsRoot 是否为顶层评论
func (c *Comment) IsRoot() bool {
	return c.ParentID == nil
}
