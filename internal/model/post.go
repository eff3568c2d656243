package model

import (
	"time"
)

type Post struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	AuthorID    int64     `gorm:"not null;index" json:"author_id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Slug        string    `gorm:"size:200;uniqueIndex;not null" json:"slug"`
	Summary     string    `gorm:"size:500" json:"summary"`
	Content     string    `gorm:"type:longtext;not null" json:"content"`
	IsPublished bool      `gorm:"not null;default:false;index" json:"is_published"`
	ViewCount   int64     `gorm:"not null;default:0" json:"view_count"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// 关联
	Author *User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

func (Post) TableName() string {
	return "posts"
}
