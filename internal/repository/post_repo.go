package repository

import (
	"gorm.io/gorm"

	"github.com/example/techblog-server/internal/model"
)

type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Create(post *model.Post) error {
	return r.db.Create(post).Error
}

func (r *PostRepository) GetByID(id int64) (*model.Post, error) {
	var post model.Post
	err := r.db.Where("id = ?", id).First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *PostRepository) GetByIDWithAuthor(id int64) (*model.Post, error) {
	var post model.Post
	err := r.db.Preload("Author").Where("id = ?", id).First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *PostRepository) GetBySlug(slug string) (*model.Post, error) {
	var post model.Post
	err := r.db.Preload("Author").Where("slug = ?", slug).First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// ListByIDs 批量获取文章
func (r *PostRepository) ListByIDs(ids []int64) ([]*model.Post, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var posts []*model.Post
	err := r.db.Where("id IN ?", ids).Find(&posts).Error
	return posts, err
}

// ListPublished 获取已发布文章列表
func (r *PostRepository) ListPublished(page, pageSize int) ([]*model.Post, int64, error) {
	var posts []*model.Post
	var total int64

	query := r.db.Model(&model.Post{}).Where("is_published = ?", true)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Author").
		Order("created_at DESC").
		Offset(offset).Limit(pageSize).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}

// IncrementViewCount 浏览数加一
func (r *PostRepository) IncrementViewCount(id int64) error {
	return r.db.Model(&model.Post{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}
