package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/example/techblog-server/internal/model"
)

// CommentRepository 评论的平面存储边界。
// 只负责记录的增删改查，不做可见性过滤，也不组装评论树。
// 所有列表查询都排除软删除记录，包含已审核与待审核两种状态，
// 按 created_at DESC, id DESC 排序。
type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create 创建评论
func (r *CommentRepository) Create(comment *model.Comment) error {
	return r.db.Create(comment).Error
}

// GetByID 根据 ID 获取评论（不含软删除）
func (r *CommentRepository) GetByID(id int64) (*model.Comment, error) {
	var comment model.Comment
	err := r.db.Where("id = ? AND is_deleted = ?", id, false).First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListByPostID 获取文章的全部评论（平面列表）
func (r *CommentRepository) ListByPostID(postID int64) ([]*model.Comment, error) {
	var comments []*model.Comment
	err := r.db.Where("post_id = ? AND is_deleted = ?", postID, false).
		Order("created_at DESC, id DESC").
		Find(&comments).Error
	return comments, err
}

// ListApprovedByPostID 获取文章的已审核评论（平面列表）
func (r *CommentRepository) ListApprovedByPostID(postID int64) ([]*model.Comment, error) {
	var comments []*model.Comment
	err := r.db.Where("post_id = ? AND is_approved = ? AND is_deleted = ?", postID, true, false).
		Order("created_at DESC, id DESC").
		Find(&comments).Error
	return comments, err
}

// ListAll 获取所有文章的评论
func (r *CommentRepository) ListAll() ([]*model.Comment, error) {
	var comments []*model.Comment
	err := r.db.Where("is_deleted = ?", false).
		Order("created_at DESC, id DESC").
		Find(&comments).Error
	return comments, err
}

// ListApproved 获取所有文章的已审核评论
func (r *CommentRepository) ListApproved() ([]*model.Comment, error) {
	var comments []*model.Comment
	err := r.db.Where("is_approved = ? AND is_deleted = ?", true, false).
		Order("created_at DESC, id DESC").
		Find(&comments).Error
	return comments, err
}

// ListByParentID 获取某条评论的直接回复
func (r *CommentRepository) ListByParentID(parentID int64) ([]*model.Comment, error) {
	var comments []*model.Comment
	err := r.db.Where("parent_id = ? AND is_deleted = ?", parentID, false).
		Order("created_at DESC, id DESC").
		Find(&comments).Error
	return comments, err
}

// ListByParentIDs 批量获取多条评论的直接回复
func (r *CommentRepository) ListByParentIDs(parentIDs []int64) ([]*model.Comment, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}

	var comments []*model.Comment
	err := r.db.Where("parent_id IN ? AND is_deleted = ?", parentIDs, false).
		Order("created_at DESC, id DESC").
		Find(&comments).Error
	return comments, err
}

// SetApproval 设置审核状态
func (r *CommentRepository) SetApproval(id int64, approved bool) error {
	return r.db.Model(&model.Comment{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Update("is_approved", approved).Error
}

// UpdateContent 编辑评论内容与审核状态
func (r *CommentRepository) UpdateContent(id int64, content string, approved bool) error {
	return r.db.Model(&model.Comment{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]interface{}{
			"content":     content,
			"is_approved": approved,
		}).Error
}

// SoftDelete 软删除评论（保留记录，回复不级联删除）
func (r *CommentRepository) SoftDelete(id int64) error {
	return r.db.Model(&model.Comment{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Update("is_deleted", true).Error
}

// PurgeDeletedBefore 物理删除指定时间之前软删除的评论，返回删除条数
func (r *CommentRepository) PurgeDeletedBefore(before time.Time) (int64, error) {
	result := r.db.Where("is_deleted = ? AND updated_at < ?", true, before).
		Delete(&model.Comment{})
	return result.RowsAffected, result.Error
}

// CountDeletedBefore 统计指定时间之前软删除的评论数
func (r *CommentRepository) CountDeletedBefore(before time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&model.Comment{}).
		Where("is_deleted = ? AND updated_at < ?", true, before).
		Count(&count).Error
	return count, err
}

// CountByPostID 获取文章的评论数（含回复）
func (r *CommentRepository) CountByPostID(postID int64, onlyApproved bool) (int64, error) {
	var count int64
	query := r.db.Model(&model.Comment{}).Where("post_id = ? AND is_deleted = ?", postID, false)
	if onlyApproved {
		query = query.Where("is_approved = ?", true)
	}
	err := query.Count(&count).Error
	return count, err
}
