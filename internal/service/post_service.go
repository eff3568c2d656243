package service

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/example/techblog-server/internal/model"
	"github.com/example/techblog-server/internal/model/dto"
	"github.com/example/techblog-server/internal/repository"
)

var (
	ErrPostNotFound   = errors.New("文章不存在")
	ErrPostPermission = errors.New("无权发布文章")
	ErrSlugExists     = errors.New("文章别名已存在")
)

type PostService struct {
	postRepo *repository.PostRepository
	userRepo *repository.UserRepository
}

func NewPostService(postRepo *repository.PostRepository, userRepo *repository.UserRepository) *PostService {
	return &PostService{
		postRepo: postRepo,
		userRepo: userRepo,
	}
}

// Create 创建文章（作者和管理员）
func (s *PostService) Create(userID int64, req *dto.CreatePostRequest) (*dto.PostDetail, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	if !user.CanPublish() {
		return nil, ErrPostPermission
	}

	if _, err := s.postRepo.GetBySlug(req.Slug); err == nil {
		return nil, ErrSlugExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	post := &model.Post{
		AuthorID:    userID,
		Title:       req.Title,
		Slug:        req.Slug,
		Summary:     req.Summary,
		Content:     req.Content,
		IsPublished: req.IsPublished,
	}

	if err := s.postRepo.Create(post); err != nil {
		return nil, err
	}

	post.Author = user
	return buildPostDetail(post), nil
}

// GetByID 获取文章详情，浏览数加一
func (s *PostService) GetByID(id int64) (*dto.PostDetail, error) {
	post, err := s.postRepo.GetByIDWithAuthor(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	if err := s.postRepo.IncrementViewCount(id); err != nil {
		// 浏览数统计失败不影响读取
		return buildPostDetail(post), nil
	}
	post.ViewCount++

	return buildPostDetail(post), nil
}

// GetBySlug 根据别名获取文章详情
func (s *PostService) GetBySlug(slug string) (*dto.PostDetail, error) {
	post, err := s.postRepo.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return buildPostDetail(post), nil
}

// List 获取已发布文章列表
func (s *PostService) List(page, pageSize int) ([]*dto.PostItem, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	posts, total, err := s.postRepo.ListPublished(page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*dto.PostItem, 0, len(posts))
	for _, p := range posts {
		items = append(items, buildPostItem(p))
	}
	return items, total, nil
}

func buildPostItem(p *model.Post) *dto.PostItem {
	item := &dto.PostItem{
		ID:        p.ID,
		Title:     p.Title,
		Slug:      p.Slug,
		Summary:   p.Summary,
		AuthorID:  p.AuthorID,
		ViewCount: p.ViewCount,
		CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339),
	}
	if p.Author != nil {
		item.AuthorName = p.Author.Username
	}
	return item
}

func buildPostDetail(p *model.Post) *dto.PostDetail {
	return &dto.PostDetail{
		PostItem:    *buildPostItem(p),
		Content:     p.Content,
		IsPublished: p.IsPublished,
	}
}
