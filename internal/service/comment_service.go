package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/example/techblog-server/config"
	"github.com/example/techblog-server/internal/model"
	"github.com/example/techblog-server/internal/model/dto"
	"github.com/example/techblog-server/internal/pkg/cache"
	"github.com/example/techblog-server/internal/pkg/email"
	"github.com/example/techblog-server/internal/pkg/pubsub"
	"github.com/example/techblog-server/internal/pkg/queue"
	"github.com/example/techblog-server/internal/pkg/ws"
	"github.com/example/techblog-server/internal/repository"
)

var (
	ErrCommentNotFound    = errors.New("评论不存在")
	ErrCommentPermission  = errors.New("无权操作此评论")
	ErrParentNotFound     = errors.New("父评论不存在")
	ErrParentNotInPost    = errors.New("父评论不属于该文章")
	ErrContentRequired    = errors.New("评论内容不能为空")
	ErrAuthorInfoRequired = errors.New("请填写昵称和邮箱")
	ErrInvalidBulkAction  = errors.New("不支持的批量操作")
)

const contentExcerptLen = 100

type CommentService struct {
	commentRepo *repository.CommentRepository
	postRepo    *repository.PostRepository
	userRepo    *repository.UserRepository
	cache       *cache.CommentCache
	publisher   *pubsub.Publisher // 可选，nil 时不广播
	notifyQueue *queue.Queue      // 可选，nil 时降级为直接发邮件
	mailer      *email.Service    // 可选，nil 时不发通知
	cfg         *config.Config
}

func NewCommentService(
	commentRepo *repository.CommentRepository,
	postRepo *repository.PostRepository,
	userRepo *repository.UserRepository,
	commentCache *cache.CommentCache,
	publisher *pubsub.Publisher,
	notifyQueue *queue.Queue,
	mailer *email.Service,
	cfg *config.Config,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		userRepo:    userRepo,
		cache:       commentCache,
		publisher:   publisher,
		notifyQueue: notifyQueue,
		mailer:      mailer,
		cfg:         cfg,
	}
}

// Create 创建评论。
// 登录用户的昵称和邮箱取自账号；访客必须填写昵称和邮箱。
// 管理员和文章作者的评论直接进入已审核状态，其余进入待审核。
func (s *CommentService) Create(ctx context.Context, viewer Viewer, postID int64, req *dto.CreateCommentRequest) (*dto.CommentNode, error) {
	post, err := s.postRepo.GetByID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, ErrContentRequired
	}

	// 如果是回复，验证父评论存在且属于同一篇文章
	if req.ParentID != nil {
		parent, err := s.getComment(ctx, *req.ParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, err
		}
		if parent.PostID != postID {
			return nil, ErrParentNotInPost
		}
	}

	comment := &model.Comment{
		PostID:   postID,
		ParentID: req.ParentID,
		Content:  content,
	}

	if viewer.IsAuthenticated() {
		user, err := s.userRepo.GetByID(*viewer.UserID)
		if err != nil {
			return nil, err
		}
		comment.AuthorID = &user.ID
		comment.AuthorName = user.Username
		comment.AuthorEmail = user.Email
		comment.IsApproved = viewer.IsAdmin() || user.ID == post.AuthorID
	} else {
		name := strings.TrimSpace(req.AuthorName)
		mail := strings.TrimSpace(req.AuthorEmail)
		if name == "" || mail == "" {
			return nil, ErrAuthorInfoRequired
		}
		comment.AuthorName = name
		comment.AuthorEmail = mail
	}

	if err := s.commentRepo.Create(comment); err != nil {
		return nil, err
	}

	s.invalidate(ctx, comment.ID, postID)

	if comment.IsApproved {
		s.broadcast(ctx, postID, ws.EventCommentCreated, commentToNode(comment))
	} else {
		s.notifyPendingComment(ctx, post, comment)
	}

	return commentToNode(comment), nil
}

// ListByPost 获取文章的评论树（顶层分页，回复为预览）
func (s *CommentService) ListByPost(ctx context.Context, viewer Viewer, postID int64, page, pageSize, previewSize int) (*dto.CommentPage, error) {
	post, err := s.postRepo.GetByID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	mode := ModeFor(viewer)
	comments, err := s.loadPostComments(ctx, postID, mode)
	if err != nil {
		return nil, err
	}

	isPostAuthor := viewer.IsUser(post.AuthorID)
	visible := FilterVisible(comments, viewer, isPostAuthor)

	roots := buildCommentForest(visible, s.cfg.Comment.MaxDepth)

	if pageSize < 1 {
		pageSize = s.cfg.Comment.PageSize
	}
	if previewSize < 0 {
		previewSize = s.cfg.Comment.ReplyPreviewSize
	}

	items, total, hasMore, nextPage := paginateRoots(roots, page, pageSize)
	truncateReplies(items, previewSize)

	return &dto.CommentPage{
		Items:    items,
		Total:    total,
		HasMore:  hasMore,
		NextPage: nextPage,
	}, nil
}

// ListReplies 获取某条评论的直接回复（独立分页，不走列表缓存）
func (s *CommentService) ListReplies(ctx context.Context, viewer Viewer, postID, parentID int64, page, pageSize int) (*dto.ReplyPage, error) {
	parent, err := s.getComment(ctx, parentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParentNotFound
		}
		return nil, err
	}
	if parent.PostID != postID {
		return nil, ErrParentNotInPost
	}

	post, err := s.postRepo.GetByID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	children, err := s.commentRepo.ListByParentID(parentID)
	if err != nil {
		return nil, err
	}

	isPostAuthor := viewer.IsUser(post.AuthorID)
	visible := FilterVisible(children, viewer, isPostAuthor)
	sortCommentsDesc(visible)

	// 下一层回复数，让客户端知道每条回复还能不能继续展开
	replyCounts, err := s.countVisibleReplies(visible, viewer, isPostAuthor)
	if err != nil {
		return nil, err
	}

	if pageSize < 1 {
		pageSize = s.cfg.Comment.PageSize
	}

	nodes := make([]*dto.CommentNode, 0, len(visible))
	for _, c := range visible {
		node := commentToNode(c)
		node.ReplyCount = replyCounts[c.ID]
		nodes = append(nodes, node)
	}

	items, total, hasMore, nextPage := paginateRoots(nodes, page, pageSize)

	return &dto.ReplyPage{
		Items:    items,
		Total:    total,
		HasMore:  hasMore,
		NextPage: nextPage,
	}, nil
}

// Approve 审核通过评论（管理员或文章作者）
func (s *CommentService) Approve(ctx context.Context, viewer Viewer, commentID int64) error {
	return s.setApproval(ctx, viewer, commentID, true)
}

// Unapprove 撤回审核（管理员或文章作者）
func (s *CommentService) Unapprove(ctx context.Context, viewer Viewer, commentID int64) error {
	return s.setApproval(ctx, viewer, commentID, false)
}

func (s *CommentService) setApproval(ctx context.Context, viewer Viewer, commentID int64, approved bool) error {
	comment, err := s.getComment(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return err
	}

	post, err := s.postRepo.GetByID(comment.PostID)
	if err != nil {
		return err
	}

	if !viewer.CanModeratePost(post.AuthorID) {
		return ErrCommentPermission
	}

	if err := s.commentRepo.SetApproval(commentID, approved); err != nil {
		return err
	}

	s.invalidate(ctx, commentID, comment.PostID)

	if approved && !comment.IsApproved {
		comment.IsApproved = true
		s.broadcast(ctx, comment.PostID, ws.EventCommentApproved, commentToNode(comment))
	}

	return nil
}

// Delete 软删除评论（管理员、文章作者或评论作者）。
// 回复不级联删除，构树时会提升为顶层。
func (s *CommentService) Delete(ctx context.Context, viewer Viewer, commentID int64) error {
	comment, err := s.getComment(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return err
	}

	post, err := s.postRepo.GetByID(comment.PostID)
	if err != nil {
		return err
	}

	isCommentAuthor := comment.AuthorID != nil && viewer.IsUser(*comment.AuthorID)
	if !viewer.CanModeratePost(post.AuthorID) && !isCommentAuthor {
		return ErrCommentPermission
	}

	if err := s.commentRepo.SoftDelete(commentID); err != nil {
		return err
	}

	s.invalidate(ctx, commentID, comment.PostID)
	s.broadcast(ctx, comment.PostID, ws.EventCommentDeleted, map[string]int64{"id": commentID})

	return nil
}

// Update 编辑评论内容与审核状态（管理员或文章作者）
func (s *CommentService) Update(ctx context.Context, viewer Viewer, commentID int64, req *dto.UpdateCommentRequest) error {
	comment, err := s.getComment(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return err
	}

	post, err := s.postRepo.GetByID(comment.PostID)
	if err != nil {
		return err
	}

	if !viewer.CanModeratePost(post.AuthorID) {
		return ErrCommentPermission
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return ErrContentRequired
	}

	if err := s.commentRepo.UpdateContent(commentID, content, req.IsApproved); err != nil {
		return err
	}

	s.invalidate(ctx, commentID, comment.PostID)

	return nil
}

// BulkModerate 批量审核。逐条处理，单条失败跳过不中断，返回成功条数。
func (s *CommentService) BulkModerate(ctx context.Context, viewer Viewer, req *dto.BulkModerateRequest) (int, error) {
	processed := 0
	for _, id := range req.IDs {
		var err error
		switch req.Action {
		case "approve":
			err = s.Approve(ctx, viewer, id)
		case "unapprove":
			err = s.Unapprove(ctx, viewer, id)
		case "delete":
			err = s.Delete(ctx, viewer, id)
		default:
			return processed, ErrInvalidBulkAction
		}
		if err != nil {
			log.Printf("BulkModerate: %s comment %d failed: %v", req.Action, id, err)
			continue
		}
		processed++
	}
	return processed, nil
}

// AdminList 后台评论列表：状态过滤、关键字搜索、排序、分页和统计
func (s *CommentService) AdminList(ctx context.Context, status, search, sortOrder string, page, pageSize int) (*dto.AdminCommentList, error) {
	comments, err := s.loadAllComments(ctx)
	if err != nil {
		return nil, err
	}

	approvedCount := 0
	replyCounts := make(map[int64]int)
	for _, c := range comments {
		if c.IsApproved {
			approvedCount++
		}
		if c.ParentID != nil {
			replyCounts[*c.ParentID]++
		}
	}
	pendingCount := len(comments) - approvedCount

	filtered := filterAdminComments(comments, status, search)
	if sortOrder == "oldest" {
		// 输入是倒序的，反转即可
		for i, j := 0, len(filtered)-1; i < j; i, j = i+1, j-1 {
			filtered[i], filtered[j] = filtered[j], filtered[i]
		}
	}

	if pageSize < 1 {
		pageSize = s.cfg.Comment.PageSize
	}
	if page < 1 {
		page = 1
	}

	total := len(filtered)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	pageItems := filtered[start:end]

	titles, err := s.loadPostTitles(pageItems)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.AdminCommentItem, 0, len(pageItems))
	for _, c := range pageItems {
		items = append(items, &dto.AdminCommentItem{
			ID:          c.ID,
			PostID:      c.PostID,
			PostTitle:   titles[c.PostID],
			ParentID:    c.ParentID,
			AuthorName:  c.AuthorName,
			AuthorEmail: c.AuthorEmail,
			Content:     c.Content,
			IsApproved:  c.IsApproved,
			ReplyCount:  replyCounts[c.ID],
			CreatedAt:   c.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	hasMore := end < total
	nextPage := page
	if hasMore {
		nextPage = page + 1
	}

	return &dto.AdminCommentList{
		Items:         items,
		Total:         total,
		ApprovedCount: approvedCount,
		PendingCount:  pendingCount,
		HasMore:       hasMore,
		NextPage:      nextPage,
	}, nil
}

// getComment 读穿缓存获取单条评论
func (s *CommentService) getComment(ctx context.Context, id int64) (*model.Comment, error) {
	if comment, hit := s.cache.GetComment(ctx, id); hit {
		return comment, nil
	}

	comment, err := s.commentRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	s.cache.SetComment(ctx, comment)
	return comment, nil
}

// loadPostComments 读穿缓存加载文章的平面评论列表
func (s *CommentService) loadPostComments(ctx context.Context, postID int64, mode cache.Mode) ([]*model.Comment, error) {
	key := cache.PostCommentsKey(postID, mode)
	if comments, hit := s.cache.GetComments(ctx, key); hit {
		return comments, nil
	}

	var comments []*model.Comment
	var err error
	if mode == cache.ModePublic {
		comments, err = s.commentRepo.ListApprovedByPostID(postID)
	} else {
		comments, err = s.commentRepo.ListByPostID(postID)
	}
	if err != nil {
		return nil, err
	}

	s.cache.SetComments(ctx, key, comments)
	return comments, nil
}

// loadAllComments 读穿缓存加载全站平面评论列表（后台用，完整模式）
func (s *CommentService) loadAllComments(ctx context.Context) ([]*model.Comment, error) {
	key := cache.AllCommentsKey(cache.ModeAll)
	if comments, hit := s.cache.GetComments(ctx, key); hit {
		return comments, nil
	}

	comments, err := s.commentRepo.ListAll()
	if err != nil {
		return nil, err
	}

	s.cache.SetComments(ctx, key, comments)
	return comments, nil
}

// countVisibleReplies 统计每条评论的可见直接回复数
func (s *CommentService) countVisibleReplies(parents []*model.Comment, viewer Viewer, isPostAuthor bool) (map[int64]int, error) {
	counts := make(map[int64]int, len(parents))
	if len(parents) == 0 {
		return counts, nil
	}

	ids := make([]int64, 0, len(parents))
	for _, c := range parents {
		ids = append(ids, c.ID)
	}

	children, err := s.commentRepo.ListByParentIDs(ids)
	if err != nil {
		return nil, err
	}

	for _, c := range FilterVisible(children, viewer, isPostAuthor) {
		counts[*c.ParentID]++
	}
	return counts, nil
}

func (s *CommentService) loadPostTitles(comments []*model.Comment) (map[int64]string, error) {
	seen := make(map[int64]struct{})
	var ids []int64
	for _, c := range comments {
		if _, ok := seen[c.PostID]; !ok {
			seen[c.PostID] = struct{}{}
			ids = append(ids, c.PostID)
		}
	}

	posts, err := s.postRepo.ListByIDs(ids)
	if err != nil {
		return nil, err
	}

	titles := make(map[int64]string, len(posts))
	for _, p := range posts {
		titles[p.ID] = p.Title
	}
	return titles, nil
}

// invalidate 写操作提交后失效相关缓存
func (s *CommentService) invalidate(ctx context.Context, commentID, postID int64) {
	s.cache.InvalidateComment(ctx, commentID, postID)
}

// broadcast 通过 Redis 发布评论事件，由各实例的订阅者转发给 WebSocket 连接
func (s *CommentService) broadcast(ctx context.Context, postID int64, event string, data interface{}) {
	if s.publisher == nil {
		return
	}

	payload, err := json.Marshal(data)
	if err != nil {
		log.Printf("broadcast %s for post %d: marshal failed: %v", event, postID, err)
		return
	}

	err = s.publisher.PublishCommentEvent(ctx, &pubsub.CommentEvent{
		Type:    event,
		PostID:  postID,
		Payload: payload,
	})
	if err != nil {
		log.Printf("broadcast %s for post %d failed: %v", event, postID, err)
	}
}

// notifyPendingComment 通知文章作者有评论待审核，失败只记录日志。
// 配置了队列时入队交给 worker 处理，否则直接发邮件。
func (s *CommentService) notifyPendingComment(ctx context.Context, post *model.Post, comment *model.Comment) {
	if s.notifyQueue == nil && (s.mailer == nil || !s.mailer.Enabled()) {
		return
	}

	author, err := s.userRepo.GetByID(post.AuthorID)
	if err != nil {
		log.Printf("notifyPendingComment: load post author failed: %v", err)
		return
	}

	excerpt := comment.Content
	if len([]rune(excerpt)) > contentExcerptLen {
		excerpt = string([]rune(excerpt)[:contentExcerptLen]) + "..."
	}

	if s.notifyQueue != nil {
		err := s.notifyQueue.Push(ctx, &queue.NotificationMessage{
			CommentID:      comment.ID,
			PostID:         post.ID,
			PostTitle:      post.Title,
			AuthorName:     comment.AuthorName,
			Excerpt:        excerpt,
			RecipientEmail: author.Email,
		})
		if err != nil {
			log.Printf("notifyPendingComment: enqueue failed: %v", err)
		}
		return
	}

	if err := s.mailer.SendCommentNotification(author.Email, post.Title, comment.AuthorName, excerpt); err != nil {
		log.Printf("notifyPendingComment: send mail failed: %v", err)
	}
}

func filterAdminComments(comments []*model.Comment, status, search string) []*model.Comment {
	filtered := make([]*model.Comment, 0, len(comments))
	keyword := strings.ToLower(strings.TrimSpace(search))

	for _, c := range comments {
		switch status {
		case "approved":
			if !c.IsApproved {
				continue
			}
		case "pending":
			if c.IsApproved {
				continue
			}
		}

		if keyword != "" {
			if !strings.Contains(strings.ToLower(c.Content), keyword) &&
				!strings.Contains(strings.ToLower(c.AuthorName), keyword) &&
				!strings.Contains(strings.ToLower(c.AuthorEmail), keyword) {
				continue
			}
		}

		filtered = append(filtered, c)
	}
	return filtered
}
