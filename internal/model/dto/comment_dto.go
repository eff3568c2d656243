package dto

// CreateCommentRequest 发表评论请求
type CreateCommentRequest struct {
	Content     string `json:"content" binding:"required,min=1,max=2000"`
	AuthorName  string `json:"author_name" binding:"max=100"`
	AuthorEmail string `json:"author_email" binding:"max=100"`
	ParentID    *int64 `json:"parent_id,omitempty"`
}

// UpdateCommentRequest 编辑评论请求（仅内容与审核状态可改）
type UpdateCommentRequest struct {
	Content    string `json:"content" binding:"required,min=1,max=2000"`
	IsApproved bool   `json:"is_approved"`
}

// BulkModerateRequest 批量审核请求
type BulkModerateRequest struct {
	Action string  `json:"action" binding:"required,oneof=approve unapprove delete"`
	IDs    []int64 `json:"ids" binding:"required,min=1"`
}

// CommentNode 评论树节点
type CommentNode struct {
	ID         int64          `json:"id"`
	PostID     int64          `json:"post_id"`
	ParentID   *int64         `json:"parent_id,omitempty"`
	AuthorID   *int64         `json:"author_id,omitempty"`
	AuthorName string         `json:"author_name"`
	Content    string         `json:"content"`
	IsApproved bool           `json:"is_approved"`
	ReplyCount int            `json:"reply_count"`
	Replies    []*CommentNode `json:"replies,omitempty"`
	CreatedAt  string         `json:"created_at"`
}

// CommentPage 顶层评论分页结果
type CommentPage struct {
	Items    []*CommentNode `json:"items"`
	Total    int            `json:"total"`
	HasMore  bool           `json:"has_more"`
	NextPage int            `json:"next_page"`
}

// ReplyPage 单条评论的回复分页结果
type ReplyPage struct {
	Items    []*CommentNode `json:"items"`
	Total    int            `json:"total"`
	HasMore  bool           `json:"has_more"`
	NextPage int            `json:"next_page"`
}

// AdminCommentItem 后台评论列表项
type AdminCommentItem struct {
	ID          int64  `json:"id"`
	PostID      int64  `json:"post_id"`
	PostTitle   string `json:"post_title"`
	ParentID    *int64 `json:"parent_id,omitempty"`
	AuthorName  string `json:"author_name"`
	AuthorEmail string `json:"author_email"`
	Content     string `json:"content"`
	IsApproved  bool   `json:"is_approved"`
	ReplyCount  int    `json:"reply_count"`
	CreatedAt   string `json:"created_at"`
}

// AdminCommentList 后台评论列表结果
type AdminCommentList struct {
	Items         []*AdminCommentItem `json:"items"`
	Total         int                 `json:"total"`
	ApprovedCount int                 `json:"approved_count"`
	PendingCount  int                 `json:"pending_count"`
	HasMore       bool                `json:"has_more"`
	NextPage      int                 `json:"next_page"`
}
