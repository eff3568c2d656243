package dto

// CreatePostRequest 创建文章请求
type CreatePostRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=200"`
	Slug        string `json:"slug" binding:"required,min=1,max=200"`
	Summary     string `json:"summary" binding:"max=500"`
	Content     string `json:"content" binding:"required"`
	IsPublished bool   `json:"is_published"`
}

// PostItem 文章列表项
type PostItem struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Slug       string `json:"slug"`
	Summary    string `json:"summary"`
	AuthorID   int64  `json:"author_id"`
	AuthorName string `json:"author_name,omitempty"`
	ViewCount  int64  `json:"view_count"`
	CreatedAt  string `json:"created_at"`
}

// PostDetail 文章详情
type PostDetail struct {
	PostItem
	Content     string `json:"content"`
	IsPublished bool   `json:"is_published"`
}
