package service

import (
	"github.com/example/techblog-server/internal/model"
	"github.com/example/techblog-server/internal/pkg/cache"
)

// Viewer 当前请求的查看者身份。
// UserID 为 nil 表示匿名访客。
type Viewer struct {
	UserID *int64
	Role   string
}

// AnonymousViewer 匿名访客
func AnonymousViewer() Viewer {
	return Viewer{}
}

// AuthenticatedViewer 已登录用户
func AuthenticatedViewer(userID int64, role string) Viewer {
	return Viewer{UserID: &userID, Role: role}
}

// IsAuthenticated 是否已登录
func (v Viewer) IsAuthenticated() bool {
	return v.UserID != nil
}

// IsAdmin 是否为管理员
func (v Viewer) IsAdmin() bool {
	return v.IsAuthenticated() && v.Role == model.RoleAdmin
}

// IsUser 是否为指定用户
func (v Viewer) IsUser(userID int64) bool {
	return v.UserID != nil && *v.UserID == userID
}

// CanModeratePost 是否可以审核该文章下的评论（管理员或文章作者）
func (v Viewer) CanModeratePost(postAuthorID int64) bool {
	return v.IsAdmin() || v.IsUser(postAuthorID)
}

// ModeFor 选择缓存可见性模式。
// 匿名只读公开列表；登录用户读完整列表后再按身份收窄，
// 这样缓存 key 只依赖两个固定取值，不随用户发散。
func ModeFor(v Viewer) cache.Mode {
	if v.IsAuthenticated() {
		return cache.ModeAll
	}
	return cache.ModePublic
}

// FilterVisible 按查看者身份过滤平面评论列表，保持输入顺序。
// 管理员和文章作者看到全部；登录用户看到已审核的加上自己的；
// 匿名只看到已审核的。每条读路径都必须经过这里。
func FilterVisible(comments []*model.Comment, v Viewer, isPostAuthor bool) []*model.Comment {
	if v.IsAdmin() || (v.IsAuthenticated() && isPostAuthor) {
		return comments
	}

	visible := make([]*model.Comment, 0, len(comments))
	for _, c := range comments {
		if c.IsApproved {
			visible = append(visible, c)
			continue
		}
		if c.AuthorID != nil && v.IsUser(*c.AuthorID) {
			visible = append(visible, c)
		}
	}
	return visible
}
