package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/example/techblog-server/internal/api/middleware"
	"github.com/example/techblog-server/internal/model/dto"
	"github.com/example/techblog-server/internal/pkg/response"
	"github.com/example/techblog-server/internal/service"
)

type CommentHandler struct {
	commentService *service.CommentService
}

func NewCommentHandler(commentService *service.CommentService) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
	}
}

// viewerFrom 从请求上下文构造查看者身份
func viewerFrom(c *gin.Context) service.Viewer {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return service.AnonymousViewer()
	}
	role, _ := middleware.GetUserRole(c)
	return service.AuthenticatedViewer(userID, role)
}

// List 获取文章的评论树
// GET /api/v1/posts/:id/comments
func (h *CommentHandler) List(c *gin.Context) {
	postID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的文章ID")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "0"))
	previewSize, _ := strconv.Atoi(c.DefaultQuery("preview_size", "-1"))
	if pageSize > 100 {
		pageSize = 100
	}

	result, err := h.commentService.ListByPost(c.Request.Context(), viewerFrom(c), postID, page, pageSize, previewSize)
	if err != nil {
		switch err {
		case service.ErrPostNotFound:
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, result)
}

// Replies 获取某条评论的回复（独立分页）
// GET /api/v1/posts/:id/comments/:parentId/replies
func (h *CommentHandler) Replies(c *gin.Context) {
	postID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的文章ID")
		return
	}

	parentID, err := strconv.ParseInt(c.Param("parentId"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的评论ID")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "0"))
	if pageSize > 100 {
		pageSize = 100
	}

	result, err := h.commentService.ListReplies(c.Request.Context(), viewerFrom(c), postID, parentID, page, pageSize)
	if err != nil {
		switch err {
		case service.ErrPostNotFound, service.ErrParentNotFound:
			response.NotFoundError(c, err.Error())
		case service.ErrParentNotInPost:
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, result)
}

// Create 发表评论
// POST /api/v1/posts/:id/comments
func (h *CommentHandler) Create(c *gin.Context) {
	postID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的文章ID")
		return
	}

	var req dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	comment, err := h.commentService.Create(c.Request.Context(), viewerFrom(c), postID, &req)
	if err != nil {
		switch err {
		case service.ErrPostNotFound:
			response.NotFoundError(c, err.Error())
		case service.ErrParentNotFound:
			response.NotFoundError(c, err.Error())
		case service.ErrParentNotInPost, service.ErrContentRequired, service.ErrAuthorInfoRequired:
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "评论成功", comment)
}

// Update 编辑评论
// PUT /api/v1/comments/:id
func (h *CommentHandler) Update(c *gin.Context) {
	commentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的评论ID")
		return
	}

	var req dto.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	if err := h.commentService.Update(c.Request.Context(), viewerFrom(c), commentID, &req); err != nil {
		h.writeModerationError(c, err)
		return
	}

	response.SuccessWithMessage(c, "修改成功", nil)
}

// Approve 审核通过
// POST /api/v1/comments/:id/approve
func (h *CommentHandler) Approve(c *gin.Context) {
	commentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的评论ID")
		return
	}

	if err := h.commentService.Approve(c.Request.Context(), viewerFrom(c), commentID); err != nil {
		h.writeModerationError(c, err)
		return
	}

	response.SuccessWithMessage(c, "审核通过", nil)
}

// Unapprove 撤回审核
// POST /api/v1/comments/:id/unapprove
func (h *CommentHandler) Unapprove(c *gin.Context) {
	commentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的评论ID")
		return
	}

	if err := h.commentService.Unapprove(c.Request.Context(), viewerFrom(c), commentID); err != nil {
		h.writeModerationError(c, err)
		return
	}

	response.SuccessWithMessage(c, "已撤回审核", nil)
}

// Delete 删除评论
// DELETE /api/v1/comments/:id
func (h *CommentHandler) Delete(c *gin.Context) {
	commentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "无效的评论ID")
		return
	}

	if err := h.commentService.Delete(c.Request.Context(), viewerFrom(c), commentID); err != nil {
		h.writeModerationError(c, err)
		return
	}

	response.SuccessWithMessage(c, "删除成功", nil)
}

// Bulk 批量审核
// POST /api/v1/comments/bulk
func (h *CommentHandler) Bulk(c *gin.Context) {
	var req dto.BulkModerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	processed, err := h.commentService.BulkModerate(c.Request.Context(), viewerFrom(c), &req)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, gin.H{"processed": processed})
}

// AdminList 后台评论列表
// GET /api/v1/admin/comments
func (h *CommentHandler) AdminList(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "0"))
	if pageSize > 100 {
		pageSize = 100
	}

	status := c.Query("status")
	search := c.Query("search")
	sortOrder := c.Query("sort")

	result, err := h.commentService.AdminList(c.Request.Context(), status, search, sortOrder, page, pageSize)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, result)
}

func (h *CommentHandler) writeModerationError(c *gin.Context, err error) {
	switch err {
	case service.ErrCommentNotFound:
		response.NotFoundError(c, err.Error())
	case service.ErrCommentPermission:
		response.PermissionError(c, err.Error())
	case service.ErrContentRequired:
		response.ParamError(c, err.Error())
	default:
		response.ServerError(c, "")
	}
}
