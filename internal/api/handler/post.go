package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/example/techblog-server/internal/api/middleware"
	"github.com/example/techblog-server/internal/model/dto"
	"github.com/example/techblog-server/internal/pkg/response"
	"github.com/example/techblog-server/internal/service"
)

type PostHandler struct {
	postService *service.PostService
}

func NewPostHandler(postService *service.PostService) *PostHandler {
	return &PostHandler{
		postService: postService,
	}
}

// List 获取已发布文章列表
// GET /api/v1/posts
func (h *PostHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	items, total, err := h.postService.List(page, pageSize)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.SuccessPage(c, total, page, pageSize, items)
}

// Get 获取文章详情，支持数字 ID 或别名
// GET /api/v1/posts/:id
func (h *PostHandler) Get(c *gin.Context) {
	param := c.Param("id")

	var detail *dto.PostDetail
	var err error
	if id, parseErr := strconv.ParseInt(param, 10, 64); parseErr == nil {
		detail, err = h.postService.GetByID(id)
	} else {
		detail, err = h.postService.GetBySlug(param)
	}

	if err != nil {
		switch err {
		case service.ErrPostNotFound:
			response.NotFoundError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, detail)
}

// Create 创建文章
// POST /api/v1/posts
func (h *PostHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	detail, err := h.postService.Create(userID, &req)
	if err != nil {
		switch err {
		case service.ErrPostPermission:
			response.PermissionError(c, err.Error())
		case service.ErrSlugExists:
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	response.SuccessWithMessage(c, "发布成功", detail)
}
