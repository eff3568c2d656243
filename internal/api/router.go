package api

import (
	"github.com/gin-gonic/gin"

	"github.com/example/techblog-server/config"
	"github.com/example/techblog-server/internal/api/handler"
	"github.com/example/techblog-server/internal/api/middleware"
	"github.com/example/techblog-server/internal/pkg/recaptcha"
)

type Router struct {
	authHandler      *handler.AuthHandler
	postHandler      *handler.PostHandler
	commentHandler   *handler.CommentHandler
	websocketHandler *handler.WebSocketHandler
	captcha          *recaptcha.Client
	cfg              *config.Config
}

func NewRouter(
	authHandler *handler.AuthHandler,
	postHandler *handler.PostHandler,
	commentHandler *handler.CommentHandler,
	websocketHandler *handler.WebSocketHandler,
	captcha *recaptcha.Client,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:      authHandler,
		postHandler:      postHandler,
		commentHandler:   commentHandler,
		websocketHandler: websocketHandler,
		captcha:          captcha,
		cfg:              cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))

	api := engine.Group("/api/v1")
	{
		// WebSocket - 订阅文章评论事件
		api.GET("/ws/posts/:id/comments", r.websocketHandler.Handle)

		// 公开接口 - 认证
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/login", r.authHandler.Login)
		}

		// 文章 - 公开读取
		api.GET("/posts", r.postHandler.List)
		api.GET("/posts/:id", r.postHandler.Get)

		// 文章 - 发布需要认证
		postsAuth := api.Group("/posts")
		postsAuth.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			postsAuth.POST("", r.postHandler.Create)
		}

		// 评论 - 公开读取（可选认证，登录后能看到自己的待审核评论）
		commentsPublic := api.Group("/posts")
		commentsPublic.Use(middleware.OptionalAuth(r.cfg.JWT.Secret))
		{
			commentsPublic.GET("/:id/comments", r.commentHandler.List)
			commentsPublic.GET("/:id/comments/:parentId/replies", r.commentHandler.Replies)
			// 发表评论允许访客，未登录请求走人机校验
			commentsPublic.POST("/:id/comments", middleware.Recaptcha(r.captcha), r.commentHandler.Create)
		}

		// 评论 - 审核操作需要认证
		commentsAuth := api.Group("/comments")
		commentsAuth.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			commentsAuth.PUT("/:id", r.commentHandler.Update)
			commentsAuth.POST("/:id/approve", r.commentHandler.Approve)
			commentsAuth.POST("/:id/unapprove", r.commentHandler.Unapprove)
			commentsAuth.DELETE("/:id", r.commentHandler.Delete)
			commentsAuth.POST("/bulk", r.commentHandler.Bulk)
		}

		// 后台接口 - 管理员
		admin := api.Group("/admin")
		admin.Use(middleware.Auth(r.cfg.JWT.Secret), middleware.RequireAdmin())
		{
			admin.GET("/comments", r.commentHandler.AdminList)
		}
	}

	return engine
}
