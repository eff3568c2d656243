package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/example/techblog-server/config"
	"github.com/example/techblog-server/internal/api"
	"github.com/example/techblog-server/internal/api/handler"
	"github.com/example/techblog-server/internal/database"
	"github.com/example/techblog-server/internal/pkg/cache"
	"github.com/example/techblog-server/internal/pkg/cron"
	"github.com/example/techblog-server/internal/pkg/email"
	"github.com/example/techblog-server/internal/pkg/pubsub"
	"github.com/example/techblog-server/internal/pkg/queue"
	"github.com/example/techblog-server/internal/pkg/recaptcha"
	"github.com/example/techblog-server/internal/pkg/ws"
	"github.com/example/techblog-server/internal/repository"
	"github.com/example/techblog-server/internal/service"
)

func main() {
	// 加载配置
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化数据库
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	log.Println("Database connected")

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	log.Println("Redis connected")

	// 初始化评论缓存
	ttl := time.Duration(cfg.Comment.CacheTTLMinutes) * time.Minute
	commentCache := cache.NewCommentCache(rdb, ttl)

	// 评论事件：写操作发布到 Redis，订阅者转发给本实例的 WebSocket 连接
	publisher := pubsub.NewPublisher(rdb)
	subscriber := pubsub.NewSubscriber(rdb)

	wsHub := ws.NewHub()
	go func() {
		err := subscriber.Subscribe(context.Background(), func(event *pubsub.CommentEvent) {
			msg := &ws.Message{Type: event.Type, Data: event.Payload}
			if err := wsHub.BroadcastToPost(event.PostID, msg); err != nil {
				log.Printf("Failed to broadcast %s for post %d: %v", event.Type, event.PostID, err)
			}
		})
		if err != nil && err != context.Canceled {
			log.Printf("Comment event subscriber stopped: %v", err)
		}
	}()
	log.Println("WebSocket hub started")

	// 邮件通知队列与人机校验
	notifyQueue := queue.NewQueue(rdb, cfg.Queue.NotificationQueue)
	mailer := email.NewService(&cfg.Email)
	captcha := recaptcha.NewClient(cfg.Recaptcha.Secret, cfg.Recaptcha.VerifyURL)

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	// 初始化 Service
	authService := service.NewAuthService(userRepo, cfg)
	postService := service.NewPostService(postRepo, userRepo)
	commentService := service.NewCommentService(commentRepo, postRepo, userRepo, commentCache, publisher, notifyQueue, mailer, cfg)

	// 定时清理过期的软删除评论
	cronService := cron.NewService(commentRepo, cfg.Comment.PurgeAfterDays)
	cronService.Start()

	// 初始化 Handler
	authHandler := handler.NewAuthHandler(authService)
	postHandler := handler.NewPostHandler(postService)
	commentHandler := handler.NewCommentHandler(commentService)
	websocketHandler := handler.NewWebSocketHandler(wsHub)

	// 初始化 Router
	router := api.NewRouter(
		authHandler,
		postHandler,
		commentHandler,
		websocketHandler,
		captcha,
		cfg,
	)
	engine := router.Setup()

	// 启动服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
