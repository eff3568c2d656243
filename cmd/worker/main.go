package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/example/techblog-server/config"
	"github.com/example/techblog-server/internal/database"
	"github.com/example/techblog-server/internal/pkg/email"
	"github.com/example/techblog-server/internal/pkg/queue"
	"github.com/example/techblog-server/internal/worker"
)

func main() {
	// 加载配置
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	log.Println("Redis connected")

	notifyQueue := queue.NewQueue(rdb, cfg.Queue.NotificationQueue)
	mailer := email.NewService(&cfg.Email)
	notifier := worker.NewNotifier(mailer)

	if !mailer.Enabled() {
		log.Println("Warning: email is not configured, notifications will fail")
	}

	ctx, cancel := context.WithCancel(context.Background())

	// 优雅退出
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("Received signal %v, shutting down", sig)
		cancel()
	}()

	maxWorkers := cfg.Queue.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	log.Printf("Notification worker starting with %d workers", maxWorkers)

	var wg sync.WaitGroup
	for i := 0; i < maxWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			runWorker(ctx, id, notifyQueue, notifier)
		}(i)
	}

	wg.Wait()
	log.Println("Notification worker stopped")
}

func runWorker(ctx context.Context, id int, q *queue.Queue, notifier *worker.Notifier) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msg, err := q.Pop(ctx, 5*time.Second)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("[worker %d] Failed to pop message: %v", id, err)
			time.Sleep(time.Second)
			continue
		}
		if msg == nil {
			continue // timeout, nothing queued
		}

		if err := notifier.Process(msg); err != nil {
			log.Printf("[worker %d] Failed to process notification for comment %d: %v", id, msg.CommentID, err)
		}
	}
}
