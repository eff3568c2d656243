package cron

import (
	"log"
	"time"

	"github.com/example/techblog-server/internal/repository"
)

// Service 定时任务服务，负责清理过期的软删除评论
type Service struct {
	commentRepo    *repository.CommentRepository
	purgeAfterDays int
	stopChan       chan struct{}
}

func NewService(commentRepo *repository.CommentRepository, purgeAfterDays int) *Service {
	return &Service{
		commentRepo:    commentRepo,
		purgeAfterDays: purgeAfterDays,
		stopChan:       make(chan struct{}),
	}
}

// Start 启动定时任务
func (s *Service) Start() {
	if s.purgeAfterDays <= 0 {
		log.Println("Comment purge disabled (purge_after_days <= 0)")
		return
	}

	go s.runDaily()
	log.Printf("Cron service started, purging soft-deleted comments after %d days", s.purgeAfterDays)
}

// Stop 停止定时任务
func (s *Service) Stop() {
	close(s.stopChan)
}

// runDaily 每天 UTC 零点执行清理
func (s *Service) runDaily() {
	for {
		now := time.Now().UTC()
		next := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
		timer := time.NewTimer(next.Sub(now))

		select {
		case <-timer.C:
			s.PurgeDeletedComments()
		case <-s.stopChan:
			timer.Stop()
			return
		}
	}
}

// PurgeDeletedComments 物理删除超过保留期的软删除评论
func (s *Service) PurgeDeletedComments() {
	cutoff := time.Now().AddDate(0, 0, -s.purgeAfterDays)

	purged, err := s.commentRepo.PurgeDeletedBefore(cutoff)
	if err != nil {
		log.Printf("Failed to purge deleted comments: %v", err)
		return
	}

	if purged > 0 {
		log.Printf("Purged %d soft-deleted comments older than %s", purged, cutoff.Format("2006-01-02"))
	}
}
