package main

import (
	"flag"
	"log"
	"time"

	"github.com/example/techblog-server/config"
	"github.com/example/techblog-server/internal/database"
	"github.com/example/techblog-server/internal/repository"
)

// 一次性清理工具：物理删除超过保留期的软删除评论。
// 默认 dry-run，只统计不删除。
func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	retentionDays := flag.Int("retention-days", 0, "override comment.purge_after_days")
	dryRun := flag.Bool("dry-run", true, "report what would be purged without deleting")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	days := cfg.Comment.PurgeAfterDays
	if *retentionDays > 0 {
		days = *retentionDays
	}
	if days <= 0 {
		log.Fatal("Retention period is not set, nothing to do")
	}

	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}

	commentRepo := repository.NewCommentRepository(db)
	cutoff := time.Now().AddDate(0, 0, -days)
	log.Printf("Purging soft-deleted comments last touched before %s", cutoff.Format("2006-01-02 15:04:05"))

	if *dryRun {
		count, err := commentRepo.CountDeletedBefore(cutoff)
		if err != nil {
			log.Fatalf("Failed to count comments: %v", err)
		}
		log.Printf("[dry-run] %d comments would be purged, rerun with -dry-run=false to delete", count)
		return
	}

	purged, err := commentRepo.PurgeDeletedBefore(cutoff)
	if err != nil {
		log.Fatalf("Failed to purge comments: %v", err)
	}
	log.Printf("Purged %d comments", purged)
}
