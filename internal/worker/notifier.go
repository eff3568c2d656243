package worker

import (
	"errors"
	"log"

	"github.com/example/techblog-server/internal/pkg/email"
	"github.com/example/techblog-server/internal/pkg/queue"
)

var ErrEmailDisabled = errors.New("邮件服务未配置")

// Notifier 消费通知队列，向文章作者发送待审核评论的邮件提醒
type Notifier struct {
	mailer *email.Service
}

func NewNotifier(mailer *email.Service) *Notifier {
	return &Notifier{mailer: mailer}
}

// Process 处理一条通知任务
func (n *Notifier) Process(msg *queue.NotificationMessage) error {
	if n.mailer == nil || !n.mailer.Enabled() {
		return ErrEmailDisabled
	}

	if msg.RecipientEmail == "" {
		log.Printf("Skipping notification for comment %d: no recipient", msg.CommentID)
		return nil
	}

	if err := n.mailer.SendCommentNotification(msg.RecipientEmail, msg.PostTitle, msg.AuthorName, msg.Excerpt); err != nil {
		return err
	}

	log.Printf("Notification sent for comment %d on post %d", msg.CommentID, msg.PostID)
	return nil
}
