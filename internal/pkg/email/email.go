package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/example/techblog-server/config"
)

type Service struct {
	cfg *config.EmailConfig
}

func NewService(cfg *config.EmailConfig) *Service {
	return &Service{cfg: cfg}
}

// Enabled 是否配置了 SMTP
func (s *Service) Enabled() bool {
	return s != nil && s.cfg != nil && s.cfg.SMTPHost != ""
}

// SendCommentNotification 有新评论待审核时通知文章作者
func (s *Service) SendCommentNotification(to, postTitle, authorName, excerpt string) error {
	if !s.Enabled() {
		return nil
	}

	subject := fmt.Sprintf("新评论待审核 - %s", postTitle)
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #2563eb;">新评论待审核</h2>
        <p>您好，</p>
        <p>您的文章《%s》收到一条来自 %s 的新评论：</p>
        <div style="background-color: #f3f4f6; padding: 15px; margin: 20px 0; border-left: 4px solid #2563eb;">
            %s
        </div>
        <p>评论需要审核后才会对访客可见，请前往后台处理。</p>
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">此邮件由系统自动发送，请勿回复。</p>
    </div>
</body>
</html>
`, postTitle, authorName, excerpt)

	return s.sendHTML(to, subject, body)
}

// sendHTML 发送 HTML 邮件
func (s *Service) sendHTML(to, subject, body string) error {
	headers := make(map[string]string)
	headers["From"] = s.cfg.From
	headers["To"] = to
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"

	var msg strings.Builder
	for k, v := range headers {
		msg.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	msg.WriteString("\r\n")
	msg.WriteString(body)

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	return smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg.String()))
}
