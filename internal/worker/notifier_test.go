package worker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/techblog-server/config"
	"github.com/example/techblog-server/internal/pkg/email"
	"github.com/example/techblog-server/internal/pkg/queue"
)

func TestProcessWithoutMailer(t *testing.T) {
	n := NewNotifier(nil)

	err := n.Process(&queue.NotificationMessage{CommentID: 1, RecipientEmail: "a@example.com"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmailDisabled)
}

func TestProcessWithDisabledMailer(t *testing.T) {
	mailer := email.NewService(&config.EmailConfig{})
	n := NewNotifier(mailer)

	err := n.Process(&queue.NotificationMessage{CommentID: 1, RecipientEmail: "a@example.com"})
	assert.ErrorIs(t, err, ErrEmailDisabled)
}

func TestProcessSkipsEmptyRecipient(t *testing.T) {
	mailer := email.NewService(&config.EmailConfig{SMTPHost: "smtp.example.com", SMTPPort: 465})
	n := NewNotifier(mailer)

	err := n.Process(&queue.NotificationMessage{CommentID: 1, RecipientEmail: ""})
	assert.NoError(t, err)
}
