package mailer

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
)

var ErrNoRecipient = errors.New("mailer: recipient is required")

// Publisher puts a JSON message on a queue. helpers.RabbitPublisher satisfies it.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// QueueMailer hands emails to the email worker through a queue
type QueueMailer struct {
	pub Publisher
}

func NewQueueMailer(pub Publisher) *QueueMailer {
	return &QueueMailer{pub: pub}
}

func (q *QueueMailer) Send(ctx context.Context, to, subject, html string) error {
	if strings.TrimSpace(to) == "" {
		return ErrNoRecipient
	}
	return q.pub.PublishJSON(ctx, EmailJob{To: to, Subject: subject, HTML: html})
}

// LogMailer only logs outgoing mail. Used when MAIL_SEND_ENABLED=false.
type LogMailer struct {
	logger logrus.FieldLogger
}

func NewLogMailer(logger logrus.FieldLogger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (l *LogMailer) Send(_ context.Context, to, subject, html string) error {
	if strings.TrimSpace(to) == "" {
		return ErrNoRecipient
	}
	l.logger.WithFields(logrus.Fields{
		"to":      to,
		"subject": subject,
		"bytes":   len(html),
	}).Info("mail sending disabled, message dropped")
	return nil
}
