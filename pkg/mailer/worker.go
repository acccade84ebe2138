package mailer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/oksasatya/bookstore-backend/pkg/mailer/templates"
)

// MessageSender delivers a fully rendered message. *Mailgun satisfies it.
type MessageSender interface {
	SendMessage(ctx context.Context, to, subject, text, html string) error
}

// PermanentError marks a job that will never succeed and must not be requeued
type PermanentError struct{ Err error }

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// HandleJob decodes one queued job, renders its template if any and sends it.
func HandleJob(ctx context.Context, sender MessageSender, body []byte) error {
	var job EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		return &PermanentError{Err: fmt.Errorf("bad message: %w", err)}
	}
	if job.To == "" {
		return &PermanentError{Err: ErrNoRecipient}
	}

	subject, text, html := job.Subject, job.Text, job.HTML
	if job.Template != "" {
		s, t, h, err := templates.Render(job.Template, job.Data)
		if err != nil {
			return &PermanentError{Err: fmt.Errorf("render %s: %w", job.Template, err)}
		}
		subject, text, html = s, t, h
	}
	return sender.SendMessage(ctx, job.To, subject, text, html)
}
