package application

import (
	"context"
	"io"
	"time"

	"github.com/oksasatya/bookstore-backend/internal/domain/entity"
)

// ObjectStorage stores binary objects such as book covers
type ObjectStorage interface {
	Upload(ctx context.Context, bucket, objectPath string, r io.Reader, contentType string) (string, error)
	// PublicURL returns "" when the bucket is not publicly readable
	PublicURL(ctx context.Context, bucket, objectPath string) string
	PresignedURL(ctx context.Context, bucket, objectPath string, ttl time.Duration) (string, error)
}

// Mailer delivers an HTML email
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

// BookIndexer keeps a full-text index of books
type BookIndexer interface {
	Index(ctx context.Context, b *entity.Book) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, q string, size int) ([]string, error)
}
