// Package storage adapts Google Cloud Storage to the object storage used for book covers.
package storage

import (
	"context"
	"io"
	"time"

	"cloud.google.com/go/storage"

	"github.com/oksasatya/bookstore-backend/pkg/helpers"
)

// GCSStorage stores objects in Google Cloud Storage. Buckets listed in
// publicBuckets are served by public URL; the rest need signed URLs.
type GCSStorage struct {
	client        *storage.Client
	publicBuckets map[string]bool
}

func NewGCSStorage(client *storage.Client, publicBuckets ...string) *GCSStorage {
	pb := make(map[string]bool, len(publicBuckets))
	for _, b := range publicBuckets {
		pb[b] = true
	}
	return &GCSStorage{client: client, publicBuckets: pb}
}

func (s *GCSStorage) Upload(ctx context.Context, bucket, objectPath string, r io.Reader, contentType string) (string, error) {
	return helpers.UploadObject(ctx, s.client, bucket, objectPath, contentType, r)
}

// PublicURL returns an empty string when the bucket is not public
func (s *GCSStorage) PublicURL(_ context.Context, bucket, objectPath string) string {
	if !s.publicBuckets[bucket] {
		return ""
	}
	return helpers.PublicURL(bucket, objectPath)
}

func (s *GCSStorage) PresignedURL(_ context.Context, bucket, objectPath string, ttl time.Duration) (string, error) {
	return helpers.SignedURL(s.client, bucket, objectPath, ttl)
}
