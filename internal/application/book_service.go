package application

import (
	"context"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bookstore-backend/internal/domain/entity"
	repo "github.com/oksasatya/bookstore-backend/internal/domain/repository"
	"github.com/oksasatya/bookstore-backend/internal/infrastructure/docstore"
	"github.com/oksasatya/bookstore-backend/pkg/apperror"
	"github.com/oksasatya/bookstore-backend/pkg/helpers"
)

const defaultCoverExt = ".bin"

type BookService struct {
	Repo         repo.BookRepository
	Storage      ObjectStorage
	Index        BookIndexer
	CoverBucket  string
	SignedURLTTL time.Duration
	Logger       logrus.FieldLogger
	now          func() time.Time
}

type BookServiceConfig struct {
	CoverBucket  string
	SignedURLTTL time.Duration
}

// NewBookService builds the service. storage and index may be nil: cover uploads
// then fail with a validation error and search falls back to title matching.
func NewBookService(r repo.BookRepository, storage ObjectStorage, index BookIndexer, cfg BookServiceConfig, logger logrus.FieldLogger) *BookService {
	return &BookService{
		Repo:         r,
		Storage:      storage,
		Index:        index,
		CoverBucket:  cfg.CoverBucket,
		SignedURLTTL: cfg.SignedURLTTL,
		Logger:       logger,
		now:          time.Now,
	}
}

type BookInput struct {
	Title         string
	AuthorID      string
	PublisherID   string
	ISBN          string
	Price         float64
	Stock         int
	CategoryIDs   []string
	Description   string
	PublishedDate time.Time
}

// CoverUpload is a cover image read from a multipart form
type CoverUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

func (in BookInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return apperror.NewValidation("title is required", nil)
	}
	if in.Price < 0 {
		return apperror.NewValidation("price must be greater than or equal to 0", nil)
	}
	if in.Stock < 0 {
		return apperror.NewValidation("stock must be greater than or equal to 0", nil)
	}
	return nil
}

// apply copies client-owned fields onto b. Stats and the cover stay untouched.
func (in BookInput) apply(b *entity.Book) {
	b.Title = in.Title
	b.AuthorID = in.AuthorID
	b.PublisherID = in.PublisherID
	b.ISBN = in.ISBN
	b.Price = in.Price
	b.Stock = in.Stock
	b.CategoryIDs = uniqueStrings(in.CategoryIDs)
	b.Description = in.Description
	b.PublishedDate = in.PublishedDate
}

func uniqueStrings(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func (s *BookService) List(ctx context.Context, q repo.BookQuery) ([]entity.Book, error) {
	return s.Repo.List(ctx, q)
}

func (s *BookService) GetByID(ctx context.Context, id string) (*entity.Book, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *BookService) Create(ctx context.Context, in BookInput) (*entity.Book, error) {
	return s.CreateWithCover(ctx, in, nil)
}

// CreateWithCover stores the cover first under the new book's id, then inserts the book
// with the resulting URL. An empty upload is ignored.
func (s *BookService) CreateWithCover(ctx context.Context, in BookInput, cover *CoverUpload) (*entity.Book, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	b := &entity.Book{ID: docstore.NewID()}
	in.apply(b)
	if b.PublishedDate.IsZero() {
		b.PublishedDate = s.now().UTC()
	}

	if cover != nil && cover.Size > 0 {
		url, err := s.uploadCover(ctx, b.ID, cover)
		if err != nil {
			return nil, err
		}
		b.CoverImageURL = url
	}

	if err := s.Repo.Create(ctx, b); err != nil {
		return nil, err
	}
	s.index(ctx, b)
	return b, nil
}

// UpdateCover uploads a new cover for an existing book and stores its URL
func (s *BookService) UpdateCover(ctx context.Context, id string, cover *CoverUpload) (*entity.Book, error) {
	if cover == nil || cover.Size == 0 {
		return nil, apperror.NewValidation("cover image file is required", nil)
	}
	b, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	url, err := s.uploadCover(ctx, b.ID, cover)
	if err != nil {
		return nil, err
	}
	b.CoverImageURL = url
	if err := s.Repo.Update(ctx, b.ID, b); err != nil {
		return nil, err
	}
	return b, nil
}

// uploadCover writes the object at <bookId>/<uuid><ext> and resolves a URL,
// preferring the public URL over a presigned one
func (s *BookService) uploadCover(ctx context.Context, bookID string, cover *CoverUpload) (string, error) {
	if s.Storage == nil {
		return "", apperror.NewValidation("cover uploads are not configured", nil)
	}
	objectPath := CoverObjectPath(bookID, cover.Filename)
	contentType := cover.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if _, err := s.Storage.Upload(ctx, s.CoverBucket, objectPath, cover.Body, contentType); err != nil {
		return "", apperror.NewInternal("upload cover", err)
	}
	if url := s.Storage.PublicURL(ctx, s.CoverBucket, objectPath); strings.TrimSpace(url) != "" {
		return url, nil
	}
	url, err := s.Storage.PresignedURL(ctx, s.CoverBucket, objectPath, s.SignedURLTTL)
	if err != nil {
		return "", apperror.NewInternal("presign cover url", err)
	}
	return url, nil
}

// CoverObjectPath names a cover object. Files without an extension get .bin.
func CoverObjectPath(bookID, filename string) string {
	ext := path.Ext(strings.ReplaceAll(filename, `\`, "/"))
	if strings.TrimSpace(ext) == "" || ext == "." {
		ext = defaultCoverExt
	}
	return bookID + "/" + uuid.NewString() + strings.ToLower(ext)
}

// Update replaces the client-owned fields. Stats and cover are kept from the stored book.
func (s *BookService) Update(ctx context.Context, id string, in BookInput) (*entity.Book, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	b, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(b)
	if b.PublishedDate.IsZero() {
		b.PublishedDate = s.now().UTC()
	}
	if err := s.Repo.Update(ctx, id, b); err != nil {
		return nil, err
	}
	s.index(ctx, b)
	return b, nil
}

func (s *BookService) Delete(ctx context.Context, id string) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.Index != nil {
		if err := s.Index.Delete(ctx, id); err != nil {
			helpers.LogError(s.Logger, "search index delete failed", err, logrus.Fields{"book_id": id})
		}
	}
	return nil
}

// Search queries the full-text index and falls back to a title substring match
// when no index is configured or it fails
func (s *BookService) Search(ctx context.Context, q string) ([]entity.Book, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return s.Repo.List(ctx, repo.BookQuery{})
	}
	if s.Index != nil {
		ids, err := s.Index.Search(ctx, q, 20)
		if err == nil {
			return s.inOrder(ctx, ids)
		}
		helpers.LogError(s.Logger, "search index query failed, using title match", err, logrus.Fields{"q": q})
	}
	return s.Repo.List(ctx, repo.BookQuery{Title: q})
}

// inOrder loads books by id keeping the index ranking. Ids no longer stored are skipped.
func (s *BookService) inOrder(ctx context.Context, ids []string) ([]entity.Book, error) {
	books, err := s.Repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]entity.Book, len(books))
	for _, b := range books {
		byID[b.ID] = b
	}
	out := make([]entity.Book, 0, len(books))
	for _, id := range ids {
		if b, ok := byID[id]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *BookService) index(ctx context.Context, b *entity.Book) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Index(ctx, b); err != nil {
		helpers.LogError(s.Logger, "search index update failed", err, logrus.Fields{"book_id": b.ID})
	}
}
