package application

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bookstore-backend/internal/domain/entity"
	repo "github.com/oksasatya/bookstore-backend/internal/domain/repository"
	"github.com/oksasatya/bookstore-backend/pkg/apperror"
)

// CatalogService serves authors, publishers and categories, all keyed by a unique name
type CatalogService[T any] struct {
	Repo   repo.NamedRepository[T]
	Logger logrus.FieldLogger
	label  string
	name   func(*T) string
}

type (
	AuthorService    = CatalogService[entity.Author]
	PublisherService = CatalogService[entity.Publisher]
	CategoryService  = CatalogService[entity.Category]
)

func NewAuthorService(r repo.AuthorRepository, logger logrus.FieldLogger) *AuthorService {
	return &AuthorService{Repo: r, Logger: logger, label: "author", name: func(a *entity.Author) string { return a.Name }}
}

func NewPublisherService(r repo.PublisherRepository, logger logrus.FieldLogger) *PublisherService {
	return &PublisherService{Repo: r, Logger: logger, label: "publisher", name: func(p *entity.Publisher) string { return p.Name }}
}

func NewCategoryService(r repo.CategoryRepository, logger logrus.FieldLogger) *CategoryService {
	return &CategoryService{Repo: r, Logger: logger, label: "category", name: func(c *entity.Category) string { return c.Name }}
}

func (s *CatalogService[T]) List(ctx context.Context) ([]T, error) {
	return s.Repo.List(ctx)
}

func (s *CatalogService[T]) GetByID(ctx context.Context, id string) (*T, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *CatalogService[T]) GetByName(ctx context.Context, name string) (*T, error) {
	return s.Repo.GetByName(ctx, name)
}

// Create inserts v. A name already in use is a Conflict.
func (s *CatalogService[T]) Create(ctx context.Context, v *T) error {
	name := s.name(v)
	if strings.TrimSpace(name) == "" {
		return apperror.NewValidation(s.label+" name is required", nil)
	}
	if _, err := s.Repo.GetByName(ctx, name); err == nil {
		return apperror.NewConflict(s.label+" with this name already exists", nil)
	} else if !apperror.IsNotFound(err) {
		return err
	}
	if err := s.Repo.Create(ctx, v); err != nil {
		if apperror.IsConflict(err) {
			return apperror.NewConflict(s.label+" with this name already exists", err)
		}
		return err
	}
	return nil
}

// Update replaces the stored entity. The id always comes from the path.
func (s *CatalogService[T]) Update(ctx context.Context, id string, v *T) error {
	if strings.TrimSpace(s.name(v)) == "" {
		return apperror.NewValidation(s.label+" name is required", nil)
	}
	return s.Repo.Update(ctx, id, v)
}

func (s *CatalogService[T]) Delete(ctx context.Context, id string) error {
	return s.Repo.Delete(ctx, id)
}
