package repository

import (
	"context"

	"github.com/oksasatya/bookstore-backend/internal/domain/entity"
	"github.com/oksasatya/bookstore-backend/internal/domain/repository"
	"github.com/oksasatya/bookstore-backend/internal/infrastructure/docstore"
)

// NamedRepository serves authors, publishers and categories, all looked up by exact name
type NamedRepository[T any] struct {
	base[T]
}

func NewAuthorRepository(coll docstore.Collection[entity.Author]) *NamedRepository[entity.Author] {
	return &NamedRepository[entity.Author]{base[entity.Author]{coll: coll, label: "author"}}
}

func NewPublisherRepository(coll docstore.Collection[entity.Publisher]) *NamedRepository[entity.Publisher] {
	return &NamedRepository[entity.Publisher]{base[entity.Publisher]{coll: coll, label: "publisher"}}
}

func NewCategoryRepository(coll docstore.Collection[entity.Category]) *NamedRepository[entity.Category] {
	return &NamedRepository[entity.Category]{base[entity.Category]{coll: coll, label: "category"}}
}

func (r *NamedRepository[T]) List(ctx context.Context) ([]T, error) {
	return r.find(ctx, nil)
}

func (r *NamedRepository[T]) GetByID(ctx context.Context, id string) (*T, error) {
	return r.getByID(ctx, id)
}

func (r *NamedRepository[T]) GetByName(ctx context.Context, name string) (*T, error) {
	return r.findOne(ctx, docstore.Where(docstore.Eq("name", name)))
}

func (r *NamedRepository[T]) Create(ctx context.Context, v *T) error {
	return r.create(ctx, v)
}

func (r *NamedRepository[T]) Update(ctx context.Context, id string, v *T) error {
	return r.update(ctx, id, v)
}

func (r *NamedRepository[T]) Delete(ctx context.Context, id string) error {
	return r.delete(ctx, id)
}

var (
	_ repository.AuthorRepository    = (*NamedRepository[entity.Author])(nil)
	_ repository.PublisherRepository = (*NamedRepository[entity.Publisher])(nil)
	_ repository.CategoryRepository  = (*NamedRepository[entity.Category])(nil)
)
