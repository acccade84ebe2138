package repository

import (
	"context"
	"fmt"

	"github.com/oksasatya/bookstore-backend/internal/domain/entity"
	"github.com/oksasatya/bookstore-backend/internal/domain/repository"
	"github.com/oksasatya/bookstore-backend/internal/infrastructure/docstore"
)

type BookRepository struct {
	base[entity.Book]
}

func NewBookRepository(coll docstore.Collection[entity.Book]) *BookRepository {
	return &BookRepository{base[entity.Book]{coll: coll, label: "book"}}
}

func bookFilter(q repository.BookQuery) docstore.Filter {
	var f docstore.Filter
	if q.Title != "" {
		f = append(f, docstore.ContainsFold(entity.BookFieldTitle, q.Title))
	}
	if q.AuthorID != "" {
		f = append(f, docstore.Eq(entity.BookFieldAuthorID, q.AuthorID))
	}
	if q.PublisherID != "" {
		f = append(f, docstore.Eq(entity.BookFieldPublisherID, q.PublisherID))
	}
	if q.CategoryID != "" {
		f = append(f, docstore.Has(entity.BookFieldCategoryIDs, q.CategoryID))
	}
	return f
}

func (r *BookRepository) List(ctx context.Context, q repository.BookQuery) ([]entity.Book, error) {
	return r.find(ctx, bookFilter(q))
}

func (r *BookRepository) GetByID(ctx context.Context, id string) (*entity.Book, error) {
	return r.getByID(ctx, id)
}

func (r *BookRepository) GetByIDs(ctx context.Context, ids []string) ([]entity.Book, error) {
	if len(ids) == 0 {
		return []entity.Book{}, nil
	}
	return r.find(ctx, docstore.Where(docstore.IDIn(ids...)))
}

func (r *BookRepository) Create(ctx context.Context, b *entity.Book) error {
	return r.create(ctx, b)
}

func (r *BookRepository) Update(ctx context.Context, id string, b *entity.Book) error {
	return r.update(ctx, id, b)
}

func (r *BookRepository) Delete(ctx context.Context, id string) error {
	return r.delete(ctx, id)
}

func (r *BookRepository) AdjustFavorites(ctx context.Context, id string, delta int64) error {
	if !docstore.IsValidID(id) {
		return r.notFound()
	}
	ok, err := r.coll.IncrementField(ctx, docstore.ByID(id), entity.BookFieldFavorites, delta)
	if err != nil {
		return fmt.Errorf("adjust favorites: %w", err)
	}
	if !ok {
		return r.notFound()
	}
	return nil
}

var _ repository.BookRepository = (*BookRepository)(nil)
