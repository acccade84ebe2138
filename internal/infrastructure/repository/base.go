// Package repository maps entity operations onto docstore collections and
// translates store errors into apperror kinds.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/oksasatya/bookstore-backend/internal/infrastructure/docstore"
	"github.com/oksasatya/bookstore-backend/pkg/apperror"
)

// Collection names
const (
	UsersCollection      = "users"
	BooksCollection      = "books"
	AuthorsCollection    = "authors"
	PublishersCollection = "publishers"
	CategoriesCollection = "categories"
	FavoritesCollection  = "userBooks"
)

// base holds the CRUD plumbing shared by every repository
type base[T any] struct {
	coll  docstore.Collection[T]
	label string
}

func (r base[T]) notFound() error {
	return apperror.NewNotFound(r.label+" not found", nil)
}

func (r base[T]) find(ctx context.Context, f docstore.Filter) ([]T, error) {
	out, err := r.coll.Find(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.label, err)
	}
	return out, nil
}

func (r base[T]) findOne(ctx context.Context, f docstore.Filter) (*T, error) {
	v, err := r.coll.FindOne(ctx, f)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, r.notFound()
		}
		return nil, fmt.Errorf("get %s: %w", r.label, err)
	}
	return v, nil
}

func (r base[T]) getByID(ctx context.Context, id string) (*T, error) {
	if !docstore.IsValidID(id) {
		return nil, r.notFound()
	}
	return r.findOne(ctx, docstore.ByID(id))
}

func (r base[T]) create(ctx context.Context, v *T) error {
	if err := r.coll.InsertOne(ctx, v); err != nil {
		if errors.Is(err, docstore.ErrDuplicate) {
			return apperror.NewConflict(r.label+" already exists", err)
		}
		return fmt.Errorf("create %s: %w", r.label, err)
	}
	return nil
}

func (r base[T]) update(ctx context.Context, id string, v *T) error {
	if !docstore.IsValidID(id) {
		return r.notFound()
	}
	ok, err := r.coll.ReplaceOne(ctx, docstore.ByID(id), v)
	if err != nil {
		if errors.Is(err, docstore.ErrDuplicate) {
			return apperror.NewConflict(r.label+" already exists", err)
		}
		return fmt.Errorf("update %s: %w", r.label, err)
	}
	if !ok {
		return r.notFound()
	}
	return nil
}

func (r base[T]) delete(ctx context.Context, id string) error {
	if !docstore.IsValidID(id) {
		return r.notFound()
	}
	ok, err := r.coll.DeleteOne(ctx, docstore.ByID(id))
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.label, err)
	}
	if !ok {
		return r.notFound()
	}
	return nil
}
