package repository

import (
	"context"

	"github.com/oksasatya/bookstore-backend/internal/domain/entity"
)

// NamedRepository is the shape shared by catalog entities keyed by a unique name
type NamedRepository[T any] interface {
	List(ctx context.Context) ([]T, error)
	GetByID(ctx context.Context, id string) (*T, error)
	GetByName(ctx context.Context, name string) (*T, error)
	Create(ctx context.Context, v *T) error
	Update(ctx context.Context, id string, v *T) error
	Delete(ctx context.Context, id string) error
}

type AuthorRepository = NamedRepository[entity.Author]

type PublisherRepository = NamedRepository[entity.Publisher]

type CategoryRepository = NamedRepository[entity.Category]
