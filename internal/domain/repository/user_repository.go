package repository

import (
	"context"

	"github.com/oksasatya/bookstore-backend/internal/domain/entity"
)

// UserRepository defines the interface for user persistence.
// Lookups of a missing user return an apperror NotFound.
type UserRepository interface {
	List(ctx context.Context) ([]entity.User, error)
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Create(ctx context.Context, u *entity.User) error
	Update(ctx context.Context, id string, u *entity.User) error
	Delete(ctx context.Context, id string) error
}
