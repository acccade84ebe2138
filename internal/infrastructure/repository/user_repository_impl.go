package repository

import (
	"context"

	"github.com/oksasatya/bookstore-backend/internal/domain/entity"
	"github.com/oksasatya/bookstore-backend/internal/domain/repository"
	"github.com/oksasatya/bookstore-backend/internal/infrastructure/docstore"
)

type UserRepository struct {
	base[entity.User]
}

func NewUserRepository(coll docstore.Collection[entity.User]) *UserRepository {
	return &UserRepository{base[entity.User]{coll: coll, label: "user"}}
}

func (r *UserRepository) List(ctx context.Context) ([]entity.User, error) {
	return r.find(ctx, nil)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getByID(ctx, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, docstore.Where(docstore.Eq("email", email)))
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	return r.create(ctx, u)
}

func (r *UserRepository) Update(ctx context.Context, id string, u *entity.User) error {
	return r.update(ctx, id, u)
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return r.delete(ctx, id)
}

var _ repository.UserRepository = (*UserRepository)(nil)
