package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/oksasatya/bookstore-backend/internal/domain/entity"
	"github.com/oksasatya/bookstore-backend/internal/domain/repository"
	"github.com/oksasatya/bookstore-backend/internal/infrastructure/docstore"
	"github.com/oksasatya/bookstore-backend/pkg/apperror"
)

// FavoriteUniqueKey is the unique key backends enforce on favorite links
var FavoriteUniqueKey = docstore.UniqueKey("userId", "bookId")

type FavoriteRepository struct {
	base[entity.FavoriteLink]
}

func NewFavoriteRepository(coll docstore.Collection[entity.FavoriteLink]) *FavoriteRepository {
	return &FavoriteRepository{base[entity.FavoriteLink]{coll: coll, label: "favorite"}}
}

func linkFilter(userID, bookID string) docstore.Filter {
	return docstore.Where(docstore.Eq("userId", userID), docstore.Eq("bookId", bookID))
}

func (r *FavoriteRepository) Exists(ctx context.Context, userID, bookID string) (bool, error) {
	_, err := r.coll.FindOne(ctx, linkFilter(userID, bookID))
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("find favorite: %w", err)
	}
	return true, nil
}

func (r *FavoriteRepository) Add(ctx context.Context, link *entity.FavoriteLink) error {
	if err := r.coll.InsertOne(ctx, link); err != nil {
		if errors.Is(err, docstore.ErrDuplicate) {
			return apperror.NewConflict("book already in favorites", err)
		}
		return fmt.Errorf("add favorite: %w", err)
	}
	return nil
}

func (r *FavoriteRepository) Remove(ctx context.Context, userID, bookID string) (bool, error) {
	ok, err := r.coll.DeleteOne(ctx, linkFilter(userID, bookID))
	if err != nil {
		return false, fmt.Errorf("remove favorite: %w", err)
	}
	return ok, nil
}

func (r *FavoriteRepository) ListByUser(ctx context.Context, userID string) ([]entity.FavoriteLink, error) {
	return r.find(ctx, docstore.Where(docstore.Eq("userId", userID)))
}

var _ repository.FavoriteRepository = (*FavoriteRepository)(nil)
