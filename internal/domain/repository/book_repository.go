package repository

import (
	"context"

	"github.com/oksasatya/bookstore-backend/internal/domain/entity"
)

// BookQuery narrows a book listing. Empty fields are ignored; set fields are combined.
type BookQuery struct {
	Title       string // case-insensitive substring
	AuthorID    string
	CategoryID  string
	PublisherID string
}

type BookRepository interface {
	List(ctx context.Context, q BookQuery) ([]entity.Book, error)
	GetByID(ctx context.Context, id string) (*entity.Book, error)
	GetByIDs(ctx context.Context, ids []string) ([]entity.Book, error)
	Create(ctx context.Context, b *entity.Book) error
	Update(ctx context.Context, id string, b *entity.Book) error
	Delete(ctx context.Context, id string) error
	// AdjustFavorites atomically adds delta to stats.favorites, flooring at zero
	AdjustFavorites(ctx context.Context, id string, delta int64) error
}

// FavoriteRepository stores user to book favorite links
type FavoriteRepository interface {
	Exists(ctx context.Context, userID, bookID string) (bool, error)
	// Add returns an apperror Conflict when the link already exists
	Add(ctx context.Context, link *entity.FavoriteLink) error
	Remove(ctx context.Context, userID, bookID string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]entity.FavoriteLink, error)
}
