package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bookstore-backend/internal/domain/entity"
	repo "github.com/oksasatya/bookstore-backend/internal/domain/repository"
	"github.com/oksasatya/bookstore-backend/pkg/apperror"
)

var (
	ErrAlreadyFavorite = apperror.NewConflict("book already in favorites", nil)
	ErrNotFavorite     = apperror.NewConflict("book not in favorites", nil)
)

// FavoriteService maintains user favorite links and the denormalized
// stats.favorites counter on books
type FavoriteService struct {
	Books     repo.BookRepository
	Favorites repo.FavoriteRepository
	Logger    logrus.FieldLogger
	now       func() time.Time
}

func NewFavoriteService(books repo.BookRepository, favorites repo.FavoriteRepository, logger logrus.FieldLogger) *FavoriteService {
	return &FavoriteService{Books: books, Favorites: favorites, Logger: logger, now: time.Now}
}

// AddFavorite links the book to the user and increments its counter by one.
// A second add for the same pair is a Conflict and leaves the counter alone.
func (s *FavoriteService) AddFavorite(ctx context.Context, userID, bookID string) error {
	if _, err := s.Books.GetByID(ctx, bookID); err != nil {
		return err
	}
	exists, err := s.Favorites.Exists(ctx, userID, bookID)
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadyFavorite
	}
	link := &entity.FavoriteLink{UserID: userID, BookID: bookID, CreatedAt: s.now().UTC()}
	if err := s.Favorites.Add(ctx, link); err != nil {
		// lost a race with a concurrent add for the same pair
		if apperror.IsConflict(err) {
			return ErrAlreadyFavorite
		}
		return err
	}
	if err := s.Books.AdjustFavorites(ctx, bookID, 1); err != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{"user_id": userID, "book_id": bookID}).
			Error("favorite link stored but counter increment failed")
		return err
	}
	return nil
}

// RemoveFavorite unlinks the book from the user and decrements its counter,
// never below zero. Removing a link that does not exist is a Conflict.
func (s *FavoriteService) RemoveFavorite(ctx context.Context, userID, bookID string) error {
	if _, err := s.Books.GetByID(ctx, bookID); err != nil {
		return err
	}
	exists, err := s.Favorites.Exists(ctx, userID, bookID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFavorite
	}
	removed, err := s.Favorites.Remove(ctx, userID, bookID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFavorite
	}
	if err := s.Books.AdjustFavorites(ctx, bookID, -1); err != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{"user_id": userID, "book_id": bookID}).
			Error("favorite link removed but counter decrement failed")
		return err
	}
	return nil
}

// ListFavorites returns the user's favorite books in the order they were added
func (s *FavoriteService) ListFavorites(ctx context.Context, userID string) ([]entity.Book, error) {
	links, err := s.Favorites.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(links))
	for _, l := range links {
		ids = append(ids, l.BookID)
	}
	books, err := s.Books.GetByIDs(ctx, ids)
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
