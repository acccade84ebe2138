package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/oksasatya/bookstore-backend/internal/domain/entity"
	"github.com/oksasatya/bookstore-backend/internal/infrastructure/docstore"
	"github.com/oksasatya/bookstore-backend/internal/infrastructure/docstore/memory"
	"github.com/oksasatya/bookstore-backend/internal/infrastructure/docstore/mongodb"
	"github.com/oksasatya/bookstore-backend/internal/infrastructure/postgres"
)

// UserUniqueKey makes email the natural key of users
var UserUniqueKey = docstore.UniqueKey("email")

// NameUniqueKey makes name the natural key of authors, publishers and categories
var NameUniqueKey = docstore.UniqueKey("name")

// BookPreserved keeps server owned counters through book replaces
var BookPreserved = docstore.Preserve("stats")

// Set groups every repository backed by one store
type Set struct {
	Users      *UserRepository
	Books      *BookRepository
	Favorites  *FavoriteRepository
	Authors    *NamedRepository[entity.Author]
	Publishers *NamedRepository[entity.Publisher]
	Categories *NamedRepository[entity.Category]
}

// NewMemorySet builds repositories on an in-process store
func NewMemorySet(s *memory.Store) *Set {
	return &Set{
		Users:      NewUserRepository(memory.Open[entity.User](s, UsersCollection, UserUniqueKey)),
		Books:      NewBookRepository(memory.Open[entity.Book](s, BooksCollection, BookPreserved)),
		Favorites:  NewFavoriteRepository(memory.Open[entity.FavoriteLink](s, FavoritesCollection, FavoriteUniqueKey)),
		Authors:    NewAuthorRepository(memory.Open[entity.Author](s, AuthorsCollection, NameUniqueKey)),
		Publishers: NewPublisherRepository(memory.Open[entity.Publisher](s, PublishersCollection, NameUniqueKey)),
		Categories: NewCategoryRepository(memory.Open[entity.Category](s, CategoriesCollection, NameUniqueKey)),
	}
}

// NewPostgresSet builds repositories on the JSONB documents table
func NewPostgresSet(db postgres.Querier) *Set {
	return &Set{
		Users:      NewUserRepository(postgres.Open[entity.User](db, UsersCollection, UserUniqueKey)),
		Books:      NewBookRepository(postgres.Open[entity.Book](db, BooksCollection, BookPreserved)),
		Favorites:  NewFavoriteRepository(postgres.Open[entity.FavoriteLink](db, FavoritesCollection, FavoriteUniqueKey)),
		Authors:    NewAuthorRepository(postgres.Open[entity.Author](db, AuthorsCollection, NameUniqueKey)),
		Publishers: NewPublisherRepository(postgres.Open[entity.Publisher](db, PublishersCollection, NameUniqueKey)),
		Categories: NewCategoryRepository(postgres.Open[entity.Category](db, CategoriesCollection, NameUniqueKey)),
	}
}

// NewMongoSet builds repositories on a mongo database, creating indexes as needed
func NewMongoSet(ctx context.Context, db *mongo.Database) (*Set, error) {
	users, err := mongodb.Open[entity.User](ctx, db, UsersCollection, UserUniqueKey)
	if err != nil {
		return nil, err
	}
	books, err := mongodb.Open[entity.Book](ctx, db, BooksCollection, BookPreserved)
	if err != nil {
		return nil, err
	}
	favorites, err := mongodb.Open[entity.FavoriteLink](ctx, db, FavoritesCollection, FavoriteUniqueKey)
	if err != nil {
		return nil, err
	}
	authors, err := mongodb.Open[entity.Author](ctx, db, AuthorsCollection, NameUniqueKey)
	if err != nil {
		return nil, err
	}
	publishers, err := mongodb.Open[entity.Publisher](ctx, db, PublishersCollection, NameUniqueKey)
	if err != nil {
		return nil, err
	}
	categories, err := mongodb.Open[entity.Category](ctx, db, CategoriesCollection, NameUniqueKey)
	if err != nil {
		return nil, err
	}
	return &Set{
		Users:      NewUserRepository(users),
		Books:      NewBookRepository(books),
		Favorites:  NewFavoriteRepository(favorites),
		Authors:    NewAuthorRepository(authors),
		Publishers: NewPublisherRepository(publishers),
		Categories: NewCategoryRepository(categories),
	}, nil
}
