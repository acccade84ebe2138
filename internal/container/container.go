// Package container builds the application services from the infrastructure
// that cmd/main connects. It is passed explicitly to the router.
package container

import (
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bookstore-backend/config"
	"github.com/oksasatya/bookstore-backend/internal/application"
	"github.com/oksasatya/bookstore-backend/internal/infrastructure/repository"
	"github.com/oksasatya/bookstore-backend/pkg/helpers"
)

// Infra carries the connected backends. Redis, Storage and Index are optional.
type Infra struct {
	Repos   *repository.Set
	Redis   *redis.Client
	Storage application.ObjectStorage
	Index   application.BookIndexer
	Mailer  application.Mailer
}

// Container holds every component the HTTP layer needs
type Container struct {
	Config *config.Config
	Logger *logrus.Logger
	JWT    *helpers.JWTManager
	Redis  *redis.Client
	Repos  *repository.Set

	Users      *application.UserService
	Auth       *application.AuthService
	Books      *application.BookService
	Favorites  *application.FavoriteService
	Authors    *application.AuthorService
	Publishers *application.PublisherService
	Categories *application.CategoryService
}

// New wires the services on top of infra
func New(cfg *config.Config, logger *logrus.Logger, infra Infra) *Container {
	jwt := helpers.NewJWTManager(helpers.TokenConfig{
		AccessSecret: cfg.JWTSecret,
		EmailSecret:  cfg.JWTEmailSecret,
		Issuer:       cfg.JWTIssuer,
		Audience:     cfg.JWTAudience,
		AccessTTL:    cfg.AccessTTL,
	})
	repos := infra.Repos
	users := application.NewUserService(repos.Users, helpers.NewPasswordHasher(cfg.BcryptCost), logger)

	return &Container{
		Config: cfg,
		Logger: logger,
		JWT:    jwt,
		Redis:  infra.Redis,
		Repos:  repos,

		Users: users,
		Auth:  application.NewAuthService(users, jwt, infra.Mailer, cfg, logger),
		Books: application.NewBookService(repos.Books, infra.Storage, infra.Index, application.BookServiceConfig{
			CoverBucket:  cfg.GCSCoverBucket,
			SignedURLTTL: cfg.GCSSignedURLTTL,
		}, logger),
		Favorites:  application.NewFavoriteService(repos.Books, repos.Favorites, logger),
		Authors:    application.NewAuthorService(repos.Authors, logger),
		Publishers: application.NewPublisherService(repos.Publishers, logger),
		Categories: application.NewCategoryService(repos.Categories, logger),
	}
}
