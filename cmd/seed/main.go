package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bookstore-backend/config"
	"github.com/oksasatya/bookstore-backend/internal/application"
	"github.com/oksasatya/bookstore-backend/internal/domain/entity"
	"github.com/oksasatya/bookstore-backend/internal/infrastructure/docstore/mongodb"
	pginfra "github.com/oksasatya/bookstore-backend/internal/infrastructure/postgres"
	"github.com/oksasatya/bookstore-backend/internal/infrastructure/repository"
	"github.com/oksasatya/bookstore-backend/pkg/apperror"
	"github.com/oksasatya/bookstore-backend/pkg/helpers"
)

var baseCategories = []entity.Category{
	{Name: "Fiction", Description: "Novels and short stories"},
	{Name: "Science", Description: "Popular science and research"},
	{Name: "History", Description: "Accounts of past events and eras"},
	{Name: "Technology", Description: "Computing, software and engineering"},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	repos, closeFn, err := openRepos(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("open store")
	}
	defer closeFn()

	email := getenv("SEED_EMAIL", "demo@books.local")
	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		if password, err = helpers.GenerateRandomPassword(16); err != nil {
			logger.WithError(err).Fatal("generate password")
		}
	}

	users := application.NewUserService(repos.Users, helpers.NewPasswordHasher(cfg.BcryptCost), logger)
	u, err := users.Register(ctx, application.RegisterInput{
		Username: "demoUser",
		Email:    email,
		Password: password,
		FullName: "Demo User",
	})
	switch {
	case err == nil:
		if _, err := users.MarkEmailVerified(ctx, email); err != nil {
			logger.WithError(err).Fatal("verify seeded user")
		}
		fmt.Printf("seeded user: id=%s email=%s password=%s\n", u.ID, email, password)
	case apperror.IsConflict(err):
		fmt.Printf("user %s already exists\n", email)
	default:
		logger.WithError(err).Fatal("failed to seed user")
	}

	categories := application.NewCategoryService(repos.Categories, logger)
	for i := range baseCategories {
		c := baseCategories[i]
		err := categories.Create(ctx, &c)
		switch {
		case err == nil:
			fmt.Printf("category ensured: %s=%s\n", c.Name, c.ID)
		case apperror.IsConflict(err):
			fmt.Printf("category %s already exists\n", c.Name)
		default:
			logger.WithError(err).WithField("category", c.Name).Fatal("failed to seed category")
		}
	}
}

func openRepos(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (*repository.Set, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		client, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoTimeout)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() { _ = client.Disconnect(context.Background()) }
		repos, err := repository.NewMongoSet(ctx, client.Database(cfg.MongoDatabase))
		if err != nil {
			closeFn()
			return nil, nil, err
		}
		return repos, closeFn, nil
	case config.StorePostgres:
		if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			return nil, nil, err
		}
		pool, err := pginfra.NewPool(ctx, pginfra.PoolConfig{
			DSN:         cfg.PostgresDSN(),
			MaxConns:    cfg.DBMaxConns,
			MinConns:    cfg.DBMinConns,
			MaxConnLife: cfg.DBMaxConnLife,
		})
		if err != nil {
			return nil, nil, err
		}
		return repository.NewPostgresSet(pool), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("seeding needs STORE_DRIVER=mongo or postgres, got %q", cfg.StoreDriver)
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
