package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bookstore-backend/config"
	"github.com/oksasatya/bookstore-backend/internal/application"
	"github.com/oksasatya/bookstore-backend/internal/container"
	"github.com/oksasatya/bookstore-backend/internal/infrastructure/docstore/memory"
	"github.com/oksasatya/bookstore-backend/internal/infrastructure/docstore/mongodb"
	pginfra "github.com/oksasatya/bookstore-backend/internal/infrastructure/postgres"
	"github.com/oksasatya/bookstore-backend/internal/infrastructure/repository"
	"github.com/oksasatya/bookstore-backend/internal/infrastructure/search"
	"github.com/oksasatya/bookstore-backend/internal/infrastructure/storage"
	"github.com/oksasatya/bookstore-backend/internal/router"
	"github.com/oksasatya/bookstore-backend/pkg/helpers"
	"github.com/oksasatya/bookstore-backend/pkg/mailer"
	"github.com/oksasatya/bookstore-backend/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	sentryOn, err := helpers.InitSentry(cfg.SentryDSN, cfg.Env, cfg.AppName)
	if err != nil {
		logger.WithError(err).Warn("sentry disabled")
	}
	if sentryOn {
		helpers.AttachSentry(logger, sentry.CurrentHub())
		defer helpers.FlushSentry()
	}
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	infra, cleanup, err := connectInfra(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to initialize infrastructure")
	}
	defer cleanup()

	c := container.New(cfg, logger, infra)
	r := router.New(c)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.WithError(err).Error("server forced to shutdown")
	}
	logger.Info("server exited properly")
}

// connectInfra opens the document store and the optional backends. The
// returned cleanup closes everything that was opened.
func connectInfra(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (container.Infra, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (container.Infra, func(), error) {
		cleanup()
		return container.Infra{}, func() {}, err
	}

	var infra container.Infra

	switch cfg.StoreDriver {
	case config.StoreMongo:
		client, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoTimeout)
		if err != nil {
			return fail(fmt.Errorf("connect mongo: %w", err))
		}
		closers = append(closers, func() { _ = client.Disconnect(context.Background()) })
		repos, err := repository.NewMongoSet(ctx, client.Database(cfg.MongoDatabase))
		if err != nil {
			return fail(err)
		}
		infra.Repos = repos
	case config.StorePostgres:
		if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			return fail(fmt.Errorf("migrate: %w", err))
		}
		pool, err := pginfra.NewPool(ctx, pginfra.PoolConfig{
			DSN:         cfg.PostgresDSN(),
			MaxConns:    cfg.DBMaxConns,
			MinConns:    cfg.DBMinConns,
			MaxConnLife: cfg.DBMaxConnLife,
		})
		if err != nil {
			return fail(fmt.Errorf("connect postgres: %w", err))
		}
		closers = append(closers, pool.Close)
		infra.Repos = repository.NewPostgresSet(pool)
	case config.StoreMemory:
		logger.Warn("using in-memory store, data is lost on restart")
		infra.Repos = repository.NewMemorySet(memory.NewStore())
	default:
		return fail(fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver))
	}
	logger.WithField("driver", cfg.StoreDriver).Info("document store ready")

	// Redis backs rate limiting only; without it limits are off
	if cfg.RedisAddr != "" {
		rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := helpers.PingRedis(ctx, rdb, 3*time.Second); err != nil {
			logger.WithError(err).Warn("redis unreachable, requests will not be rate limited until it recovers")
		}
		closers = append(closers, func() { _ = rdb.Close() })
		infra.Redis = rdb
	}

	if cfg.GCSCoverBucket != "" {
		gcsClient, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			logger.WithError(err).Warn("GCS unavailable, cover uploads disabled")
		} else {
			closers = append(closers, func() { _ = gcsClient.Close() })
			var public []string
			if cfg.GCSPublicBucket {
				public = append(public, cfg.GCSCoverBucket)
			}
			infra.Storage = storage.NewGCSStorage(gcsClient, public...)
		}
	}

	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		if idx, err := connectSearch(ctx, cfg, addrs); err != nil {
			logger.WithError(err).Warn("elasticsearch unavailable, book search falls back to title match")
		} else {
			infra.Index = idx
		}
	}

	infra.Mailer, closers = chooseMailer(cfg, logger, closers)
	return infra, cleanup, nil
}

func connectSearch(ctx context.Context, cfg *config.Config, addrs []string) (application.BookIndexer, error) {
	es, err := helpers.NewESClient(helpers.ESOptions{
		Addrs:    addrs,
		Username: cfg.ElasticsearchUser,
		Password: cfg.ElasticsearchPass,
	})
	if err != nil {
		return nil, err
	}
	if err := helpers.PingES(ctx, es, 3*time.Second); err != nil {
		return nil, err
	}
	idx := search.NewBookIndex(es, cfg.ESBooksIndex)
	if err := idx.EnsureIndex(ctx); err != nil {
		return nil, err
	}
	return idx, nil
}

// chooseMailer queues mail for the email worker when RabbitMQ is configured,
// sends through Mailgun directly otherwise, and only logs when sending is off
func chooseMailer(cfg *config.Config, logger *logrus.Logger, closers []func()) (application.Mailer, []func()) {
	if !cfg.MailSendEnabled {
		return mailer.NewLogMailer(logger), closers
	}
	if cfg.RabbitMQURL != "" {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err == nil {
			logger.WithField("queue", cfg.RabbitMQEmailQueue).Info("emails are queued for the worker")
			return mailer.NewQueueMailer(pub), append(closers, pub.Close)
		}
		logger.WithError(err).Warn("rabbitmq unavailable, sending email directly")
	}
	if cfg.MailgunDomain != "" && cfg.MailgunAPIKey != "" {
		return mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender), closers
	}
	logger.Warn("mailgun is not configured, emails are only logged")
	return mailer.NewLogMailer(logger), closers
}
