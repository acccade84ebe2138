package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/bookstore-backend/internal/container"
	handlers "github.com/oksasatya/bookstore-backend/internal/interface/http"
	"github.com/oksasatya/bookstore-backend/internal/interface/middleware"
	"github.com/oksasatya/bookstore-backend/internal/router/modules"
)

// InitModules builds the handlers from c and adds every module to r
func InitModules(r *Registry, c *container.Container) {
	cfg := c.Config
	guard := modules.Guard{JWT: c.JWT, Redis: c.Redis, Logger: c.Logger}

	r.Add(
		modules.NewAuthModule(handlers.NewAuthHandler(c.Auth, c.Logger, cfg.CookieDomain, cfg.CookieSecure), guard),
		modules.NewUserModule(handlers.NewUserHandler(c.Users, c.Logger), guard),
		modules.NewBookModule(handlers.NewBookHandler(c.Books, c.Favorites, c.Logger), guard),
		modules.NewCatalogModule("authors", handlers.NewAuthorHandler(c.Authors, c.Logger), guard),
		modules.NewCatalogModule("publishers", handlers.NewPublisherHandler(c.Publishers, c.Logger), guard),
		modules.NewCatalogModule("categories", handlers.NewCategoryHandler(c.Categories, c.Logger), guard),
	)
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(c.Redis))
	}
}

// New returns an engine with the global middleware and every module registered
func New(c *container.Container) *gin.Engine {
	cfg := c.Config
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware(), middleware.RealIP())
	if origins := cfg.CORSOrigins(); len(origins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
			ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	if cfg.HTTPLogEnabled {
		r.Use(gin.Logger())
	}

	reg := NewRegistry(r)
	InitModules(reg, c)
	reg.RegisterAll()
	return r
}
