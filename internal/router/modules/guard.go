package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bookstore-backend/internal/interface/middleware"
	"github.com/oksasatya/bookstore-backend/pkg/helpers"
)

// Guard bundles the authentication and rate limiting shared by modules.
// A nil Redis disables rate limiting.
type Guard struct {
	JWT    *helpers.JWTManager
	Redis  *redis.Client
	Logger logrus.FieldLogger
}

// Auth rejects requests without a valid access token
func (g Guard) Auth() gin.HandlerFunc {
	return middleware.Auth(g.JWT, g.Logger)
}

// PerMinute limits each key to max requests per minute in the name bucket
func (g Guard) PerMinute(name string, max int, key middleware.KeyFunc) gin.HandlerFunc {
	return middleware.RateLimit(g.Redis, name, max, time.Minute, key, nil)
}

// Protected returns a group requiring authentication with per-user limits
func (g Guard) Protected(rg *gin.RouterGroup) *gin.RouterGroup {
	auth := rg.Group("/")
	auth.Use(
		g.Auth(),
		g.PerMinute("api", 300, middleware.KeyByIP()),
		g.PerMinute("api", 120, middleware.KeyByUserID()),
	)
	return auth
}
