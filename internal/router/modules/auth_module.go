package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/bookstore-backend/internal/interface/http"
	"github.com/oksasatya/bookstore-backend/internal/interface/middleware"
)

// AuthModule serves registration, login and email confirmation
// Public: POST /user/register, POST /auth/login, GET /auth/verify-email
// Protected: POST /auth/logout, POST /auth/verify/resend, GET /profile
type AuthModule struct {
	Handler *handlers.AuthHandler
	Guard   Guard
}

func NewAuthModule(h *handlers.AuthHandler, g Guard) *AuthModule {
	return &AuthModule{Handler: h, Guard: g}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	registerLimiter := m.Guard.PerMinute("register", 10, middleware.KeyByIP())
	loginLimiter := m.Guard.PerMinute("login", 10, middleware.KeyByIP())
	verifyLimiter := m.Guard.PerMinute("verify", 30, middleware.KeyByIPAndPath())

	rg.POST("/user/register", registerLimiter, m.Handler.Register)
	rg.POST("/auth/login", loginLimiter, m.Handler.Login)
	rg.GET("/auth/verify-email", verifyLimiter, m.Handler.VerifyEmail)

	auth := m.Guard.Protected(rg)
	{
		auth.POST("/auth/logout", m.Handler.Logout)
		auth.POST("/auth/verify/resend", m.Guard.PerMinute("resend", 5, middleware.KeyByUserID()), m.Handler.ResendVerification)
		auth.GET("/profile", m.Handler.Profile)
	}
}
