package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/bookstore-backend/internal/interface/http"
	"github.com/oksasatya/bookstore-backend/internal/interface/middleware"
)

// BookModule serves the book catalog and the favorites of the signed in user
type BookModule struct {
	Handler *handlers.BookHandler
	Guard   Guard
}

func NewBookModule(h *handlers.BookHandler, g Guard) *BookModule {
	return &BookModule{Handler: h, Guard: g}
}

func (m *BookModule) Register(rg *gin.RouterGroup) {
	read := m.Guard.PerMinute("books:read", 240, middleware.KeyByIP())
	rg.GET("/books", read, m.Handler.List)
	rg.GET("/books/search", read, m.Handler.Search)
	rg.GET("/books/:id", read, m.Handler.Get)

	auth := m.Guard.Protected(rg)
	{
		auth.POST("/books", m.Handler.Create)
		auth.POST("/books/with-cover", m.Guard.PerMinute("cover", 20, middleware.KeyByUserID()), m.Handler.CreateWithCover)
		auth.PUT("/books/:id", m.Handler.Update)
		auth.PUT("/books/:id/cover", m.Guard.PerMinute("cover", 20, middleware.KeyByUserID()), m.Handler.UpdateCover)
		auth.DELETE("/books/:id", m.Handler.Delete)

		auth.GET("/favorites", m.Handler.ListFavorites)
		auth.POST("/books/:id/favorite", m.Handler.AddFavorite)
		auth.DELETE("/books/:id/favorite", m.Handler.RemoveFavorite)
	}
}
