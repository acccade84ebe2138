package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/bookstore-backend/internal/interface/middleware"
)

// CatalogRoutes is implemented by the author, publisher and category handlers
type CatalogRoutes interface {
	List(c *gin.Context)
	Get(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

// CatalogModule mounts CRUD for one catalog resource under /<path>.
// Reads are public, writes need a token.
type CatalogModule struct {
	Path    string
	Handler CatalogRoutes
	Guard   Guard
}

func NewCatalogModule(path string, h CatalogRoutes, g Guard) *CatalogModule {
	return &CatalogModule{Path: path, Handler: h, Guard: g}
}

func (m *CatalogModule) Register(rg *gin.RouterGroup) {
	base := "/" + m.Path
	read := m.Guard.PerMinute(m.Path+":read", 240, middleware.KeyByIP())
	rg.GET(base, read, m.Handler.List)
	rg.GET(base+"/:id", read, m.Handler.Get)

	auth := m.Guard.Protected(rg)
	{
		auth.POST(base, m.Handler.Create)
		auth.PUT(base+"/:id", m.Handler.Update)
		auth.DELETE(base+"/:id", m.Handler.Delete)
	}
}
