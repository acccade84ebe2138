package handlers

import (
	"encoding/json"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bookstore-backend/internal/application"
	repo "github.com/oksasatya/bookstore-backend/internal/domain/repository"
	"github.com/oksasatya/bookstore-backend/pkg/response"
)

// Multipart field names of the create-with-cover form
const (
	coverFileField = "CoverImageFile"
	metaDataField  = "MetaData"
)

type BookHandler struct {
	Svc       *application.BookService
	Favorites *application.FavoriteService
	Logger    logrus.FieldLogger
}

func NewBookHandler(svc *application.BookService, favorites *application.FavoriteService, logger logrus.FieldLogger) *BookHandler {
	return &BookHandler{Svc: svc, Favorites: favorites, Logger: logger}
}

// List filters by ?title=, ?authorId=, ?categoryId= and ?publisherId=
func (h *BookHandler) List(c *gin.Context) {
	books, err := h.Svc.List(c.Request.Context(), repo.BookQuery{
		Title:       c.Query("title"),
		AuthorID:    c.Query("authorId"),
		CategoryID:  c.Query("categoryId"),
		PublisherID: c.Query("publisherId"),
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.List(c, books, "books")
}

func (h *BookHandler) Search(c *gin.Context) {
	books, err := h.Svc.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.List(c, books, "books")
}

func (h *BookHandler) Get(c *gin.Context) {
	b, err := h.Svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, b, "book", nil)
}

func (h *BookHandler) Create(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	b, err := h.Svc.Create(c.Request.Context(), req.toInput())
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, b, "book created", nil)
}

// CreateWithCover accepts a multipart form with the cover file and the book as JSON metadata
func (h *BookHandler) CreateWithCover(c *gin.Context) {
	var req bookRequest
	if err := json.Unmarshal([]byte(c.PostForm(metaDataField)), &req); err != nil {
		badRequest(c, err)
		return
	}
	if err := binding.Validator.ValidateStruct(&req); err != nil {
		badRequest(c, err)
		return
	}
	fh, err := c.FormFile(coverFileField)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "cover image file is required", nil)
		return
	}
	upload, closeFn, err := openCover(fh)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	defer closeFn()

	b, err := h.Svc.CreateWithCover(c.Request.Context(), req.toInput(), upload)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, b, "book created", nil)
}

func (h *BookHandler) UpdateCover(c *gin.Context) {
	fh, err := c.FormFile(coverFileField)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "cover image file is required", nil)
		return
	}
	upload, closeFn, err := openCover(fh)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	defer closeFn()

	b, err := h.Svc.UpdateCover(c.Request.Context(), c.Param("id"), upload)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, b, "cover updated", nil)
}

func openCover(fh *multipart.FileHeader) (*application.CoverUpload, func(), error) {
	f, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}
	return &application.CoverUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	}, func() { _ = f.Close() }, nil
}

func (h *BookHandler) Update(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	b, err := h.Svc.Update(c.Request.Context(), c.Param("id"), req.toInput())
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, b, "book updated", nil)
}

func (h *BookHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.NoContent(c)
}

func (h *BookHandler) AddFavorite(c *gin.Context) {
	if err := h.Favorites.AddFavorite(c.Request.Context(), c.GetString("userID"), c.Param("id")); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.NoContent(c)
}

func (h *BookHandler) RemoveFavorite(c *gin.Context) {
	if err := h.Favorites.RemoveFavorite(c.Request.Context(), c.GetString("userID"), c.Param("id")); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.NoContent(c)
}

func (h *BookHandler) ListFavorites(c *gin.Context) {
	books, err := h.Favorites.ListFavorites(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.List(c, books, "favorites")
}
