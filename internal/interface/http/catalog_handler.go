package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bookstore-backend/internal/application"
	"github.com/oksasatya/bookstore-backend/internal/domain/entity"
	"github.com/oksasatya/bookstore-backend/pkg/response"
)

// CatalogHandler serves CRUD for a name-keyed catalog entity T decoded from request R
type CatalogHandler[T any, R any] struct {
	Svc      *application.CatalogService[T]
	Logger   logrus.FieldLogger
	label    string
	toEntity func(R) *T
}

func NewAuthorHandler(svc *application.AuthorService, logger logrus.FieldLogger) *CatalogHandler[entity.Author, authorRequest] {
	return &CatalogHandler[entity.Author, authorRequest]{Svc: svc, Logger: logger, label: "author", toEntity: authorRequest.toEntity}
}

func NewPublisherHandler(svc *application.PublisherService, logger logrus.FieldLogger) *CatalogHandler[entity.Publisher, publisherRequest] {
	return &CatalogHandler[entity.Publisher, publisherRequest]{Svc: svc, Logger: logger, label: "publisher", toEntity: publisherRequest.toEntity}
}

func NewCategoryHandler(svc *application.CategoryService, logger logrus.FieldLogger) *CatalogHandler[entity.Category, categoryRequest] {
	return &CatalogHandler[entity.Category, categoryRequest]{Svc: svc, Logger: logger, label: "category", toEntity: categoryRequest.toEntity}
}

// List returns all entities, or the one matching ?name=
func (h *CatalogHandler[T, R]) List(c *gin.Context) {
	ctx := c.Request.Context()
	if name := c.Query("name"); name != "" {
		v, err := h.Svc.GetByName(ctx, name)
		if err != nil {
			respondError(c, h.Logger, err)
			return
		}
		response.List(c, []T{*v}, h.label+" list")
		return
	}
	items, err := h.Svc.List(ctx)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.List(c, items, h.label+" list")
}

func (h *CatalogHandler[T, R]) Get(c *gin.Context) {
	v, err := h.Svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, v, h.label, nil)
}

func (h *CatalogHandler[T, R]) Create(c *gin.Context) {
	var req R
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	v := h.toEntity(req)
	if err := h.Svc.Create(c.Request.Context(), v); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, v, h.label+" created", nil)
}

func (h *CatalogHandler[T, R]) Update(c *gin.Context) {
	var req R
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	v := h.toEntity(req)
	if err := h.Svc.Update(c.Request.Context(), c.Param("id"), v); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, v, h.label+" updated", nil)
}

func (h *CatalogHandler[T, R]) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.NoContent(c)
}
