package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/wickandwax/storefront/internal/domain/catalog"
	"github.com/wickandwax/storefront/internal/form"
)

func (h *Handler) listCategories(c *gin.Context) {
	categories, err := h.categories.List(c.Request.Context())
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *Handler) getCategory(c *gin.Context) {
	cat, err := h.categories.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

var categorySchema = form.Schema{
	Resource: "category",
	Fields: []form.Field{
		{Name: "name", Kind: form.KindString, Required: true, MaxLen: 120},
		{Name: "slug", Kind: form.KindString, Required: true, MaxLen: 120},
		{Name: "description", Kind: form.KindString, MaxLen: 2000},
	},
}

func categoryFromPayload(id string, payload map[string]any) *catalog.Category {
	cat := &catalog.Category{ID: id}
	cat.Name, _ = payload["name"].(string)
	cat.Slug, _ = payload["slug"].(string)
	cat.Description, _ = payload["description"].(string)
	return cat
}

func (h *Handler) createCategory(c *gin.Context) {
	var payload map[string]any
	if !bindJSON(c, &payload) {
		return
	}
	if errs := categorySchema.Validate(payload); errs != nil {
		respondDomainError(c, errs)
		return
	}

	cat := categoryFromPayload(uuid.New().String(), payload)
	if err := h.categories.Create(c.Request.Context(), cat); err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (h *Handler) updateCategory(c *gin.Context) {
	var payload map[string]any
	if !bindJSON(c, &payload) {
		return
	}
	if errs := categorySchema.Validate(payload); errs != nil {
		respondDomainError(c, errs)
		return
	}

	cat := categoryFromPayload(c.Param("id"), payload)
	if err := h.categories.Update(c.Request.Context(), cat); err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *Handler) deleteCategory(c *gin.Context) {
	if err := h.categories.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
