package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wickandwax/storefront/internal/domain/page"
	"github.com/wickandwax/storefront/internal/form"
)

func (h *Handler) getPage(c *gin.Context) {
	pageType := c.Param("type")
	if !page.ValidType(pageType) {
		respondDomainError(c, page.ErrNotFound)
		return
	}
	p, err := h.pages.GetByType(c.Request.Context(), pageType)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

var pageSchema = form.Schema{
	Resource: "page",
	Fields: []form.Field{
		{Name: "title", Kind: form.KindString, Required: true, MaxLen: 200},
		{Name: "content", Kind: form.KindString, Required: true},
	},
}

func (h *Handler) upsertPage(c *gin.Context) {
	pageType := c.Param("type")
	if !page.ValidType(pageType) {
		respondDomainError(c, form.Errors{"type": "must be one of about, contact, blog, shipping-returns"})
		return
	}

	var payload map[string]any
	if !bindJSON(c, &payload) {
		return
	}
	if errs := pageSchema.Validate(payload); errs != nil {
		respondDomainError(c, errs)
		return
	}

	p := &page.Page{Type: pageType}
	p.Title, _ = payload["title"].(string)
	p.Content, _ = payload["content"].(string)
	if err := h.pages.Upsert(c.Request.Context(), p); err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
