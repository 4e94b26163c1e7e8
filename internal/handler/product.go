package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wickandwax/storefront/internal/domain/catalog"
	"github.com/wickandwax/storefront/internal/form"
)

// productResponse is the wire shape of a product. Price travels as a
// decimal string.
type productResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	Price           string `json:"price"`
	Stock           int    `json:"stock"`
	HasScentOptions bool   `json:"hasScentOptions"`
	HasColorOptions bool   `json:"hasColorOptions"`
	ImageURL        string `json:"imageUrl"`
	CategoryID      string `json:"categoryId,omitempty"`
	Featured        bool   `json:"featured"`
}

func (h *Handler) toProductResponse(p catalog.Product) productResponse {
	return productResponse{
		ID:              p.ID,
		Name:            p.Name,
		Description:     p.Description,
		Price:           p.Price.StringFixed(2),
		Stock:           p.Stock,
		HasScentOptions: p.HasScentOptions,
		HasColorOptions: p.HasColorOptions,
		ImageURL:        h.imageURL(p.ImageURL),
		CategoryID:      p.CategoryID,
		Featured:        p.Featured,
	}
}

func (h *Handler) toProductResponses(products []catalog.Product) []productResponse {
	out := make([]productResponse, len(products))
	for i, p := range products {
		out[i] = h.toProductResponse(p)
	}
	return out
}

// parseProductFilter reads the catalog filter from query parameters.
// Unparseable price bounds are ignored rather than failing the listing.
func parseProductFilter(c *gin.Context) catalog.Filter {
	f := catalog.Filter{
		CategoryID: c.Query("category"),
		Query:      c.Query("q"),
		Sort:       catalog.Sort(c.Query("sort")),
	}
	if v, err := decimal.NewFromString(c.Query("minPrice")); err == nil {
		f.MinPrice = &v
	}
	if v, err := decimal.NewFromString(c.Query("maxPrice")); err == nil {
		f.MaxPrice = &v
	}
	return f
}

func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.products.List(c.Request.Context())
	if err != nil {
		respondDomainError(c, err)
		return
	}
	filtered := parseProductFilter(c).Apply(products)
	c.JSON(http.StatusOK, h.toProductResponses(filtered))
}

func (h *Handler) listFeaturedProducts(c *gin.Context) {
	products, err := h.products.ListFeatured(c.Request.Context())
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.toProductResponses(products))
}

func (h *Handler) getProduct(c *gin.Context) {
	p, err := h.products.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.toProductResponse(*p))
}

func (h *Handler) listProductScents(c *gin.Context) {
	// A missing product 404s rather than returning an empty list.
	if _, err := h.products.GetByID(c.Request.Context(), c.Param("id")); err != nil {
		respondDomainError(c, err)
		return
	}
	scents, err := h.products.ListScents(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, scents)
}

func (h *Handler) listProductColors(c *gin.Context) {
	if _, err := h.products.GetByID(c.Request.Context(), c.Param("id")); err != nil {
		respondDomainError(c, err)
		return
	}
	colors, err := h.products.ListColors(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, colors)
}

// --- Admin ---

func minBound(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

var productSchema = form.Schema{
	Resource: "product",
	Fields: []form.Field{
		{Name: "name", Kind: form.KindString, Required: true, MaxLen: 160},
		{Name: "description", Kind: form.KindString, MaxLen: 4000},
		{Name: "price", Kind: form.KindDecimal, Required: true, Min: minBound("0.01")},
		{Name: "stock", Kind: form.KindInt, Required: true, Min: minBound("0")},
		{Name: "hasScentOptions", Kind: form.KindBool},
		{Name: "hasColorOptions", Kind: form.KindBool},
		{Name: "imageUrl", Kind: form.KindString, MaxLen: 500},
		{Name: "categoryId", Kind: form.KindString, MaxLen: 64},
		{Name: "featured", Kind: form.KindBool},
	},
}

// productFromPayload builds a product from a schema-validated payload.
func productFromPayload(id string, payload map[string]any) (*catalog.Product, error) {
	p := &catalog.Product{ID: id}
	p.Name, _ = payload["name"].(string)
	p.Description, _ = payload["description"].(string)
	price, err := decimalField(payload, "price")
	if err != nil {
		return nil, err
	}
	p.Price = price
	if v, ok := payload["stock"].(float64); ok {
		p.Stock = int(v)
	}
	p.HasScentOptions, _ = payload["hasScentOptions"].(bool)
	p.HasColorOptions, _ = payload["hasColorOptions"].(bool)
	p.ImageURL, _ = payload["imageUrl"].(string)
	p.CategoryID, _ = payload["categoryId"].(string)
	p.Featured, _ = payload["featured"].(bool)
	return p, nil
}

func (h *Handler) createProduct(c *gin.Context) {
	var payload map[string]any
	if !bindJSON(c, &payload) {
		return
	}
	if errs := productSchema.Validate(payload); errs != nil {
		respondDomainError(c, errs)
		return
	}

	p, err := productFromPayload(uuid.New().String(), payload)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	if err := h.products.Create(c.Request.Context(), p); err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.toProductResponse(*p))
}

func (h *Handler) updateProduct(c *gin.Context) {
	var payload map[string]any
	if !bindJSON(c, &payload) {
		return
	}
	if errs := productSchema.Validate(payload); errs != nil {
		respondDomainError(c, errs)
		return
	}

	p, err := productFromPayload(c.Param("id"), payload)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	if err := h.products.Update(c.Request.Context(), p); err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.toProductResponse(*p))
}

func (h *Handler) deleteProduct(c *gin.Context) {
	if err := h.products.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

var scentSchema = form.Schema{
	Resource: "scent",
	Fields: []form.Field{
		{Name: "name", Kind: form.KindString, Required: true, MaxLen: 80},
	},
}

func (h *Handler) createScent(c *gin.Context) {
	var payload map[string]any
	if !bindJSON(c, &payload) {
		return
	}
	if errs := scentSchema.Validate(payload); errs != nil {
		respondDomainError(c, errs)
		return
	}
	if _, err := h.products.GetByID(c.Request.Context(), c.Param("id")); err != nil {
		respondDomainError(c, err)
		return
	}

	name, _ := payload["name"].(string)
	s := &catalog.Scent{ID: uuid.New().String(), ProductID: c.Param("id"), Name: name}
	if err := h.products.CreateScent(c.Request.Context(), s); err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, s)
}

func (h *Handler) deleteScent(c *gin.Context) {
	if err := h.products.DeleteScent(c.Request.Context(), c.Param("id")); err != nil {
		respondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

var colorSchema = form.Schema{
	Resource: "color",
	Fields: []form.Field{
		{Name: "name", Kind: form.KindString, Required: true, MaxLen: 80},
		{Name: "hex", Kind: form.KindString, MaxLen: 9},
	},
}

func (h *Handler) createColor(c *gin.Context) {
	var payload map[string]any
	if !bindJSON(c, &payload) {
		return
	}
	if errs := colorSchema.Validate(payload); errs != nil {
		respondDomainError(c, errs)
		return
	}
	if _, err := h.products.GetByID(c.Request.Context(), c.Param("id")); err != nil {
		respondDomainError(c, err)
		return
	}

	name, _ := payload["name"].(string)
	hex, _ := payload["hex"].(string)
	co := &catalog.Color{ID: uuid.New().String(), ProductID: c.Param("id"), Name: name, Hex: hex}
	if err := h.products.CreateColor(c.Request.Context(), co); err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, co)
}

func (h *Handler) deleteColor(c *gin.Context) {
	if err := h.products.DeleteColor(c.Request.Context(), c.Param("id")); err != nil {
		respondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
