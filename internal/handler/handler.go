// Package handler exposes the storefront and admin REST API over gin.
// Handlers translate between HTTP and the domain services; every domain
// error is mapped to a JSON {code, message} envelope here and nowhere else.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/wickandwax/storefront/internal/domain/cart"
	"github.com/wickandwax/storefront/internal/domain/catalog"
	"github.com/wickandwax/storefront/internal/domain/order"
	"github.com/wickandwax/storefront/internal/domain/page"
	"github.com/wickandwax/storefront/internal/domain/settings"
	"github.com/wickandwax/storefront/internal/domain/user"
	"github.com/wickandwax/storefront/internal/form"
)

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// ImageBaseURL is prepended to relative product image paths in
	// responses. When empty, paths are returned as stored.
	ImageBaseURL string
}

// Handler carries the domain dependencies for all routes.
type Handler struct {
	cfg        Config
	products   catalog.Repository
	categories catalog.CategoryRepository
	carts      *cart.Service
	orders     *order.Service
	settings   *settings.Service
	pages      page.Repository
	users      user.Repository
}

// New constructs a Handler with the required domain dependencies.
func New(
	cfg Config,
	products catalog.Repository,
	categories catalog.CategoryRepository,
	carts *cart.Service,
	orders *order.Service,
	settingsSvc *settings.Service,
	pages page.Repository,
	users user.Repository,
) *Handler {
	return &Handler{
		cfg:        cfg,
		products:   products,
		categories: categories,
		carts:      carts,
		orders:     orders,
		settings:   settingsSvc,
		pages:      pages,
		users:      users,
	}
}

// Register mounts all routes on the engine. Admin routes are wrapped with
// the given auth middleware.
func (h *Handler) Register(r *gin.Engine, adminAuth gin.HandlerFunc) {
	api := r.Group("/api")

	// Storefront.
	api.GET("/products", h.listProducts)
	api.GET("/products/featured", h.listFeaturedProducts)
	api.GET("/products/:id", h.getProduct)
	api.GET("/products/:id/scents", h.listProductScents)
	api.GET("/products/:id/colors", h.listProductColors)
	api.GET("/categories", h.listCategories)
	api.GET("/categories/:id", h.getCategory)

	api.GET("/cart", h.getCart)
	api.POST("/cart/items", h.addCartItem)
	api.PUT("/cart/items/:id", h.updateCartItem)
	api.DELETE("/cart/items/:id", h.removeCartItem)

	api.POST("/orders", h.checkout)
	api.GET("/orders/user", h.listUserOrders)
	api.GET("/orders/:id", h.getOrder)

	api.GET("/settings/shipping", h.getShippingSettings)
	api.GET("/settings/:group", h.getSettingsGroup)
	api.GET("/pages/:type", h.getPage)

	// Back office.
	admin := api.Group("/admin", adminAuth)
	admin.POST("/products", h.createProduct)
	admin.PUT("/products/:id", h.updateProduct)
	admin.DELETE("/products/:id", h.deleteProduct)
	admin.POST("/products/:id/scents", h.createScent)
	admin.DELETE("/scents/:id", h.deleteScent)
	admin.POST("/products/:id/colors", h.createColor)
	admin.DELETE("/colors/:id", h.deleteColor)

	admin.POST("/categories", h.createCategory)
	admin.PUT("/categories/:id", h.updateCategory)
	admin.DELETE("/categories/:id", h.deleteCategory)

	admin.GET("/orders", h.listOrders)
	admin.PUT("/orders/:id/status", h.updateOrderStatus)

	admin.POST("/settings/:group", h.setSettingsGroup)
	admin.PUT("/settings/shipping/:key", h.setShippingSetting)
	admin.POST("/pages/:type", h.upsertPage)

	admin.GET("/users", h.listUsers)
	admin.GET("/users/:id", h.getUser)
	admin.POST("/users", h.createUser)
	admin.PUT("/users/:id", h.updateUser)
	admin.DELETE("/users/:id", h.deleteUser)
}

// userID resolves the cart owner. The storefront sends the X-User-ID header
// on every cart and order call; a userId query parameter is accepted as a
// fallback.
func userID(c *gin.Context) string {
	if id := c.GetHeader("X-User-ID"); id != "" {
		return id
	}
	return c.Query("userId")
}

// requireUser aborts with 400 when no session user header is present.
func requireUser(c *gin.Context) (string, bool) {
	id := userID(c)
	if id == "" {
		respondError(c, http.StatusBadRequest, "missing X-User-ID header")
		return "", false
	}
	return id, true
}

func respondError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"code": code, "message": message})
}

// respondDomainError maps the error taxonomy to HTTP statuses:
// validation 400, missing resources 404, conflicts 409, the rest 500.
func respondDomainError(c *gin.Context, err error) {
	var fieldErrs form.Errors
	if errors.As(err, &fieldErrs) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "validation failed",
			"fields":  fieldErrs,
		})
		return
	}

	switch {
	case errors.Is(err, cart.ErrQuantityRange):
		respondError(c, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, catalog.ErrCategoryNotFound),
		errors.Is(err, catalog.ErrVariantNotFound),
		errors.Is(err, cart.ErrItemNotFound),
		errors.Is(err, order.ErrNotFound),
		errors.Is(err, page.ErrNotFound),
		errors.Is(err, page.ErrUnknownType),
		errors.Is(err, settings.ErrNotFound),
		errors.Is(err, user.ErrNotFound):
		respondError(c, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, order.ErrCheckoutInFlight),
		errors.Is(err, user.ErrEmailTaken):
		respondError(c, http.StatusConflict, err.Error())
		return
	}

	var (
		stockErr      *cart.InsufficientStockError
		missingVarErr *cart.MissingVariantError
		invalidVarErr *cart.InvalidVariantError
		reconErr      *order.ReconciliationError
		transErr      *order.InvalidTransitionError
		oosErr        *order.OutOfStockError
	)
	switch {
	case errors.As(err, &stockErr),
		errors.As(err, &missingVarErr),
		errors.As(err, &invalidVarErr),
		errors.As(err, &reconErr),
		errors.As(err, &transErr),
		errors.As(err, &oosErr):
		respondError(c, http.StatusConflict, err.Error())
		return
	}

	zctx.From(c.Request.Context()).Error("request failed",
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	respondError(c, http.StatusInternalServerError, err.Error())
}

// bindJSON decodes the request body, turning malformed JSON into a 400.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// decimalField reads a decimal from a bound JSON payload. The schema has
// already vetted the field, but a parse failure still surfaces as a field
// error rather than trusting that to hold forever.
func decimalField(payload map[string]any, name string) (decimal.Decimal, error) {
	switch v := payload[name].(type) {
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Decimal{}, form.Errors{name: "must be a decimal number"}
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(v), nil
	}
	return decimal.Decimal{}, nil
}

// imageURL prefixes relative paths with the configured image base URL.
func (h *Handler) imageURL(path string) string {
	if path == "" || h.cfg.ImageBaseURL == "" {
		return path
	}
	if len(path) >= 4 && path[:4] == "http" {
		return path
	}
	return h.cfg.ImageBaseURL + "/" + path
}
