package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wickandwax/storefront/internal/domain/cart"
	"github.com/wickandwax/storefront/internal/domain/shipping"
)

// cartResponse bundles the cart summary with the shipping quote for
// its subtotal, so the storefront can render both in one round trip.
type cartResponse struct {
	*cart.Summary
	Shipping shipping.Quote `json:"shipping"`
}

func (h *Handler) respondCart(c *gin.Context, userID string) {
	summary, err := h.carts.Summary(c.Request.Context(), userID)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	for i := range summary.Items {
		summary.Items[i].ImageURL = h.imageURL(summary.Items[i].ImageURL)
	}

	rates, err := h.settings.ShippingRates(c.Request.Context())
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResponse{
		Summary:  summary,
		Shipping: shipping.Compute(summary.Subtotal, rates),
	})
}

func (h *Handler) getCart(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	h.respondCart(c, uid)
}

type addCartItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	ScentID   string `json:"scentId"`
	ColorID   string `json:"colorId"`
}

func (h *Handler) addCartItem(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	var req addCartItemRequest
	if !bindJSON(c, &req) {
		return
	}

	if _, err := h.carts.AddItem(c.Request.Context(), uid, cart.AddItemRequest{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		ScentID:   req.ScentID,
		ColorID:   req.ColorID,
	}); err != nil {
		respondDomainError(c, err)
		return
	}
	h.respondCart(c, uid)
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) updateCartItem(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	var req updateCartItemRequest
	if !bindJSON(c, &req) {
		return
	}

	if _, err := h.carts.UpdateQuantity(c.Request.Context(), uid, c.Param("id"), req.Quantity); err != nil {
		respondDomainError(c, err)
		return
	}
	h.respondCart(c, uid)
}

func (h *Handler) removeCartItem(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	if err := h.carts.RemoveItem(c.Request.Context(), uid, c.Param("id")); err != nil {
		respondDomainError(c, err)
		return
	}
	h.respondCart(c, uid)
}
