package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wickandwax/storefront/internal/domain/order"
	"github.com/wickandwax/storefront/internal/form"
)

var checkoutSchema = form.Schema{
	Resource: "checkout",
	Fields: []form.Field{
		{Name: "paymentMethod", Kind: form.KindString, Required: true, Enum: []string{"card", "cod"}},
		{Name: "subtotal", Kind: form.KindDecimal, Required: true},
	},
}

var addressSchema = form.Schema{
	Resource: "shippingAddress",
	Fields: []form.Field{
		{Name: "fullName", Kind: form.KindString, Required: true, MaxLen: 160},
		{Name: "line1", Kind: form.KindString, Required: true, MaxLen: 200},
		{Name: "line2", Kind: form.KindString, MaxLen: 200},
		{Name: "city", Kind: form.KindString, Required: true, MaxLen: 120},
		{Name: "postalCode", Kind: form.KindString, Required: true, MaxLen: 20},
		{Name: "country", Kind: form.KindString, Required: true, MaxLen: 80},
	},
}

func (h *Handler) checkout(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}

	var payload map[string]any
	if !bindJSON(c, &payload) {
		return
	}
	if errs := checkoutSchema.Validate(payload); errs != nil {
		respondDomainError(c, errs)
		return
	}
	addr, ok := payload["shippingAddress"].(map[string]any)
	if !ok {
		respondDomainError(c, form.Errors{"shippingAddress": "is required"})
		return
	}
	if errs := addressSchema.Validate(addr); errs != nil {
		respondDomainError(c, errs)
		return
	}

	paymentMethod, _ := payload["paymentMethod"].(string)

	subtotal, err := decimalField(payload, "subtotal")
	if err != nil {
		respondDomainError(c, err)
		return
	}

	placed, err := h.orders.Checkout(c.Request.Context(), order.CheckoutRequest{
		UserID:          uid,
		PaymentMethod:   paymentMethod,
		ShippingAddress: addressFromPayload(addr),
		ClientSubtotal:  subtotal,
		IdempotencyKey:  c.GetHeader("Idempotency-Key"),
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, placed)
}

func addressFromPayload(payload map[string]any) order.Address {
	var a order.Address
	a.FullName, _ = payload["fullName"].(string)
	a.Line1, _ = payload["line1"].(string)
	a.Line2, _ = payload["line2"].(string)
	a.City, _ = payload["city"].(string)
	a.PostalCode, _ = payload["postalCode"].(string)
	a.Country, _ = payload["country"].(string)
	return a
}

func (h *Handler) listUserOrders(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	orders, err := h.orders.ListByUser(c.Request.Context(), uid)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// getOrder returns a single order. Customers can only read their own;
// a mismatched owner is indistinguishable from a missing order.
func (h *Handler) getOrder(c *gin.Context) {
	uid, ok := requireUser(c)
	if !ok {
		return
	}
	o, err := h.orders.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	if o.UserID != uid {
		respondError(c, http.StatusNotFound, order.ErrNotFound.Error())
		return
	}
	c.JSON(http.StatusOK, o)
}

// --- Admin ---

func (h *Handler) listOrders(c *gin.Context) {
	orders, err := h.orders.List(c.Request.Context())
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

type updateOrderStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) updateOrderStatus(c *gin.Context) {
	var req updateOrderStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	next := order.Status(req.Status)
	if !next.Valid() {
		respondDomainError(c, form.Errors{"status": "must be one of pending, processing, shipped, completed, cancelled"})
		return
	}

	o, err := h.orders.UpdateStatus(c.Request.Context(), c.Param("id"), next)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}
