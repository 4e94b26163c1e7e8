package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/wickandwax/storefront/internal/domain/settings"
	"github.com/wickandwax/storefront/internal/form"
)

// getShippingSettings exposes the shipping configuration to the storefront.
// Values fall back to defaults when unset or malformed, so this never 404s.
func (h *Handler) getShippingSettings(c *gin.Context) {
	rates, err := h.settings.ShippingRates(c.Request.Context())
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"shippingCost":          rates.FlatRate.StringFixed(2),
		"freeShippingThreshold": rates.FreeThreshold.StringFixed(2),
	})
}

func (h *Handler) getSettingsGroup(c *gin.Context) {
	values, err := h.settings.Group(c.Request.Context(), c.Param("group"))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, values)
}

// --- Admin ---

func (h *Handler) setSettingsGroup(c *gin.Context) {
	var values map[string]string
	if !bindJSON(c, &values) {
		return
	}
	if err := h.settings.SetGroup(c.Request.Context(), c.Param("group"), values); err != nil {
		respondDomainError(c, err)
		return
	}
	h.getSettingsGroup(c)
}

// shippingKeys are the settings writable through the shipping endpoint.
var shippingKeys = map[string]bool{
	settings.KeyShippingCost:          true,
	settings.KeyFreeShippingThreshold: true,
}

type setShippingSettingRequest struct {
	Value string `json:"value"`
}

func (h *Handler) setShippingSetting(c *gin.Context) {
	key := c.Param("key")
	if !shippingKeys[key] {
		respondDomainError(c, form.Errors{"key": "must be shippingCost or freeShippingThreshold"})
		return
	}
	var req setShippingSettingRequest
	if !bindJSON(c, &req) {
		return
	}
	if _, err := decimal.NewFromString(req.Value); err != nil {
		respondDomainError(c, form.Errors{"value": "must be a decimal number"})
		return
	}

	if err := h.settings.Set(c.Request.Context(), key, req.Value); err != nil {
		respondDomainError(c, err)
		return
	}
	h.getShippingSettings(c)
}
