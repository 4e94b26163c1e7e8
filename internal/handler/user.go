package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/wickandwax/storefront/internal/domain/user"
	"github.com/wickandwax/storefront/internal/form"
)

var userSchema = form.Schema{
	Resource: "user",
	Fields: []form.Field{
		{Name: "email", Kind: form.KindString, Required: true, MaxLen: 254},
		{Name: "name", Kind: form.KindString, Required: true, MaxLen: 160},
		{Name: "role", Kind: form.KindString, Required: true, Enum: []string{user.RoleCustomer, user.RoleAdmin}},
	},
}

func userFromPayload(id string, payload map[string]any) *user.User {
	u := &user.User{ID: id}
	u.Email, _ = payload["email"].(string)
	u.Name, _ = payload["name"].(string)
	role, _ := payload["role"].(string)
	u.Role = role
	return u
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) getUser(c *gin.Context) {
	u, err := h.users.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) createUser(c *gin.Context) {
	var payload map[string]any
	if !bindJSON(c, &payload) {
		return
	}
	if errs := userSchema.Validate(payload); errs != nil {
		respondDomainError(c, errs)
		return
	}

	u := userFromPayload(uuid.New().String(), payload)
	if err := h.users.Create(c.Request.Context(), u); err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (h *Handler) updateUser(c *gin.Context) {
	var payload map[string]any
	if !bindJSON(c, &payload) {
		return
	}
	if errs := userSchema.Validate(payload); errs != nil {
		respondDomainError(c, errs)
		return
	}

	u := userFromPayload(c.Param("id"), payload)
	if err := h.users.Update(c.Request.Context(), u); err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) deleteUser(c *gin.Context) {
	if err := h.users.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
