package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-backend/internal/middleware"
	"storefront-backend/internal/services"
)

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) GetUser(c *gin.Context) {
	user, err := h.users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req services.NewUser
	if err := bindOptionalJSON(c, &req); err != nil {
		h.rejectBody(c, err, "Invalid request body")
		return
	}
	user, err := h.users.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *Handler) UpdateUser(c *gin.Context) {
	var req services.UserPatch
	if err := bindOptionalJSON(c, &req); err != nil {
		h.rejectBody(c, err, "Invalid request body")
		return
	}
	user, err := h.users.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) DeleteUser(c *gin.Context) {
	caller, _ := middleware.CurrentUser(c)
	if err := h.users.Delete(c.Request.Context(), caller.ID, c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "User deleted"})
}
