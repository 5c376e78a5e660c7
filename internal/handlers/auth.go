package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-backend/internal/models"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type meResponse struct {
	User models.PublicUser `json:"user"`
}

func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		h.rejectBody(c, err, "Invalid request body")
		return
	}
	session, err := h.identity.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		h.rejectBody(c, err, "Invalid request body")
		return
	}
	session, err := h.identity.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *Handler) Me(c *gin.Context) {
	user, err := h.identity.Me(c.Request.Context(), c.GetHeader("Authorization"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, meResponse{User: user})
}
