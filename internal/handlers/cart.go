package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-backend/internal/cart"
	"storefront-backend/internal/middleware"
	"storefront-backend/internal/models"
)

type cartResponse struct {
	Items   []models.CartItem `json:"items"`
	Message string            `json:"message,omitempty"`
}

type mergeRequest struct {
	GuestItems json.RawMessage `json:"guestItems"`
}

type syncRequest struct {
	Items json.RawMessage `json:"items"`
}

type addRequest struct {
	Product  *models.CartItem `json:"product"`
	Quantity *int             `json:"quantity"`
}

func (h *Handler) GetCart(c *gin.Context) {
	uid, _ := middleware.UserID(c)
	items, err := h.cart.Get(c.Request.Context(), uid)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResponse{Items: items})
}

func (h *Handler) MergeCart(c *gin.Context) {
	var req mergeRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		h.rejectBody(c, err, "Invalid request body")
		return
	}
	uid, _ := middleware.UserID(c)
	items, err := h.cart.Merge(c.Request.Context(), uid, cart.DecodeItems(rawList(req.GuestItems)))
	h.respondCart(c, items, err, "Cart merged successfully")
}

func (h *Handler) SyncCart(c *gin.Context) {
	var req syncRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		h.rejectBody(c, err, "Invalid request body")
		return
	}
	raw, ok := arrayField(req.Items)
	if !ok {
		h.badRequest(c, "Invalid items")
		return
	}
	uid, _ := middleware.UserID(c)
	items, err := h.cart.Sync(c.Request.Context(), uid, cart.DecodeItems(raw))
	h.respondCart(c, items, err, "Cart synced successfully")
}

func (h *Handler) AddToCart(c *gin.Context) {
	var req addRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		h.rejectBody(c, err, "Invalid product")
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	uid, _ := middleware.UserID(c)
	items, err := h.cart.Add(c.Request.Context(), uid, req.Product, quantity)
	h.respondCart(c, items, err, "Item added to cart")
}

func (h *Handler) RemoveFromCart(c *gin.Context) {
	uid, _ := middleware.UserID(c)
	items, err := h.cart.Remove(c.Request.Context(), uid, c.Param("productId"))
	h.respondCart(c, items, err, "Item removed from cart")
}

func (h *Handler) ClearCart(c *gin.Context) {
	uid, _ := middleware.UserID(c)
	items, err := h.cart.Clear(c.Request.Context(), uid)
	h.respondCart(c, items, err, "Cart cleared")
}

func (h *Handler) respondCart(c *gin.Context, items []models.CartItem, err error, msg string) {
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResponse{Items: items, Message: msg})
}
