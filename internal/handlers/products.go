package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-backend/internal/media"
	"storefront-backend/internal/models"
)

func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.catalog.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) GetProduct(c *gin.Context) {
	p, err := h.catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) ProductsByCategory(c *gin.Context) {
	products, err := h.catalog.ByCategory(c.Request.Context(), c.Param("category"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var p models.Product
	if err := bindOptionalJSON(c, &p); err != nil {
		h.rejectBody(c, err, "Invalid request body")
		return
	}
	created, err := h.catalog.Create(c.Request.Context(), p)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateProduct applies only the fields present in the body.
func (h *Handler) UpdateProduct(c *gin.Context) {
	patch, err := readBody(c)
	if err != nil {
		h.rejectBody(c, err, "Invalid request body")
		return
	}
	if len(patch) == 0 {
		patch = []byte("{}")
	}
	p, err := h.catalog.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	if err := h.catalog.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "Product deleted"})
}

// UploadImage accepts a multipart "image" field and stores it in the product bucket.
func (h *Handler) UploadImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, media.MaxImageSize+1<<20)

	fh, err := c.FormFile("image")
	if err != nil {
		h.badRequest(c, "An image file is required in the \"image\" field")
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.badRequest(c, "Could not read uploaded image")
		return
	}
	defer f.Close()

	img, err := h.images.Upload(c.Request.Context(), fh.Filename, fh.Header.Get("Content-Type"), fh.Size, f)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, img)
}
