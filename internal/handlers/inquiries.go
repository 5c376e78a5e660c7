package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-backend/internal/services"
)

type submitInquiryResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// updateInquiryRequest keeps reviewed loosely typed: only a JSON boolean changes it.
type updateInquiryRequest struct {
	Reviewed any `json:"reviewed"`
}

func (h *Handler) SubmitInquiry(c *gin.Context) {
	var req services.InquirySubmission
	if err := bindOptionalJSON(c, &req); err != nil {
		h.rejectBody(c, err, "Invalid request body")
		return
	}
	id, err := h.inquiries.Submit(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, submitInquiryResponse{Message: "Inquiry submitted successfully", ID: id.Hex()})
}

func (h *Handler) ListInquiries(c *gin.Context) {
	out, err := h.inquiries.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) GetInquiry(c *gin.Context) {
	inq, err := h.inquiries.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, inq)
}

func (h *Handler) UpdateInquiry(c *gin.Context) {
	var req updateInquiryRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		h.rejectBody(c, err, "Invalid request body")
		return
	}
	var reviewed *bool
	if b, ok := req.Reviewed.(bool); ok {
		reviewed = &b
	}
	inq, err := h.inquiries.SetReviewed(c.Request.Context(), c.Param("id"), reviewed)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, inq)
}
