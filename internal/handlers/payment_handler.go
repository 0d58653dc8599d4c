package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type PaymentIntentRequest struct {
	Price float64 `json:"price" binding:"required"`
}

// CreatePaymentIntent opens a card payment for the submitted price and returns
// the client secret the browser needs to confirm it.
func (h *Handler) CreatePaymentIntent(c *gin.Context) {
	var req PaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	secret, err := h.Payments.CreateIntent(c.Request.Context(), req.Price)
	if err != nil {
		fail(c, err, "Failed to create payment intent")
		return
	}
	c.JSON(http.StatusOK, gin.H{"clientSecret": secret})
}

// UploadFile pushes the multipart "file" field to object storage.
func (h *Handler) UploadFile(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	file, err := header.Open()
	if err != nil {
		fail(c, err, "Failed to read upload")
		return
	}
	defer file.Close()

	url, err := h.Uploads.Upload(c.Request.Context(), file)
	if err != nil {
		fail(c, err, "Failed to upload file")
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url, "success": true})
}
