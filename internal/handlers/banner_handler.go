package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CreateBanner stores a banner. New banners start inactive; use ActivateBanner.
func (h *Handler) CreateBanner(c *gin.Context) {
	banner, ok := bindDocument(c)
	if !ok {
		return
	}
	banner["isActive"] = false

	result, err := h.Store.Banners.Create(c.Request.Context(), banner)
	if err != nil {
		fail(c, err, "Failed to create banner")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) ListBanners(c *gin.Context) {
	banners, err := h.Store.Banners.List(c.Request.Context())
	if err != nil {
		fail(c, err, "Failed to retrieve banners")
		return
	}
	c.JSON(http.StatusOK, banners)
}

func (h *Handler) ActiveBanner(c *gin.Context) {
	banner, err := h.Store.Banners.Active(c.Request.Context())
	if err != nil {
		fail(c, err, "Failed to retrieve active banner")
		return
	}
	c.JSON(http.StatusOK, banner)
}

func (h *Handler) ActivateBanner(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	result, err := h.Banners.Activate(c.Request.Context(), id)
	if err != nil {
		fail(c, err, "Failed to activate banner")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) DeleteBanner(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	result, err := h.Store.Banners.Delete(c.Request.Context(), id)
	if err != nil {
		fail(c, err, "Failed to delete banner")
		return
	}
	c.JSON(http.StatusOK, result)
}
