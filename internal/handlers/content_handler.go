package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/diagnosia-api/internal/models"
)

const livenessMessage = "NexGen Diagnosia is running"

func (h *Handler) Root(c *gin.Context) {
	c.String(http.StatusOK, livenessMessage)
}

// Health pings the store and reports the runtime environment.
func (h *Handler) Health(c *gin.Context) {
	env := "development"
	if h.Production {
		env = "production"
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "env": env, "error": "store unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "env": env})
}

func (h *Handler) Divisions(c *gin.Context) {
	divisions, err := h.Store.Locations.Divisions(c.Request.Context())
	if err != nil {
		fail(c, err, "Failed to retrieve divisions")
		return
	}
	c.JSON(http.StatusOK, divisions)
}

func (h *Handler) Districts(c *gin.Context) {
	districts, err := h.Store.Locations.Districts(c.Request.Context())
	if err != nil {
		fail(c, err, "Failed to retrieve districts")
		return
	}
	c.JSON(http.StatusOK, districts)
}

func (h *Handler) Upazilas(c *gin.Context) {
	upazilas, err := h.Store.Locations.Upazilas(c.Request.Context())
	if err != nil {
		fail(c, err, "Failed to retrieve upazilas")
		return
	}
	c.JSON(http.StatusOK, upazilas)
}

// Content returns a handler serving one marketing collection verbatim.
func (h *Handler) Content(kind models.ContentKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		docs, err := h.Store.Content.List(c.Request.Context(), kind)
		if err != nil {
			fail(c, err, "Failed to retrieve "+string(kind))
			return
		}
		c.JSON(http.StatusOK, docs)
	}
}
