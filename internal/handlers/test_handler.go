package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/diagnosia-api/internal/models"
)

func (h *Handler) CreateTest(c *gin.Context) {
	test, ok := bindDocument(c)
	if !ok {
		return
	}

	result, err := h.Store.Tests.Create(c.Request.Context(), test)
	if err != nil {
		fail(c, err, "Failed to create test")
		return
	}
	c.JSON(http.StatusOK, result)
}

// UpdateTest replaces every editable field of the test identified by the body's _id.
func (h *Handler) UpdateTest(c *gin.Context) {
	body, ok := bindDocument(c)
	if !ok {
		return
	}
	id, _ := body["_id"].(string)

	result, err := h.Store.Tests.Update(c.Request.Context(), id, pick(body, models.TestFields))
	if err != nil {
		fail(c, err, "Failed to update test")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) DeleteTest(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	result, err := h.Store.Tests.Delete(c.Request.Context(), id)
	if err != nil {
		fail(c, err, "Failed to delete test")
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListTests returns every test, or only those dated on or after ?date=.
func (h *Handler) ListTests(c *gin.Context) {
	tests, err := h.Store.Tests.List(c.Request.Context(), c.Query("date"))
	if err != nil {
		fail(c, err, "Failed to retrieve tests")
		return
	}
	c.JSON(http.StatusOK, tests)
}

func (h *Handler) FeaturedTests(c *gin.Context) {
	tests, err := h.Store.Tests.Featured(c.Request.Context(), models.FeaturedTestsLimit)
	if err != nil {
		fail(c, err, "Failed to retrieve featured tests")
		return
	}
	c.JSON(http.StatusOK, tests)
}

func (h *Handler) GetTest(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	test, err := h.Store.Tests.FindByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err, "Failed to retrieve test")
		return
	}
	c.JSON(http.StatusOK, test)
}
