package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// FileReport stores a report and marks the appointment named by its "id" delivered.
func (h *Handler) FileReport(c *gin.Context) {
	report, ok := bindDocument(c)
	if !ok {
		return
	}

	result, err := h.Reports.File(c.Request.Context(), report)
	if err != nil {
		fail(c, err, "Failed to file report")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) ListReports(c *gin.Context) {
	reports, err := h.Store.Reports.List(c.Request.Context(), c.Query("email"))
	if err != nil {
		fail(c, err, "Failed to retrieve reports")
		return
	}
	c.JSON(http.StatusOK, reports)
}
