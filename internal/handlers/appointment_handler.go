package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/diagnosia-api/internal/middleware"
	"github.com/harentsoaR/diagnosia-api/internal/models"
	"github.com/harentsoaR/diagnosia-api/internal/utils"
)

// --- BOOK A PAID TEST ---
func (h *Handler) CreateAppointment(c *gin.Context) {
	apt, ok := bindDocument(c)
	if !ok {
		return
	}

	// The caller's identity fills whatever the client left out.
	if claims, ok := middleware.Claims(c); ok {
		fillIdentity(apt, claims)
	}

	result, err := h.Booking.Book(c.Request.Context(), apt)
	if err != nil {
		fail(c, err, "Failed to create appointment")
		return
	}
	c.JSON(http.StatusOK, result)
}

func fillIdentity(doc models.Document, claims *utils.Claims) {
	if models.StringField(doc, "email") == "" && claims.Email != "" {
		doc["email"] = claims.Email
	}
	if models.StringField(doc, "name") == "" && claims.Name != "" {
		doc["name"] = claims.Name
	}
}

// --- LIST APPOINTMENTS (?email= exact, ?search= case-insensitive) ---
func (h *Handler) ListAppointments(c *gin.Context) {
	filter := models.AppointmentFilter{
		Email:  c.Query("email"),
		Search: c.Query("search"),
	}

	appointments, err := h.Store.Appointments.List(c.Request.Context(), filter)
	if err != nil {
		fail(c, err, "Failed to retrieve appointments")
		return
	}
	c.JSON(http.StatusOK, appointments)
}

func (h *Handler) DeleteAppointment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	result, err := h.Store.Appointments.Delete(c.Request.Context(), id)
	if err != nil {
		fail(c, err, "Failed to delete appointment")
		return
	}
	c.JSON(http.StatusOK, result)
}
