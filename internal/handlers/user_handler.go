package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/diagnosia-api/internal/middleware"
	"github.com/harentsoaR/diagnosia-api/internal/models"
)

var errMissingEmail = errors.New("email is required")

// pick copies the named fields of body. Missing fields are set to null.
func pick(body models.Document, fields []string) models.Document {
	out := make(models.Document, len(fields))
	for _, f := range fields {
		out[f] = body[f]
	}
	return out
}

// CreateUser stores a new account unless one already exists for the email.
// Roles are never taken from the request body.
func (h *Handler) CreateUser(c *gin.Context) {
	user, ok := bindDocument(c)
	if !ok {
		return
	}
	if models.StringField(user, "email") == "" {
		badRequest(c, errMissingEmail)
		return
	}
	delete(user, "role")
	if _, ok := user["status"]; !ok {
		user["status"] = models.StatusActive
	}

	result, _, err := h.Store.Users.CreateIfAbsent(c.Request.Context(), user)
	if err != nil {
		fail(c, err, "Failed to create user")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.Store.Users.List(c.Request.Context())
	if err != nil {
		fail(c, err, "Failed to retrieve users")
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetUser returns the stored profile for ?email= or null.
func (h *Handler) GetUser(c *gin.Context) {
	user, err := h.Store.Users.Profile(c.Request.Context(), c.Query("email"))
	if err != nil {
		fail(c, err, "Failed to retrieve user")
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateProfile overwrites the editable profile fields of the user matched by
// email. Fields left out of the body are cleared.
func (h *Handler) UpdateProfile(c *gin.Context) {
	body, ok := bindDocument(c)
	if !ok {
		return
	}
	email := models.StringField(body, "email")
	if email == "" {
		badRequest(c, errMissingEmail)
		return
	}

	result, err := h.Store.Users.UpdateProfile(c.Request.Context(), email, pick(body, models.ProfileFields))
	if err != nil {
		fail(c, err, "Failed to update user profile")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) PromoteUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	result, err := h.Store.Users.SetRole(c.Request.Context(), id, models.RoleAdmin)
	if err != nil {
		fail(c, err, "Failed to update user role")
		return
	}
	c.JSON(http.StatusOK, result)
}

// ToggleUserStatus flips a user between active and blocked.
func (h *Handler) ToggleUserStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	result, err := h.Store.Users.ToggleStatus(c.Request.Context(), id)
	if err != nil {
		fail(c, err, "Failed to update user status")
		return
	}
	c.JSON(http.StatusOK, result)
}

// CheckAdmin answers whether the caller is an administrator. Callers may only
// ask about themselves.
func (h *Handler) CheckAdmin(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	email := c.Param("email")
	if !ok || email != claims.Email {
		c.JSON(http.StatusForbidden, gin.H{"message": "forbidden access"})
		return
	}

	user, err := h.Store.Users.FindByEmail(c.Request.Context(), email)
	if err != nil {
		fail(c, err, "Failed to retrieve user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"admin": user.IsAdmin()})
}
