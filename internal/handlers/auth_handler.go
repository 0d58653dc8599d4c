package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/diagnosia-api/internal/middleware"
	"github.com/harentsoaR/diagnosia-api/internal/utils"
)

// IssueSession signs the submitted identity, with every claim it carries,
// and stores it in the session cookie.
func (h *Handler) IssueSession(c *gin.Context) {
	identity, ok := bindDocument(c)
	if !ok {
		return
	}

	token, err := h.Sessions.IssueClaims(identity)
	if errors.Is(err, utils.ErrMissingIdentity) {
		badRequest(c, err)
		return
	}
	if err != nil {
		fail(c, err, "Could not generate token")
		return
	}

	h.setSessionCookie(c, token, 0)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Logout clears the session cookie. Tokens are stateless, so an already
// copied token stays valid until it expires.
func (h *Handler) Logout(c *gin.Context) {
	h.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"status": true})
}

func (h *Handler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	if h.Production {
		c.SetSameSite(http.SameSiteNoneMode)
	} else {
		c.SetSameSite(http.SameSiteStrictMode)
	}
	c.SetCookie(middleware.SessionCookie, value, maxAge, "/", "", h.Production, true)
}
