package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	domainauth "staybook/internal/domain/auth"
	"staybook/internal/infra/security"
)

type AuthHTTP interface {
	Login(c *gin.Context)
	Logout(c *gin.Context)
}

type AuthHandler struct {
	Authenticator *security.Authenticator
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

func (h AuthHandler) Login(c *gin.Context) {
	if h.Authenticator == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "auth unavailable"})
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	session, err := h.Authenticator.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, loginResponse{
		Token:     string(session.Token),
		ExpiresAt: session.ExpiresAt.Format(time.RFC3339),
	})
}

func (h AuthHandler) Logout(c *gin.Context) {
	p, ok := requireAdmin(c)
	if !ok {
		return
	}
	if err := h.Authenticator.Logout(c.Request.Context(), domainauth.Token(p.Token)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

var _ AuthHTTP = AuthHandler{}
