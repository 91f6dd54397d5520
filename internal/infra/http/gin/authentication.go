package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	domainauth "staybook/internal/domain/auth"
	"staybook/internal/infra/security"
)

const principalContextKey = "staybook.principal"

type principal struct {
	AccountID string
	Token     domainauth.Token
}

// AuthMiddleware resolves a bearer token into a principal. Requests without
// a valid token pass through; protected groups call requireAdmin.
type AuthMiddleware struct {
	Authenticator *security.Authenticator
	Logger        *slog.Logger
}

func (m AuthMiddleware) Handle(c *gin.Context) {
	token := extractBearerToken(c.GetHeader("Authorization"))
	if token == "" || m.Authenticator == nil {
		c.Next()
		return
	}
	session, err := m.Authenticator.Authenticate(c.Request.Context(), domainauth.Token(token))
	if err != nil {
		if !errors.Is(err, domainauth.ErrSessionNotFound) && m.Logger != nil {
			m.Logger.Debug("token validation failed", "error", err)
		}
		c.Next()
		return
	}
	c.Set(principalContextKey, principal{AccountID: session.AccountID, Token: session.Token})
	c.Next()
}

func currentPrincipal(c *gin.Context) (principal, bool) {
	val, exists := c.Get(principalContextKey)
	if !exists {
		return principal{}, false
	}
	p, ok := val.(principal)
	return p, ok
}

func isAdmin(c *gin.Context) bool {
	_, ok := currentPrincipal(c)
	return ok
}

func requireAdmin(c *gin.Context) (principal, bool) {
	p, ok := currentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "auth required"})
		return principal{}, false
	}
	return p, true
}

func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
