package ginserver

import (
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"campusx/internal/infra/security"
)

const principalContextKey = "campusx.principal"

type principal struct {
	ID   string
	Role string
}

// AuthMiddleware resolves a bearer token into a principal. A missing or
// invalid token is not an error here; handlers that need identity call
// requireAuth.
type AuthMiddleware struct {
	Tokens security.JWTManager
}

func (m AuthMiddleware) Handle(c *gin.Context) {
	token := extractBearerToken(c.GetHeader("Authorization"))
	if token == "" {
		c.Next()
		return
	}
	claims, err := m.Tokens.Verify(token)
	if err != nil {
		c.Next()
		return
	}
	setPrincipal(c, principal{ID: claims.UserID, Role: claims.Role})
	c.Next()
}

func setPrincipal(c *gin.Context, p principal) {
	c.Set(principalContextKey, p)
}

func currentPrincipal(c *gin.Context) (principal, bool) {
	val, exists := c.Get(principalContextKey)
	if !exists {
		return principal{}, false
	}
	p, ok := val.(principal)
	return p, ok
}

func requireAuth(c *gin.Context) (principal, bool) {
	p, ok := currentPrincipal(c)
	if !ok || p.ID == "" {
		c.JSON(http.StatusUnauthorized, envelope{Success: false, Message: "authentication required"})
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
