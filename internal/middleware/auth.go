package middleware

import (
	"errors"
	"net/http"
	"strings"

	"coursecatalog/internal/models"
	"coursecatalog/internal/service"

	"github.com/gin-gonic/gin"
)

// ClaimsKey is the gin context key holding *models.Claims for authenticated requests.
const ClaimsKey = "claims"

// ExtractToken reads the session token from the cookie first, then from an
// "Authorization: Bearer <token>" header. It returns "" when neither is set.
func ExtractToken(c *gin.Context, cookieName string) string {
	if token, err := c.Cookie(cookieName); err == nil && token != "" {
		return token
	}

	authHeader := c.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// AuthMiddleware rejects requests without a valid session token and stores
// the decoded claims under ClaimsKey.
func AuthMiddleware(authService service.AuthService, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := authService.CheckSession(ExtractToken(c, cookieName))
		if err != nil {
			if errors.Is(err, service.ErrNoToken) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// GetClaims returns the claims set by AuthMiddleware.
func GetClaims(c *gin.Context) (*models.Claims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*models.Claims)
	return claims, ok
}
