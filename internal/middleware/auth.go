package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	jwtsvc "marineworks/internal/pkg/jwt"
)

// Actor resolves the acting user from an optional bearer token and
// stores the uid for audit attribution (changedBy/createdBy). Requests
// without a token stay anonymous — the service does not enforce
// authorization, it only records who acted when identity is present.
// A token that is present but invalid is rejected.
func Actor(jwt *jwtsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			c.Next()
			return
		}

		tokenStr := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		if tokenStr == "" || tokenStr == h {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Invalid Authorization header",
				},
			})
			return
		}

		claims, err := jwt.ValidateToken(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": "Invalid token",
				},
			})
			return
		}

		c.Set("uid", claims.UID)
		c.Next()
	}
}

// ActorUID returns the resolved actor uid, empty for anonymous callers.
func ActorUID(c *gin.Context) string {
	return c.GetString("uid")
}
