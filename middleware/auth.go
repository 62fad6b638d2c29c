package middleware

import (
	"strings"

	"sharebin/config"
	"sharebin/utils"

	"github.com/gin-gonic/gin"
)

// extractAdminKey pulls the admin key from the Authorization header or
// the adminKey query parameter, accepting the bare secret or the Bearer
// form.
func extractAdminKey(c *gin.Context) string {
	key := c.GetHeader("Authorization")
	if key == "" {
		key = c.Query("adminKey")
	}
	return strings.TrimPrefix(key, "Bearer ")
}

// isAdminRequest resolves the stateless admin predicate: the presented
// key matches the configured secret. No sessions, no expiry.
func isAdminRequest(c *gin.Context) bool {
	secret := config.AppConfig.AdminKey
	if secret == "" {
		return false
	}
	return utils.SecureCompare(extractAdminKey(c), secret)
}

// AdminKeyMiddleware resolves the admin flag for every request so that
// handlers with mixed public/admin behavior can branch on it.
func AdminKeyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("is_admin", isAdminRequest(c))
		c.Next()
	}
}

// RequireAdmin aborts any request that does not carry the admin secret.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !utils.IsAdminFromContext(c) {
			utils.ForbiddenResponse(c, "Access denied. Admin key required.")
			c.Abort()
			return
		}
		c.Next()
	}
}
