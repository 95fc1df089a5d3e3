package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/trailbook/backend/internal/models"
	"github.com/trailbook/backend/pkg/response"
)

// RequireRole returns a middleware that allows only the given roles. It is a
// route-level gate, separate from the per-resource policy checks.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]struct{})
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		actor := Actor(c)
		if actor == nil {
			response.Unauthorized(c, "missing user context")
			c.Abort()
			return
		}
		if _, ok := allowed[actor.Role]; !ok {
			response.Forbidden(c, "insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}
