package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/trailbook/backend/internal/auth"
	"github.com/trailbook/backend/internal/models"
	"github.com/trailbook/backend/pkg/response"
)

// ContextActor is the key for the authenticated user in gin context.
const ContextActor = "actor"

// JWT returns a middleware that validates the bearer token and stores the
// acting user in the request context.
func JWT(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFromHeader(c, jwtService)
		if !ok {
			response.Unauthorized(c, "invalid or missing token")
			c.Abort()
			return
		}
		c.Set(ContextActor, actor)
		c.Next()
	}
}

// OptionalJWT stores the acting user when a valid token is present, but lets
// anonymous requests through. Used on routes that redirect anonymous callers
// instead of rejecting them.
func OptionalJWT(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if actor, ok := actorFromHeader(c, jwtService); ok {
			c.Set(ContextActor, actor)
		}
		c.Next()
	}
}

// Actor returns the authenticated user for the request, or nil when the
// request is anonymous.
func Actor(c *gin.Context) *models.User {
	v, ok := c.Get(ContextActor)
	if !ok {
		return nil
	}
	actor, _ := v.(*models.User)
	return actor
}

func actorFromHeader(c *gin.Context, jwtService *auth.JWTService) (*models.User, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return nil, false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, false
	}
	claims, err := jwtService.Validate(parts[1])
	if err != nil {
		return nil, false
	}
	return claims.Actor(), true
}
