package middleware

import (
	"net/http"
	"strings"

	"hotel-pms/services"
	"hotel-pms/utils"

	"github.com/gin-gonic/gin"
)

const (
	actorKey    = "actor"
	usernameKey = "username"
)

// SetActor stores the authenticated operator on the request.
func SetActor(c *gin.Context, actor services.ActorContext) {
	c.Set(actorKey, actor)
}

// Actor returns the operator set by AuthRequired.
func Actor(c *gin.Context) (services.ActorContext, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return services.ActorContext{}, false
	}
	actor, ok := v.(services.ActorContext)
	return actor, ok
}

// AuthRequired validates the bearer token and threads the actor id and branch
// from its claims into the request context.
func AuthRequired(tokens *utils.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, found := strings.CutPrefix(header, "Bearer ")
		raw = strings.TrimSpace(raw)
		if !found || raw == "" {
			utils.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing bearer token")
			c.Abort()
			return
		}
		claims, err := tokens.ValidateToken(raw)
		if err != nil || claims.UserID == 0 || claims.BranchID == 0 {
			utils.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token")
			c.Abort()
			return
		}
		SetActor(c, services.ActorContext{ActorID: claims.UserID, BranchID: claims.BranchID})
		c.Set(usernameKey, claims.Username)
		c.Next()
	}
}
