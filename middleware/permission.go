package middleware

import (
	"context"
	"log"
	"net/http"

	"hotel-pms/utils"

	"github.com/gin-gonic/gin"
)

type PermissionChecker interface {
	HasPermission(ctx context.Context, userID uint, perm string) (bool, error)
}

// RequirePermission must run after AuthRequired.
func RequirePermission(checker PermissionChecker, perm string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := Actor(c)
		if !ok {
			utils.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			c.Abort()
			return
		}
		allowed, err := checker.HasPermission(c.Request.Context(), actor.ActorID, perm)
		if err != nil {
			log.Printf("error: permission check %s actor_id=%d: %v", perm, actor.ActorID, err)
			utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected error, please try again")
			c.Abort()
			return
		}
		if !allowed {
			utils.Error(c, http.StatusForbidden, "FORBIDDEN", "Missing permission "+perm)
			c.Abort()
			return
		}
		c.Next()
	}
}
