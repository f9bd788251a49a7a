package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"training_tracker/internal/responses"
	"training_tracker/internal/utils"
)

// RequireRole lets the request through when the session has one of roles.
// It must run after Authenticate.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := CurrentSession(c)
		if !ok {
			responses.Abort(c, http.StatusUnauthorized, nil, "Not signed in")
			return
		}
		for _, r := range roles {
			if sess.Role == r {
				c.Next()
				return
			}
		}
		responses.Abort(c, http.StatusForbidden, nil, "Access denied")
	}
}

func RequireAdmin() gin.HandlerFunc {
	return RequireRole(utils.RoleAdmin)
}
