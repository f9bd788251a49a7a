package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"training_tracker/internal/responses"
	"training_tracker/internal/services"
)

const (
	SessionCookieName = "session"
	sessionKey        = "session"
)

// SessionParser validates a session token.
type SessionParser interface {
	Parse(token string) (*services.Session, error)
}

func tokenFrom(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie != "" {
		return cookie
	}
	// Non-browser clients may send the token as a bearer header instead.
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// Authenticate requires a valid session and stores it for handlers.
func Authenticate(parser SessionParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFrom(c)
		if token == "" {
			responses.Abort(c, http.StatusUnauthorized, nil, "Not signed in")
			return
		}
		sess, err := parser.Parse(token)
		if err != nil {
			responses.Abort(c, http.StatusUnauthorized, nil, "Invalid or expired session")
			return
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

// CurrentSession returns the session stored by Authenticate.
func CurrentSession(c *gin.Context) (*services.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*services.Session)
	return sess, ok && sess != nil
}
