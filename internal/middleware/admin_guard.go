package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SessionChecker reports whether an admin session is active.
type SessionChecker interface {
	Authenticated(ctx context.Context) bool
}

// AdminGuard sends visitors without a session to the login page. JSON
// callers get a 401 instead of a redirect.
func AdminGuard(sessions SessionChecker, loginPath string, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sessions.Authenticated(c.Request.Context()) {
			c.Next()
			return
		}

		log.Warnf("Middleware: No admin session for %s %s", c.Request.Method, c.Request.URL.Path)
		if strings.Contains(c.GetHeader("Accept"), "application/json") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Login required"})
			return
		}
		c.Redirect(http.StatusSeeOther, loginPath)
		c.Abort()
	}
}
