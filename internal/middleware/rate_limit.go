package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// SearchRateLimit throttles requests that carry a non-empty text query
// parameter. Requests without one pass through untouched. A non-positive
// rate disables the limit.
func SearchRateLimit(perSecond float64, burst int, param string, log *logrus.Logger) gin.HandlerFunc {
	if burst < 1 {
		burst = 1
	}
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	limiter := rate.NewLimiter(limit, burst)

	return func(c *gin.Context) {
		if strings.TrimSpace(c.Query(param)) == "" {
			c.Next()
			return
		}
		if !limiter.Allow() {
			log.Warnf("Middleware: Search rate limit exceeded for %s", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many searches, slow down"})
			return
		}
		c.Next()
	}
}
