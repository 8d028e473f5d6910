package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		entry := logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"remote_ip":  c.ClientIP(),
			"user_agent": c.Request.UserAgent(),
		})
		if reqID := c.Writer.Header().Get(HeaderRequestID); reqID != "" {
			entry = entry.WithField("request_id", reqID)
		}
		entry.Debug("Incoming request")

		c.Next()

		completed := logger.WithFields(logrus.Fields{
			"status_code": c.Writer.Status(),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"latency_ms":  time.Since(startTime).Milliseconds(),
		})
		if reqID := c.Writer.Header().Get(HeaderRequestID); reqID != "" {
			completed = completed.WithField("request_id", reqID)
		}

		statusCode := c.Writer.Status()
		switch {
		case len(c.Errors) > 0:
			completed.Error(c.Errors.ByType(gin.ErrorTypePrivate).String())
		case statusCode >= 500:
			completed.Error("Request completed with server error")
		case statusCode >= 400:
			completed.Warn("Request completed with client error")
		default:
			completed.Info("Request completed successfully")
		}
	}
}
