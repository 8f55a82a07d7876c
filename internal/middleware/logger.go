package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RequestLogger logs every request with structured fields and recovers
// from handler panics with a JSON 500.
func RequestLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if recovered := recover(); recovered != nil {
				log.WithFields(requestFields(c, start)).
					WithField("stack", string(debug.Stack())).
					Errorf("panic: %v", recovered)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "INTERNAL_SERVER_ERROR",
						"message": fmt.Sprintf("%v", recovered),
					},
				})
				return
			}

			entry := log.WithFields(requestFields(c, start))
			switch {
			case c.Writer.Status() >= http.StatusInternalServerError:
				entry.Error("request failed")
			case len(c.Errors) > 0:
				entry.WithField("errors", c.Errors.String()).Warn("request errors")
			default:
				entry.Debug("request")
			}
		}()

		c.Next()
	}
}

func requestFields(c *gin.Context, start time.Time) logrus.Fields {
	return logrus.Fields{
		"status":    c.Writer.Status(),
		"method":    c.Request.Method,
		"path":      c.Request.URL.Path,
		"client_ip": c.ClientIP(),
		"uid":       c.GetString("uid"),
		"latency":   time.Since(start).String(),
	}
}
