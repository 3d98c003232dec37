package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const requestIDKey = "request_id"

// RequestID makes sure every request carries an X-Request-ID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = c.GetHeader("X-Request-Id")
		}
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

// ErrorLogger logs every request and recovers from panics.
func ErrorLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if recovered := recover(); recovered != nil {
				err := fmt.Errorf("%v", recovered)
				requestEntry(c, start).
					WithField("stack", string(debug.Stack())).
					WithError(err).
					Error("panic")

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "INTERNAL_SERVER_ERROR",
						"message": "Internal Server Error",
					},
				})
				return
			}

			entry := requestEntry(c, start)
			for _, err := range c.Errors {
				entry = entry.WithField("error_type", fmt.Sprintf("%v", err.Type)).WithError(err.Err)
				if err.Meta != nil {
					entry = entry.WithField("meta", fmt.Sprintf("%+v", err.Meta))
				}
			}

			switch status := c.Writer.Status(); {
			case status >= http.StatusInternalServerError || len(c.Errors) > 0:
				entry.Error("request failed")
			case status >= http.StatusBadRequest:
				entry.Warn("request rejected")
			default:
				entry.Debug("request served")
			}
		}()

		c.Next()
	}
}

func requestEntry(c *gin.Context, start time.Time) *log.Entry {
	return log.WithFields(log.Fields{
		"status":     c.Writer.Status(),
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"query":      c.Request.URL.RawQuery,
		"client_ip":  c.ClientIP(),
		"request_id": c.GetString(requestIDKey),
		"latency":    time.Since(start),
	})
}
