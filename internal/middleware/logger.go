package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"staybook/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const RequestIDHeader = "X-Request-ID"

// RequestLogger assigns a request id, logs every request and recovers from
// panics with a 500 envelope.
func RequestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqID := c.GetHeader(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set("request_id", reqID)
		c.Header(RequestIDHeader, reqID)

		defer func() {
			if recovered := recover(); recovered != nil {
				entry(log, c, start, reqID).
					WithField("panic", fmt.Sprintf("%v", recovered)).
					WithField("stack", string(debug.Stack())).
					Error("panic recovered")
				response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
				c.Abort()
				return
			}

			e := entry(log, c, start, reqID)
			if len(c.Errors) > 0 {
				e = e.WithField("error", c.Errors.String())
			}
			switch status := c.Writer.Status(); {
			case status >= http.StatusInternalServerError:
				e.Error("request failed")
			case status >= http.StatusBadRequest:
				e.Warn("request rejected")
			default:
				e.Info("request")
			}
		}()

		c.Next()
	}
}

func entry(log logrus.FieldLogger, c *gin.Context, start time.Time, reqID string) *logrus.Entry {
	return log.WithFields(logrus.Fields{
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"query":      c.Request.URL.RawQuery,
		"status":     c.Writer.Status(),
		"latency":    time.Since(start).String(),
		"client_ip":  c.ClientIP(),
		"user_id":    c.GetInt64(ContextUserID),
		"request_id": reqID,
	})
}
