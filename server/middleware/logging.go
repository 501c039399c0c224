package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/benchhttp/logger"
)

// RequestLogger returns a Gin middleware that logs every request with method,
// path, status and latency. Successful requests are logged at debug level so
// they stay out of the way during benchmark runs; /alive is skipped.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/alive" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		fields := map[string]interface{}{
			"method":           c.Request.Method,
			"path":             c.Request.URL.Path,
			logger.FieldStatus: status,
			"latency":          latency.String(),
		}
		if q := c.Request.URL.RawQuery; q != "" {
			fields["query"] = q
		}
		if id := GetRequestID(c); id != "" {
			fields[requestIDKey] = id
		}

		switch {
		case status >= 500:
			log.Error("Request completed", fields)
		case status >= 400:
			log.Warn("Request completed", fields)
		default:
			log.Debug("Request completed", fields)
		}
	}
}
