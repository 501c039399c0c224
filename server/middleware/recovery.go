package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/benchhttp/logger"
)

// Recovery turns a handler panic into a 500 with a JSON body, so a client
// under measurement sees an HTTP error instead of a dropped connection.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			fields := logger.Fields(
				logger.FieldError, fmt.Sprint(rec),
				logger.FieldURL, c.Request.URL.String(),
				"method", c.Request.Method,
				"stack", string(debug.Stack()),
			)
			id := GetRequestID(c)
			if id != "" {
				fields[requestIDKey] = id
			}
			log.Error("Panic recovered", fields)

			body := gin.H{"error": "Internal server error"}
			if id != "" {
				body[requestIDKey] = id
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, body)
		}()
		c.Next()
	}
}
