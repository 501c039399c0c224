package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Liveness reports that the process serves HTTP and how long it has been up.
// Benchmark scripts poll it before starting a run against a fixture.
func Liveness(serviceName string, started time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":         "alive",
			"service":        serviceName,
			"uptime_seconds": int64(time.Since(started).Seconds()),
		})
	}
}
