package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/studymate/server/metrics"
)

// Metrics records request counts and latency per matched route. Unmatched
// paths are folded into one "unmatched" label to keep cardinality bounded.
func Metrics() gin.HandlerFunc {
	m := metrics.Get()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
