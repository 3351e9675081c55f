package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tourwithmark/engagement/utils"
)

// Metrics records request counts and latencies. Paths are labelled by route
// template so post ids do not explode cardinality.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		if path == "/metrics" {
			c.Next()
			return
		}

		timer := prometheus.NewTimer(utils.HttpRequestDuration.WithLabelValues(path))
		c.Next()
		timer.ObserveDuration()

		utils.HttpRequestsTotal.WithLabelValues(path, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
