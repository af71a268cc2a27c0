package middleware

import (
	"github.com/gin-gonic/gin"
)

// RequestObserver starts timing a request and returns the function that
// records its outcome.
type RequestObserver interface {
	RequestStarted() func(method, path string, status int)
}

// Metrics records request counts and latency labelled by route template.
// Unmatched routes share one label to keep cardinality bounded.
func Metrics(observer RequestObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		done := observer.RequestStarted()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		done(c.Request.Method, path, c.Writer.Status())
	}
}
