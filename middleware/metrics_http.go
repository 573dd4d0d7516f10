package middleware

import (
	"strconv"
	"time"

	"github.com/KOMKZ/go-yogan-chat/errcode"
	"github.com/gin-gonic/gin"
)

// HTTPObserver is satisfied by *telemetry.Metrics
type HTTPObserver interface {
	ObserveHTTPRequest(method, route string, status int, elapsed time.Duration)
	ObserveError(errorType, endpoint string, status int)
}

// Metrics records every request by route pattern, never by raw path.
// 4xx/5xx responses also count as errors, typed by their layered error module.
func Metrics(obs HTTPObserver, skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]bool, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = true
	}

	return func(c *gin.Context) {
		if skip[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		obs.ObserveHTTPRequest(c.Request.Method, route, status, time.Since(start))
		if status >= 400 {
			obs.ObserveError(errorType(c, status), route, status)
		}
	}
}

func errorType(c *gin.Context, status int) string {
	if last := c.Errors.Last(); last != nil {
		if le, ok := errcode.As(last.Err); ok {
			return le.Module()
		}
	}
	return "http_" + strconv.Itoa(status)
}
