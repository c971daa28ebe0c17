package middleware

import (
	"log"
	"net/http"
	"time"

	"hotel-pms/metrics"
	"hotel-pms/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// RequestLogger writes one line per request and tags it with a request id,
// reusing the caller's X-Request-ID when present.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqID := c.GetHeader(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set("request_id", reqID)
		c.Header(requestIDHeader, reqID)

		c.Next()

		actor, _ := Actor(c)
		log.Printf("%s %s status=%d latency=%s ip=%s actor_id=%d request_id=%s",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start), c.ClientIP(), actor.ActorID, reqID)
	}
}

// ErrorLogger recovers panics into a 500 envelope and logs errors the
// handlers attached with c.Error.
func ErrorLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				actor, _ := Actor(c)
				log.Printf("panic: %s %s actor_id=%d request_id=%s: %v",
					c.Request.Method, c.Request.URL.Path, actor.ActorID, c.GetString("request_id"), rec)
				utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected error, please try again")
				c.Abort()
			}
		}()
		c.Next()
		for _, e := range c.Errors {
			log.Printf("request error: %s %s request_id=%s: %v", c.Request.Method, c.Request.URL.Path, c.GetString("request_id"), e.Err)
		}
	}
}

// Metrics records request count and latency labelled by the route pattern.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.ObserveRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
