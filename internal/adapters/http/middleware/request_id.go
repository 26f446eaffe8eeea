// Package middleware contains the HTTP middleware chain.
//
// Each middleware covers one cross-cutting concern: request ids, logging,
// panic recovery, rate limiting, CORS, Prometheus metrics.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader is the header carrying the request id.
	RequestIDHeader = "X-Request-ID"
	// RequestIDContextKey matches common.RequestIDKey so the response
	// helpers see the id this middleware stored.
	RequestIDContextKey = "X-Request-ID"
)

// RequestID tags every request with a unique id.
//
// A client-supplied X-Request-ID is honored so callers can correlate their
// own traces; otherwise a fresh UUID is generated. The id is echoed in the
// response headers and attached to every log line of the request.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(RequestIDContextKey, requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()
	}
}

// GetRequestID extracts the request id from the Gin context.
func GetRequestID(c *gin.Context) string {
	if id, exists := c.Get(RequestIDContextKey); exists {
		if strID, ok := id.(string); ok {
			return strID
		}
	}
	return ""
}
