package logger

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader is the header used to propagate request IDs
	RequestIDHeader = "X-Request-ID"
	// TraceIDHeader carries an upstream trace ID, when a gateway sets one
	TraceIDHeader = "X-Trace-ID"
)

// RequestIDMiddleware is a Gin middleware that adds a request ID to the
// request context, reusing the caller's X-Request-ID when present. An
// incoming X-Trace-ID is carried along unchanged.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		ctx := WithRequestID(c.Request.Context(), requestID)
		if traceID := c.GetHeader(TraceIDHeader); traceID != "" {
			ctx = WithTraceID(ctx, traceID)
		}

		c.Request = c.Request.WithContext(ctx)
		c.Set(string(RequestIDKey), requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()
	}
}
