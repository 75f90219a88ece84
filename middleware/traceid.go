package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	TraceIDKey    = "trace_id"
	TraceIDHeader = "X-Trace-ID"
	// RequestIDHeader is the id most reverse proxies stamp on requests.
	RequestIDHeader = "X-Request-ID"
)

// TraceID tags every request with a UUID, echoed in X-Trace-ID. An inbound
// X-Trace-ID or X-Request-ID is reused only when it is itself a UUID, so the
// value always fits the audit log's trace column.
func TraceID() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := inboundTraceID(c)
		if traceID == "" {
			traceID = uuid.NewString()
		}
		c.Set(TraceIDKey, traceID)
		c.Header(TraceIDHeader, traceID)
		c.Next()
	}
}

func inboundTraceID(c *gin.Context) string {
	for _, h := range []string{TraceIDHeader, RequestIDHeader} {
		if id, err := uuid.Parse(c.GetHeader(h)); err == nil {
			return id.String()
		}
	}
	return ""
}

// GetTraceID retrieves the trace ID from the Gin context.
func GetTraceID(c *gin.Context) string {
	return c.GetString(TraceIDKey)
}
