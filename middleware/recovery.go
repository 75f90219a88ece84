package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Recovery turns a handler panic into a 500 with the same body as any other
// internal error. The panic value is attached to the context errors so the
// request logger and audit trail see it too.
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			log.Error("panic recovered",
				zap.Any("panic", r),
				zap.String("trace_id", GetTraceID(c)),
				zap.String("route", c.FullPath()),
				zap.Int64("user_id", GetUserID(c)),
				zap.Stack("stack"),
			)
			_ = c.Error(fmt.Errorf("panic: %v", r))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}()
		c.Next()
	}
}
