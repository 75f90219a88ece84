package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/studymate/server/audit"
)

const maxAuditBody = 64 << 10

// Auditor is the sink for audit entries.
type Auditor interface {
	Log(entry audit.Entry)
}

// Audit records every state-changing request (anything but GET, HEAD and
// OPTIONS). The action is the matched route. Password fields are stripped
// from the recorded body.
func Audit(a Auditor) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		var body []byte
		if c.Request.Body != nil {
			body, _ = io.ReadAll(io.LimitReader(c.Request.Body, maxAuditBody))
			c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), c.Request.Body))
		}

		start := time.Now()
		c.Next()

		action := c.FullPath()
		if action == "" {
			return
		}
		entry := audit.Entry{
			TraceID:    GetTraceID(c),
			Action:     c.Request.Method + " " + action,
			Request:    redactBody(body),
			Status:     c.Writer.Status(),
			IP:         c.ClientIP(),
			DurationMs: int(time.Since(start).Milliseconds()),
		}
		if uid := GetUserID(c); uid != 0 {
			entry.UserID = &uid
		}
		if len(c.Errors) > 0 {
			entry.Error = c.Errors.String()
		}
		a.Log(entry)
	}
}

func redactBody(body []byte) interface{} {
	if len(body) == 0 {
		return nil
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil
	}
	for _, k := range []string{"password", "new_password", "old_password"} {
		if _, ok := fields[k]; ok {
			fields[k] = "***"
		}
	}
	return fields
}
