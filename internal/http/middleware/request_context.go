package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/maatchaa/maatchaa-backend/internal/pkg/ctxutil"
)

const (
	HeaderTraceID   = "X-Trace-Id"
	HeaderRequestID = "X-Request-Id"
)

// AttachRequestContext stamps every request with a request id and a trace id.
// The trace id prefers the caller's header, then the active otel span.
func AttachRequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		td := &ctxutil.TraceData{
			RequestID: strings.TrimSpace(c.GetHeader(HeaderRequestID)),
			TraceID:   strings.TrimSpace(c.GetHeader(HeaderTraceID)),
		}
		if td.TraceID == "" {
			if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
				td.TraceID = sc.TraceID().String()
			}
		}
		if td.RequestID == "" {
			td.RequestID = uuid.NewString()
		}
		if td.TraceID == "" {
			td.TraceID = td.RequestID
		}

		c.Request = c.Request.WithContext(ctxutil.WithTraceData(c.Request.Context(), td))
		c.Writer.Header().Set(HeaderTraceID, td.TraceID)
		c.Writer.Header().Set(HeaderRequestID, td.RequestID)
		c.Next()
	}
}
