package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/bridgefs/bridgefs/internal/shared/id"
)

// HeaderRequestID is the correlation header honored and emitted by the hub.
const HeaderRequestID = "X-Request-ID"

// ContextRequestID is the gin context key holding the request ID.
const ContextRequestID = "request_id"

// RequestID assigns each request a ULID correlation ID, honoring one
// supplied by the caller when it is well formed.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderRequestID)
		if !id.IsRequestID(rid) {
			rid = id.NewRequestID().String()
		}
		c.Set(ContextRequestID, rid)
		c.Writer.Header().Set(HeaderRequestID, rid)
		c.Next()
	}
}
