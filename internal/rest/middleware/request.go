package middleware

import (
	"time"

	"github.com/flexprice/orderlimit/internal/logger"
	"github.com/flexprice/orderlimit/internal/types"
	"github.com/gin-gonic/gin"
)

func RequestIDMiddleware(c *gin.Context) {
	requestID := c.GetHeader(types.HeaderRequestID)
	if requestID == "" {
		requestID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REQUEST)
	}

	c.Request = c.Request.WithContext(types.SetRequestID(c.Request.Context(), requestID))
	c.Header(types.HeaderRequestID, requestID)

	c.Next()
}

// RequestLogger logs one line per request once the response is written
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Infow("request completed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", types.GetRequestID(c.Request.Context()),
		)
	}
}
