package middleware

import (
	"net/http"

	"github.com/flexprice/orderlimit/internal/types"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware lets storefront frontends call the check endpoint directly
func CORSMiddleware(c *gin.Context) {
	h := c.Writer.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type, "+types.HeaderRequestID)
	h.Set("Access-Control-Expose-Headers", types.HeaderRequestID)
	h.Set("Access-Control-Max-Age", "86400")

	if c.Request.Method == http.MethodOptions {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}
	c.Next()
}
