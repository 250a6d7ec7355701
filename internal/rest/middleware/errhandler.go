package middleware

import (
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
	ierr "github.com/flexprice/orderlimit/internal/errors"
	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last error attached to the context as an ierr.ErrorResponse
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		response := ierr.ErrorResponse{
			Success: false,
			Error: ierr.ErrorDetail{
				Code:    ierr.CodeFromErr(err),
				Display: getDisplayMessage(err),
				Details: getSafeDetails(err),
			},
		}

		if gin.Mode() == gin.DebugMode {
			response.Error.InternalError = err.Error()
		}

		c.JSON(ierr.HTTPStatusFromErr(err), response)
	}
}

func getDisplayMessage(err error) string {
	// GetAllHints is a post-order traversal, the first hint is the innermost one
	for _, hint := range errors.GetAllHints(err) {
		if hint = strings.TrimSpace(hint); hint != "" {
			return hint
		}
	}
	return "An unexpected error occurred"
}

func getSafeDetails(err error) map[string]any {
	details := make(map[string]any)

	for _, sdp := range errors.GetAllSafeDetails(err) {
		for _, payload := range sdp.SafeDetails {
			jsonStr, ok := strings.CutPrefix(payload, "__json__:")
			if !ok || jsonStr == "" {
				continue
			}

			var jsonDetails map[string]any
			if err := json.Unmarshal([]byte(jsonStr), &jsonDetails); err == nil {
				for k, v := range jsonDetails {
					details[k] = v
				}
			}
		}
	}

	if len(details) == 0 {
		return nil
	}
	return details
}
