package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/flexprice/orderlimit/internal/logger"
	"github.com/gin-gonic/gin"
)

// Pinger is a backend the health check reaches out to
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db     Pinger
	logger *logger.Logger
}

// NewHealthHandler builds the handler. db may be nil when rules are read from a file.
func NewHealthHandler(db Pinger, logger *logger.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		logger: logger,
	}
}

// @Summary Health check
// @Description Health check
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := h.db.PingContext(ctx); err != nil {
			h.logger.Errorw("health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
