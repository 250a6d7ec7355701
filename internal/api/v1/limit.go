package v1

import (
	"net/http"

	"github.com/flexprice/orderlimit/internal/api/dto"
	ierr "github.com/flexprice/orderlimit/internal/errors"
	"github.com/flexprice/orderlimit/internal/logger"
	"github.com/flexprice/orderlimit/internal/service"
	"github.com/gin-gonic/gin"
)

type LimitHandler struct {
	service service.LimitService
	logger  *logger.Logger
}

func NewLimitHandler(service service.LimitService, logger *logger.Logger) *LimitHandler {
	return &LimitHandler{
		service: service,
		logger:  logger,
	}
}

// @Summary Check purchase limits
// @Description Evaluate every purchase limit rule that applies to the order's line items
// @Tags Limits
// @Accept json
// @Produce json
// @Param request body dto.CheckOrderRequest true "Order to check"
// @Success 200 {object} dto.CheckOrderResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 422 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /limits/check [post]
func (h *LimitHandler) CheckOrder(c *gin.Context) {
	var req dto.CheckOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	if err := req.Validate(); err != nil {
		c.Error(err)
		return
	}

	if err := h.service.CheckOrder(c.Request.Context(), req.ToOrder()); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.CheckOrderResponse{Allowed: true})
}
