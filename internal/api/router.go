package api

import (
	v1 "github.com/flexprice/orderlimit/internal/api/v1"
	"github.com/flexprice/orderlimit/internal/config"
	"github.com/flexprice/orderlimit/internal/logger"
	"github.com/flexprice/orderlimit/internal/rest/middleware"
	"github.com/flexprice/orderlimit/internal/types"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Health *v1.HealthHandler
	Limit  *v1.LimitHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, logger *logger.Logger) *gin.Engine {
	if cfg.Logging.Level != types.LogLevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.CORSMiddleware,
		middleware.RequestLogger(logger),
		middleware.ErrorHandler(),
	)

	router.GET("/health", handlers.Health.Health)

	// v1 routes
	v1Group := router.Group("/v1")
	registerV1Routes(v1Group, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	limits := router.Group("/limits")
	{
		limits.POST("/check", handlers.Limit.CheckOrder)
	}
}
