package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/flexprice/orderlimit/internal/api"
	v1 "github.com/flexprice/orderlimit/internal/api/v1"
	"github.com/flexprice/orderlimit/internal/cache"
	"github.com/flexprice/orderlimit/internal/clickhouse"
	"github.com/flexprice/orderlimit/internal/config"
	"github.com/flexprice/orderlimit/internal/logger"
	"github.com/flexprice/orderlimit/internal/postgres"
	"github.com/flexprice/orderlimit/internal/repository"
	"github.com/flexprice/orderlimit/internal/service"
	"github.com/flexprice/orderlimit/internal/types"
	"github.com/flexprice/orderlimit/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	// .env is optional, real deployments pass the environment directly
	_ = godotenv.Load()

	var opts []fx.Option

	opts = append(opts,
		fx.WithLogger(func(log *logger.Logger) fxevent.Logger {
			return log.GetFxLogger()
		}),
		fx.Provide(
			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Cache
			provideCache,

			// Postgres
			postgres.NewDB,
			providePostgresClient,

			// Clickhouse
			provideClickHouseStore,

			// Repositories
			repository.NewPurchaseHistoryRepository,
			repository.NewLimitRuleRepository,
			repository.NewCatalogRepository,
		),
	)

	// Services
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,
			service.NewLimitService,
		),
	)

	opts = append(opts,
		fx.Provide(
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(
			initValidator,
			registerCloseHooks,
			startServer,
		),
	)

	app := fx.New(opts...)
	app.Run()
}

// initValidator sets up the shared validator used by request dtos
func initValidator() {
	validator.NewValidator()
}

func provideCache(cfg *config.Configuration, log *logger.Logger) cache.Cache {
	return cache.NewInMemoryCache(cfg, log)
}

func providePostgresClient(db *postgres.DB) postgres.IClient {
	return db
}

// provideClickHouseStore connects only when purchase history is read from clickhouse
func provideClickHouseStore(cfg *config.Configuration, log *logger.Logger) (*clickhouse.ClickHouseStore, error) {
	if cfg.Limit.HistorySource != types.HistorySourceClickHouse {
		return nil, nil
	}
	return clickhouse.NewClickHouseStore(cfg, log)
}

func provideHandlers(
	log *logger.Logger,
	db *postgres.DB,
	limitService service.LimitService,
) api.Handlers {
	return api.Handlers{
		Health: v1.NewHealthHandler(db, log),
		Limit:  v1.NewLimitHandler(limitService, log),
	}
}

func provideRouter(handlers api.Handlers, cfg *config.Configuration, log *logger.Logger) *gin.Engine {
	return api.NewRouter(handlers, cfg, log)
}

func registerCloseHooks(lc fx.Lifecycle, db *postgres.DB, ch *clickhouse.ClickHouseStore, log *logger.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info("closing database connections")
			db.Close()
			if ch != nil {
				if err := ch.Close(); err != nil {
					log.Errorw("failed to close clickhouse connection", "error", err)
				}
			}
			return nil
		},
	})
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	log *logger.Logger,
) {
	mode := cfg.Deployment.Mode
	if mode == "" {
		mode = types.ModeLocal
	}

	switch mode {
	case types.ModeLocal, types.ModeAPI:
		log.Infow("starting purchase limit service",
			"mode", mode,
			"history_source", cfg.Limit.HistorySource,
			"rule_source", cfg.Limit.RuleSource,
			"timezone", cfg.Limit.Timezone,
			"parallel_rules", cfg.Limit.ParallelRules,
		)
		startAPIServer(lc, r, cfg, log)
	default:
		log.Fatalf("Unknown deployment mode: %s", mode)
	}
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	log.Info("Registering API server start hook")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("Starting API server...", "address", cfg.Server.Address)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return srv.Shutdown(ctx)
		},
	})
}
