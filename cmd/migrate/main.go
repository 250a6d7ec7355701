package main

import (
	"context"
	"embed"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/flexprice/orderlimit/internal/clickhouse"
	"github.com/flexprice/orderlimit/internal/config"
	"github.com/flexprice/orderlimit/internal/logger"
	"github.com/flexprice/orderlimit/internal/postgres"
	"github.com/joho/godotenv"
	"github.com/samber/lo"
)

//go:embed migrations/*.sql
var migrations embed.FS

func main() {
	// Parse command line flags
	dryRun := flag.Bool("dry-run", false, "Print migration SQL without executing it")
	withClickHouse := flag.Bool("clickhouse", false, "Also create the clickhouse purchase history table")
	flag.Parse()

	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := logger.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	pgSchema := mustRead("migrations/postgres.sql")
	chStatements := splitStatements(mustRead("migrations/clickhouse.sql"))

	if *dryRun {
		logger.Info("Dry run mode - printing migration SQL without executing")
		fmt.Println(pgSchema)
		if *withClickHouse {
			for _, stmt := range chStatements {
				fmt.Printf("%s;\n", stmt)
			}
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Infow("Connecting to database", "host", cfg.Postgres.Host)
	db, err := postgres.NewDB(cfg, logger)
	if err != nil {
		logger.Fatalw("Failed to connect to postgres", "error", err)
	}
	defer db.Close()

	logger.Info("Running postgres migrations...")
	if _, err := db.ExecContext(ctx, pgSchema); err != nil {
		logger.Fatalw("Failed to create schema resources", "error", err)
	}

	if *withClickHouse {
		store, err := clickhouse.NewClickHouseStore(cfg, logger)
		if err != nil {
			logger.Fatalw("Failed to connect to clickhouse", "error", err)
		}
		defer store.Close()

		logger.Info("Running clickhouse migrations...")
		for _, stmt := range chStatements {
			if err := store.GetConn().Exec(ctx, stmt); err != nil {
				logger.Fatalw("Failed to create clickhouse table", "error", err)
			}
		}
	}

	logger.Info("Migration completed successfully")
	fmt.Println("Migration process completed")
}

func mustRead(name string) string {
	data, err := migrations.ReadFile(name)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", name, err)
	}
	return string(data)
}

// splitStatements breaks a script into single statements, clickhouse
// does not accept multi statement queries
func splitStatements(script string) []string {
	return lo.Compact(lo.Map(strings.Split(script, ";"), func(stmt string, _ int) string {
		return strings.TrimSpace(stmt)
	}))
}
