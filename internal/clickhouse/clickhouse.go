package clickhouse

import (
	"context"
	"time"

	clickhouse_go "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/flexprice/orderlimit/internal/config"
	ierr "github.com/flexprice/orderlimit/internal/errors"
	"github.com/flexprice/orderlimit/internal/logger"
)

// ClickHouseStore holds the analytics connection used for purchase history reads
type ClickHouseStore struct {
	conn   driver.Conn
	logger *logger.Logger
}

func NewClickHouseStore(cfg *config.Configuration, logger *logger.Logger) (*ClickHouseStore, error) {
	conn, err := clickhouse_go.Open(cfg.ClickHouse.GetClientOptions())
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to initialize clickhouse client").
			Mark(ierr.ErrDatabase)
	}

	logger.Infow("connected to clickhouse",
		"address", cfg.ClickHouse.Address,
		"database", cfg.ClickHouse.Database,
	)

	return &ClickHouseStore{
		conn:   conn,
		logger: logger,
	}, nil
}

// GetConn returns the underlying connection
func (s *ClickHouseStore) GetConn() driver.Conn {
	return s.conn
}

func (s *ClickHouseStore) Ping(ctx context.Context) error {
	return s.conn.Ping(ctx)
}

func (s *ClickHouseStore) Close() error {
	return s.conn.Close()
}

// QueryRow runs a single row query and logs its duration
func (s *ClickHouseStore) QueryRow(ctx context.Context, query string, args ...any) driver.Row {
	start := time.Now()
	row := s.conn.QueryRow(ctx, query, args...)
	s.logger.Debugw("clickhouse query completed",
		"duration_ms", time.Since(start).Milliseconds(),
		"query", truncateQuery(query),
		"args_count", len(args),
	)
	return row
}

// truncateQuery keeps logged queries bounded
func truncateQuery(query string) string {
	const maxQueryLength = 1000
	if len(query) > maxQueryLength {
		return query[:maxQueryLength] + "..."
	}
	return query
}
