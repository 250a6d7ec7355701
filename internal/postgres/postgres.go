package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/flexprice/orderlimit/internal/config"
	ierr "github.com/flexprice/orderlimit/internal/errors"
	"github.com/flexprice/orderlimit/internal/logger"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// IClient is the database surface the service layer depends on
type IClient interface {
	// WithSnapshot runs fn inside a read only transaction so that every
	// read issued through GetQuerier(ctx) observes the same snapshot
	WithSnapshot(ctx context.Context, fn func(ctx context.Context) error) error
}

// DB wraps sqlx.DB to provide snapshot management
type DB struct {
	*sqlx.DB
	logger *logger.Logger
}

// Querier defines the read operations used by the repositories.
// Both *sqlx.DB and *sqlx.Tx implement these methods
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	Rebind(query string) string
}

// NewDB opens the connection pool and verifies it with a ping
func NewDB(cfg *config.Configuration, logger *logger.Logger) (*DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Postgres.GetDSN())
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to connect to postgres").
			Mark(ierr.ErrDatabase)
	}

	if cfg.Postgres.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
	}
	if cfg.Postgres.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
	}
	if cfg.Postgres.ConnMaxLifetimeMinutes > 0 {
		db.SetConnMaxLifetime(time.Duration(cfg.Postgres.ConnMaxLifetimeMinutes) * time.Minute)
	}

	logger.Infow("connected to postgres",
		"host", cfg.Postgres.Host,
		"dbname", cfg.Postgres.DBName,
	)

	return NewDBFromConn(db, logger), nil
}

// NewDBFromConn wraps an already opened handle
func NewDBFromConn(db *sqlx.DB, logger *logger.Logger) *DB {
	return &DB{DB: db, logger: logger}
}

// Close closes the database connection
func (db *DB) Close() {
	if err := db.DB.Close(); err != nil {
		db.logger.Errorw("error closing database", "error", err)
	}
}

// GetQuerier returns either the snapshot transaction from context or the base DB
func (db *DB) GetQuerier(ctx context.Context) Querier {
	if tx, ok := GetTx(ctx); ok {
		return NewTracedQuerier(tx.querier(), db.logger, tx.ID)
	}
	return NewTracedQuerier(db.DB, db.logger, "")
}
