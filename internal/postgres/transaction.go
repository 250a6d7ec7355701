package postgres

import (
	"context"
	"database/sql"
	"sync"

	ierr "github.com/flexprice/orderlimit/internal/errors"
	"github.com/flexprice/orderlimit/internal/types"
	"github.com/jmoiron/sqlx"
)

// TxKey is the context key type for storing transaction
type TxKey struct{}

// Tx wraps sqlx.Tx with an id for tracing
type Tx struct {
	*sqlx.Tx
	ID string

	// a transaction owns a single connection, statements on it must not interleave
	mu sync.Mutex
}

// querier returns a view of the transaction that runs one statement at a time
func (tx *Tx) querier() Querier {
	return &serializedQuerier{Querier: tx.Tx, mu: &tx.mu}
}

// serializedQuerier lets concurrent callers share one transaction. GetContext
// and SelectContext close their rows before returning, so holding the lock for
// the call covers the whole result set.
type serializedQuerier struct {
	Querier
	mu *sync.Mutex
}

func (q *serializedQuerier) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.Querier.ExecContext(ctx, query, args...)
}

func (q *serializedQuerier) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.Querier.GetContext(ctx, dest, query, args...)
}

func (q *serializedQuerier) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.Querier.SelectContext(ctx, dest, query, args...)
}

// GetTx retrieves a transaction from the context if it exists
func GetTx(ctx context.Context) (*Tx, bool) {
	tx, ok := ctx.Value(TxKey{}).(*Tx)
	return tx, ok
}

// WithSnapshot executes fn within a repeatable read, read only transaction.
// Nested calls reuse the outer snapshot.
func (db *DB) WithSnapshot(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := GetTx(ctx); ok {
		return fn(ctx)
	}

	sqlxTx, err := db.BeginTxx(ctx, &sql.TxOptions{
		Isolation: sql.LevelRepeatableRead,
		ReadOnly:  true,
	})
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to begin read snapshot").
			Mark(ierr.ErrDatabase)
	}

	tx := &Tx{
		Tx: sqlxTx,
		ID: types.GenerateUUID(),
	}
	db.logger.Debugw("starting read snapshot", "tx_id", tx.ID)

	defer func() {
		if r := recover(); r != nil {
			db.logger.Errorw("panic in read snapshot", "tx_id", tx.ID, "panic", r)
			_ = tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(context.WithValue(ctx, TxKey{}, tx)); err != nil {
		// read only, nothing to keep
		if rbErr := tx.Rollback(); rbErr != nil {
			db.logger.Warnw("failed to release read snapshot", "tx_id", tx.ID, "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to release read snapshot").
			Mark(ierr.ErrDatabase)
	}
	return nil
}
