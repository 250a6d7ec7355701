package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/flexprice/orderlimit/internal/logger"
)

// QueryTracer wraps database operations with timing logs
type QueryTracer struct {
	logger *logger.Logger
	query  string
	params interface{}
	start  time.Time
	txID   string
}

func NewQueryTracer(logger *logger.Logger, query string, params interface{}, txID string) *QueryTracer {
	return &QueryTracer{
		logger: logger,
		query:  query,
		params: params,
		start:  time.Now(),
		txID:   txID,
	}
}

// Done logs the query completion. sql.ErrNoRows is not a failure.
func (qt *QueryTracer) Done(err error) {
	fields := []interface{}{
		"duration_ms", time.Since(qt.start).Milliseconds(),
		"query", qt.query,
		"params", fmt.Sprintf("%+v", qt.params),
	}
	if qt.txID != "" {
		fields = append(fields, "tx_id", qt.txID)
	}
	if err != nil && err != sql.ErrNoRows {
		fields = append(fields, "error", err.Error())
		qt.logger.Errorw("database query failed", fields...)
		return
	}
	qt.logger.Debugw("database query completed", fields...)
}

// TracedQuerier wraps a Querier with tracing
type TracedQuerier struct {
	Querier
	logger *logger.Logger
	txID   string
}

func NewTracedQuerier(q Querier, logger *logger.Logger, txID string) *TracedQuerier {
	return &TracedQuerier{
		Querier: q,
		logger:  logger,
		txID:    txID,
	}
}

func (tq *TracedQuerier) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	tracer := NewQueryTracer(tq.logger, query, args, tq.txID)
	result, err := tq.Querier.ExecContext(ctx, query, args...)
	tracer.Done(err)
	return result, err
}

func (tq *TracedQuerier) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	tracer := NewQueryTracer(tq.logger, query, args, tq.txID)
	err := tq.Querier.GetContext(ctx, dest, query, args...)
	tracer.Done(err)
	return err
}

func (tq *TracedQuerier) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	tracer := NewQueryTracer(tq.logger, query, args, tq.txID)
	err := tq.Querier.SelectContext(ctx, dest, query, args...)
	tracer.Done(err)
	return err
}
