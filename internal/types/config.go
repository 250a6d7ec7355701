package types

import (
	ierr "github.com/flexprice/orderlimit/internal/errors"
	"github.com/samber/lo"
)

type RunMode string

const (
	// ModeLocal is the mode for running the API server against local backends
	ModeLocal RunMode = "local"
	// ModeAPI is the mode for running just the API server
	ModeAPI RunMode = "api"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// HistorySource selects the backend that answers purchase history aggregations
type HistorySource string

const (
	HistorySourcePostgres   HistorySource = "postgres"
	HistorySourceClickHouse HistorySource = "clickhouse"
)

func (s HistorySource) Validate() error {
	allowed := []HistorySource{
		HistorySourcePostgres,
		HistorySourceClickHouse,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid history source").
			WithHint("Purchase history source must be postgres or clickhouse").
			WithReportableDetails(map[string]any{
				"history_source": s,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// RuleSource selects where limit rules are loaded from
type RuleSource string

const (
	RuleSourcePostgres RuleSource = "postgres"
	RuleSourceFile     RuleSource = "file"
)

func (s RuleSource) Validate() error {
	allowed := []RuleSource{
		RuleSourcePostgres,
		RuleSourceFile,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid rule source").
			WithHint("Limit rule source must be postgres or file").
			WithReportableDetails(map[string]any{
				"rule_source": s,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
