package postgres

import (
	"context"

	"github.com/flexprice/orderlimit/internal/domain/limitrule"
	ierr "github.com/flexprice/orderlimit/internal/errors"
	"github.com/flexprice/orderlimit/internal/logger"
	"github.com/flexprice/orderlimit/internal/postgres"
	"github.com/flexprice/orderlimit/internal/types"
)

type limitRuleRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewLimitRuleRepository(db *postgres.DB, logger *logger.Logger) limitrule.Repository {
	return &limitRuleRepository{db: db, logger: logger}
}

func (r *limitRuleRepository) ListByTarget(ctx context.Context, granularity types.LimitGranularity, targetID string) ([]*limitrule.Rule, error) {
	query := `
		SELECT id, granularity, target_id, type, value, display_order, status, created_at, updated_at
		FROM limit_rules
		WHERE granularity = :granularity
			AND target_id = :target_id
			AND status = :status
		ORDER BY display_order, id`

	q := r.db.GetQuerier(ctx)
	bound, args, err := bindNamed(q, query, map[string]interface{}{
		"granularity": string(granularity),
		"target_id":   targetID,
		"status":      string(types.StatusActive),
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to build limit rule query").
			Mark(ierr.ErrSystem)
	}

	var rules []*limitrule.Rule
	if err := q.SelectContext(ctx, &rules, bound, args...); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list limit rules").
			WithReportableDetails(map[string]any{
				"granularity": granularity,
				"target_id":   targetID,
			}).
			Mark(ierr.ErrDatabase)
	}

	r.logger.Debugw("listed limit rules",
		"granularity", granularity,
		"target_id", targetID,
		"count", len(rules),
	)

	return rules, nil
}
