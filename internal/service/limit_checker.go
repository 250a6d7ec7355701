package service

import (
	"context"
	"time"

	"github.com/flexprice/orderlimit/internal/domain/catalog"
	"github.com/flexprice/orderlimit/internal/domain/limitrule"
	ierr "github.com/flexprice/orderlimit/internal/errors"
	"github.com/flexprice/orderlimit/internal/logger"
	"github.com/flexprice/orderlimit/internal/types"
)

// ruleHandler evaluates one rule. It returns a violation when the rule
// fails and an error only when evaluation itself could not complete.
type ruleHandler func(ctx context.Context, rule *limitrule.Rule, evalCtx *EvaluationContext) (*LimitViolation, error)

// checkerDeps are shared by the checkers of every granularity
type checkerDeps struct {
	logger   *logger.Logger
	catalog  catalog.Repository
	history  *purchaseHistory
	messages limitMessages
	now      func() time.Time
}

// limitChecker evaluates the rules of one granularity through a closed
// dispatch table. Rule types missing from the table have no effect.
type limitChecker struct {
	checkerDeps
	granularity types.LimitGranularity
	handlers    map[types.LimitRuleType]ruleHandler
}

func newLimitChecker(g types.LimitGranularity, deps checkerDeps) *limitChecker {
	return &limitChecker{
		checkerDeps: deps,
		granularity: g,
	}
}

// withQuotaHandlers routes the lifetime and calendar caps to enforceQuota
func (c *limitChecker) withQuotaHandlers(handlers map[types.LimitRuleType]ruleHandler) map[types.LimitRuleType]ruleHandler {
	for _, t := range types.LimitRuleTypes {
		if t.IsQuota() {
			handlers[t] = c.enforceQuota
		}
	}
	return handlers
}

func (c *limitChecker) check(ctx context.Context, rule *limitrule.Rule, evalCtx *EvaluationContext) (*LimitViolation, error) {
	if !rule.HasValue() {
		c.logger.Warnw("limit rule has no value, skipping",
			"rule_id", rule.ID,
			"granularity", c.granularity,
			"type", rule.Type,
		)
		return nil, nil
	}

	handler, ok := c.handlers[rule.Type]
	if !ok {
		c.logger.Debugw("limit rule type has no effect at this granularity",
			"rule_id", rule.ID,
			"granularity", c.granularity,
			"type", rule.Type,
		)
		return nil, nil
	}

	c.logger.Debugw("checking limit rule",
		"rule_id", rule.ID,
		"granularity", c.granularity,
		"type", rule.Type,
		"target_id", c.targetID(evalCtx),
		"user_id", evalCtx.UserID,
	)

	violation, err := handler(ctx, rule, evalCtx)
	if err != nil {
		return nil, err
	}
	if violation != nil {
		c.logger.Warnw("limit rule violated",
			"rule_id", rule.ID,
			"granularity", c.granularity,
			"type", rule.Type,
			"code", violation.Code,
			"limit", violation.Limit,
			"actual_count", violation.ActualCount,
			"user_id", evalCtx.UserID,
		)
		return violation, nil
	}

	c.logger.Debugw("limit rule passed",
		"rule_id", rule.ID,
		"granularity", c.granularity,
		"type", rule.Type,
	)
	return nil, nil
}

// targetID is the catalog entity the context is evaluated for
func (c *limitChecker) targetID(evalCtx *EvaluationContext) string {
	switch c.granularity {
	case types.LimitGranularitySPU:
		return evalCtx.SPUID
	case types.LimitGranularityCategory:
		return evalCtx.CategoryID
	default:
		return evalCtx.SKUID
	}
}

// incoming is the quantity the order adds to the target. SPU and category
// caps count every matching line item of the order, not just this one.
func (c *limitChecker) incoming(evalCtx *EvaluationContext) int64 {
	switch c.granularity {
	case types.LimitGranularitySPU:
		return evalCtx.SPUQuantityInOrder
	case types.LimitGranularityCategory:
		return evalCtx.CategoryQuantityInOrder
	default:
		return evalCtx.Quantity
	}
}

// enforceQuota handles BUY_TOTAL and the calendar period caps
func (c *limitChecker) enforceQuota(ctx context.Context, rule *limitrule.Rule, evalCtx *EvaluationContext) (*LimitViolation, error) {
	var window *types.TimeRange
	if rule.Type.IsPeriodic() {
		period := types.GetLimitPeriodRange(rule.Type, c.now())
		window = &period
	}

	target := types.LimitTarget{Granularity: c.granularity, ID: c.targetID(evalCtx)}
	prior, err := c.history.count(ctx, evalCtx, target, window)
	if err != nil {
		return nil, c.lookupFailure(ctx, rule, err)
	}

	decision := DecideLimit(prior, c.incoming(evalCtx), rule.LimitValue())
	if decision.Passed() {
		return nil, nil
	}
	return newQuotaViolation(c.granularity, rule.ID, target.ID, decision, c.messages.quota(c.granularity, decision)), nil
}

// ignoreCoupon keeps SPECIFY_COUPON rules inert. Coupon restrictions are
// retired; the rule is only logged.
func (c *limitChecker) ignoreCoupon(_ context.Context, rule *limitrule.Rule, _ *EvaluationContext) (*LimitViolation, error) {
	c.logger.Debugw("coupon restriction rules are not enforced",
		"rule_id", rule.ID,
		"granularity", c.granularity,
		"coupon_ids", types.ParseLimitValueList(rule.Value),
	)
	return nil, nil
}

// lookupFailure lets the rule pass when a collaborator lookup failed, unless
// the caller gave up, which is reported as an error.
func (c *limitChecker) lookupFailure(ctx context.Context, rule *limitrule.Rule, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ierr.WithError(ctxErr).
			WithHint("Purchase limit check was cancelled").
			Mark(ierr.ErrSystem)
	}
	c.logger.Warnw("limit rule lookup failed, treating rule as passed",
		"rule_id", rule.ID,
		"granularity", c.granularity,
		"type", rule.Type,
		"error", err,
	)
	return nil
}
