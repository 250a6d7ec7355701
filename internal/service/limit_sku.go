package service

import (
	"context"

	"github.com/flexprice/orderlimit/internal/domain/limitrule"
	"github.com/flexprice/orderlimit/internal/types"
)

func newSKULimitChecker(deps checkerDeps) *limitChecker {
	c := newLimitChecker(types.LimitGranularitySKU, deps)
	c.handlers = c.withQuotaHandlers(map[types.LimitRuleType]ruleHandler{
		types.LimitRuleTypeMinQuantity:   c.enforceMinQuantity,
		types.LimitRuleTypeSpecifyCoupon: c.ignoreCoupon,
		types.LimitRuleTypeMutex:         c.enforceMutex,
	})
	return c
}

// enforceMinQuantity rejects line items buying fewer units than the rule value
func (c *limitChecker) enforceMinQuantity(_ context.Context, rule *limitrule.Rule, evalCtx *EvaluationContext) (*LimitViolation, error) {
	minimum := rule.LimitValue()
	if evalCtx.Quantity >= minimum {
		return nil, nil
	}
	return newMinQuantityViolation(rule.ID, evalCtx.SKUID, minimum, evalCtx.Quantity, c.messages.minQuantity(minimum, evalCtx.Quantity)), nil
}
