package service

import (
	"github.com/flexprice/orderlimit/internal/types"
)

// Category rules only cap quantities, summed over every product of the
// category in the order.
func newCategoryLimitChecker(deps checkerDeps) *limitChecker {
	c := newLimitChecker(types.LimitGranularityCategory, deps)
	c.handlers = c.withQuotaHandlers(map[types.LimitRuleType]ruleHandler{
		types.LimitRuleTypeSpecifyCoupon: c.ignoreCoupon,
	})
	return c
}
