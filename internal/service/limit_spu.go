package service

import (
	"github.com/flexprice/orderlimit/internal/types"
)

// SPU rules cap the whole order's quantity of a product. There is no
// current order mutex scan at this level; mutex rules only look at history.
func newSPULimitChecker(deps checkerDeps) *limitChecker {
	c := newLimitChecker(types.LimitGranularitySPU, deps)
	c.handlers = c.withQuotaHandlers(map[types.LimitRuleType]ruleHandler{
		types.LimitRuleTypeSpecifyCoupon: c.ignoreCoupon,
		types.LimitRuleTypeMutex:         c.enforceMutex,
	})
	return c
}
