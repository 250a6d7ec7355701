package service

import (
	"strconv"
	"strings"

	"github.com/flexprice/orderlimit/internal/config"
	"github.com/flexprice/orderlimit/internal/types"
)

// Default user facing messages. {limit}, {rest} and {count} are substituted.
const (
	DefaultBuyLimitAlertMessage = "最多只能购买{limit}件"
	DefaultRestLimitMessage     = "只能继续购买{rest}件"
	DefaultMaxBuyLimitMessage   = "已达到购买上限"
	DefaultMinQuantityMessage   = "最少需要购买{limit}件"
	DefaultMutexMessage         = "您不符合购买资格"
)

// limitMessages renders violation messages from configured overrides
type limitMessages struct {
	templates config.MessageTemplates
}

func newLimitMessages(templates config.MessageTemplates) limitMessages {
	return limitMessages{templates: templates}
}

// quota renders the message for a failed BUY_* decision
func (m limitMessages) quota(g types.LimitGranularity, d LimitDecision) string {
	if d.Result == types.LimitDecisionHardExceeded {
		return render(firstNonEmpty(m.templates.BuyLimitAlert(g), DefaultBuyLimitAlertMessage), d.Limit, d.Rest, d.Prior)
	}
	if d.Rest > 0 {
		return render(DefaultRestLimitMessage, d.Limit, d.Rest, d.Prior)
	}
	return render(firstNonEmpty(m.templates.MaxBuyLimit, DefaultMaxBuyLimitMessage), d.Limit, 0, d.Prior)
}

func (m limitMessages) minQuantity(minimum, quantity int64) string {
	return render(DefaultMinQuantityMessage, minimum, 0, quantity)
}

func (m limitMessages) mutex() string {
	return DefaultMutexMessage
}

func render(template string, limit, rest, count int64) string {
	return strings.NewReplacer(
		"{limit}", strconv.FormatInt(limit, 10),
		"{rest}", strconv.FormatInt(rest, 10),
		"{count}", strconv.FormatInt(count, 10),
	).Replace(template)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
