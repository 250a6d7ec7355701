package service

import (
	"github.com/flexprice/orderlimit/internal/types"
)

// LimitDecision is the outcome of checking a quantity against a purchase cap
type LimitDecision struct {
	Result types.LimitDecisionResult
	Limit  int64
	// Prior is what the user already bought in the window
	Prior    int64
	Incoming int64
	// Rest is limit - prior on REST_EXCEEDED, limit - prior - incoming on PASS
	// and 0 on HARD_EXCEEDED
	Rest int64
}

func (d LimitDecision) Passed() bool {
	return d.Result == types.LimitDecisionPass
}

// DecideLimit applies the two stage cap check. A prior count already above
// the limit is a hard breach; otherwise the purchase fails when it would
// push the total over the limit.
func DecideLimit(prior, incoming, limit int64) LimitDecision {
	d := LimitDecision{
		Limit:    limit,
		Prior:    prior,
		Incoming: incoming,
	}

	// past the first case prior <= limit, so limit - prior cannot overflow
	switch {
	case prior > limit:
		d.Result = types.LimitDecisionHardExceeded
	case incoming > limit-prior:
		d.Result = types.LimitDecisionRestExceeded
		d.Rest = limit - prior
	default:
		d.Result = types.LimitDecisionPass
		d.Rest = limit - prior - incoming
	}
	return d
}
