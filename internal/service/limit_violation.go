package service

import (
	"fmt"

	ierr "github.com/flexprice/orderlimit/internal/errors"
	"github.com/flexprice/orderlimit/internal/types"
)

// LimitViolation explains why a line item was rejected by a limit rule
type LimitViolation struct {
	Kind        types.LimitViolationKind `json:"kind"`
	Code        types.LimitViolationCode `json:"code"`
	Granularity types.LimitGranularity   `json:"granularity"`
	RuleID      string                   `json:"rule_id"`
	// TargetID is the catalog entity the count refers to. For mutex
	// violations it is the conflicting item.
	TargetID    string `json:"target_id"`
	Limit       int64  `json:"limit"`
	Rest        int64  `json:"rest"`
	ActualCount int64  `json:"actual_count"`
	Message     string `json:"message"`
}

func (v *LimitViolation) Error() string {
	return fmt.Sprintf("%s: %s", v.Code, v.Message)
}

func (v *LimitViolation) details() map[string]any {
	return map[string]any{
		"kind":         v.Kind,
		"code":         v.Code,
		"granularity":  v.Granularity,
		"rule_id":      v.RuleID,
		"target_id":    v.TargetID,
		"limit":        v.Limit,
		"rest":         v.Rest,
		"actual_count": v.ActualCount,
	}
}

// toError wraps the violation so it carries the user facing hint and maps to 422
func (v *LimitViolation) toError() error {
	return ierr.WithError(v).
		WithHint(v.Message).
		WithReportableDetails(v.details()).
		Mark(ierr.ErrLimitExceeded)
}

// AsLimitViolation extracts the violation from an error returned by LimitService
func AsLimitViolation(err error) (*LimitViolation, bool) {
	var v *LimitViolation
	if err != nil && ierr.As(err, &v) {
		return v, true
	}
	return nil, false
}

// newQuotaViolation reports a hard or rest breach of a BUY_* rule
func newQuotaViolation(g types.LimitGranularity, ruleID, targetID string, d LimitDecision, message string) *LimitViolation {
	kind := types.LimitViolationKindHardExceeded
	if d.Result == types.LimitDecisionRestExceeded {
		kind = types.LimitViolationKindRestExceeded
	}
	return &LimitViolation{
		Kind:        kind,
		Code:        types.QuotaViolationCode(g, d.Result),
		Granularity: g,
		RuleID:      ruleID,
		TargetID:    targetID,
		Limit:       d.Limit,
		Rest:        d.Rest,
		ActualCount: d.Prior,
		Message:     message,
	}
}

func newMinQuantityViolation(ruleID, skuID string, minimum, quantity int64, message string) *LimitViolation {
	return &LimitViolation{
		Kind:        types.LimitViolationKindMinQuantity,
		Code:        types.LimitViolationCodeMinQuantityLimit,
		Granularity: types.LimitGranularitySKU,
		RuleID:      ruleID,
		TargetID:    skuID,
		Limit:       minimum,
		ActualCount: quantity,
		Message:     message,
	}
}

func newMutexViolation(kind types.LimitViolationKind, g types.LimitGranularity, ruleID, conflictID string, count int64, message string) *LimitViolation {
	code := types.LimitViolationCodeSPUMutex
	if g == types.LimitGranularitySKU {
		code = types.LimitViolationCodeSKUMutexHistory
		if kind == types.LimitViolationKindMutexCurrentOrder {
			code = types.LimitViolationCodeSKUMutexCurrentOrder
		}
	}
	return &LimitViolation{
		Kind:        kind,
		Code:        code,
		Granularity: g,
		RuleID:      ruleID,
		TargetID:    conflictID,
		ActualCount: count,
		Message:     message,
	}
}
