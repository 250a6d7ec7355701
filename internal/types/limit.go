package types

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	ierr "github.com/flexprice/orderlimit/internal/errors"
	"github.com/samber/lo"
)

// LimitGranularity is the catalog level a limit rule is attached to
type LimitGranularity string

const (
	LimitGranularitySKU      LimitGranularity = "SKU"
	LimitGranularitySPU      LimitGranularity = "SPU"
	LimitGranularityCategory LimitGranularity = "CATEGORY"
)

func (g LimitGranularity) String() string {
	return string(g)
}

func (g LimitGranularity) Validate() error {
	allowed := []LimitGranularity{
		LimitGranularitySKU,
		LimitGranularitySPU,
		LimitGranularityCategory,
	}
	if !lo.Contains(allowed, g) {
		return ierr.NewError("invalid limit granularity").
			WithHint("Limit granularity must be one of SKU, SPU or CATEGORY").
			WithReportableDetails(map[string]any{
				"granularity": g,
				"allowed":     allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// LimitRuleType is the closed set of rule types understood by the engine
type LimitRuleType string

const (
	LimitRuleTypeMinQuantity   LimitRuleType = "MIN_QUANTITY"
	LimitRuleTypeSpecifyCoupon LimitRuleType = "SPECIFY_COUPON"
	LimitRuleTypeMutex         LimitRuleType = "MUTEX"
	LimitRuleTypeBuyTotal      LimitRuleType = "BUY_TOTAL"
	LimitRuleTypeBuyYear       LimitRuleType = "BUY_YEAR"
	LimitRuleTypeBuyQuarter    LimitRuleType = "BUY_QUARTER"
	LimitRuleTypeBuyMonth      LimitRuleType = "BUY_MONTH"
	LimitRuleTypeBuyDaily      LimitRuleType = "BUY_DAILY"
)

var LimitRuleTypes = []LimitRuleType{
	LimitRuleTypeMinQuantity,
	LimitRuleTypeSpecifyCoupon,
	LimitRuleTypeMutex,
	LimitRuleTypeBuyTotal,
	LimitRuleTypeBuyYear,
	LimitRuleTypeBuyQuarter,
	LimitRuleTypeBuyMonth,
	LimitRuleTypeBuyDaily,
}

func (t LimitRuleType) String() string {
	return string(t)
}

func (t LimitRuleType) Validate() error {
	if !lo.Contains(LimitRuleTypes, t) {
		return ierr.NewError("invalid limit rule type").
			WithHint("Limit rule type is not supported").
			WithReportableDetails(map[string]any{
				"type":    t,
				"allowed": LimitRuleTypes,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsPeriodic reports whether the rule caps purchases inside a calendar period
func (t LimitRuleType) IsPeriodic() bool {
	switch t {
	case LimitRuleTypeBuyYear, LimitRuleTypeBuyQuarter, LimitRuleTypeBuyMonth, LimitRuleTypeBuyDaily:
		return true
	}
	return false
}

// IsQuota reports whether the rule is a lifetime or periodic purchase cap
func (t LimitRuleType) IsQuota() bool {
	return t == LimitRuleTypeBuyTotal || t.IsPeriodic()
}

// SupportedBy reports whether the rule type has an effect at granularity g.
// Unsupported combinations are accepted by the store but never fire.
func (t LimitRuleType) SupportedBy(g LimitGranularity) bool {
	switch t {
	case LimitRuleTypeMinQuantity:
		return g == LimitGranularitySKU
	case LimitRuleTypeMutex:
		return g == LimitGranularitySKU || g == LimitGranularitySPU
	case LimitRuleTypeSpecifyCoupon:
		return false
	}
	return t.IsQuota()
}

// LimitDecisionResult is the outcome of comparing a quota against purchases
type LimitDecisionResult string

const (
	LimitDecisionPass         LimitDecisionResult = "PASS"
	LimitDecisionHardExceeded LimitDecisionResult = "HARD_EXCEEDED"
	LimitDecisionRestExceeded LimitDecisionResult = "REST_EXCEEDED"
)

// LimitViolationKind distinguishes why a purchase was rejected
type LimitViolationKind string

const (
	LimitViolationKindHardExceeded      LimitViolationKind = "HARD_EXCEEDED"
	LimitViolationKindRestExceeded      LimitViolationKind = "REST_EXCEEDED"
	LimitViolationKindMinQuantity       LimitViolationKind = "MIN_QUANTITY"
	LimitViolationKindMutexCurrentOrder LimitViolationKind = "MUTEX_CURRENT_ORDER"
	LimitViolationKindMutexHistory      LimitViolationKind = "MUTEX_HISTORY"
)

// LimitViolationCode is the stable machine readable code reported to clients
type LimitViolationCode string

const (
	LimitViolationCodeSKULimit             LimitViolationCode = "SKU_LIMIT"
	LimitViolationCodeSKURestLimit         LimitViolationCode = "SKU_REST_LIMIT"
	LimitViolationCodeSPULimit             LimitViolationCode = "SPU_LIMIT"
	LimitViolationCodeSPURestLimit         LimitViolationCode = "SPU_REST_LIMIT"
	LimitViolationCodeCategoryLimit        LimitViolationCode = "CATEGORY_LIMIT"
	LimitViolationCodeCategoryRestLimit    LimitViolationCode = "CATEGORY_REST_LIMIT"
	LimitViolationCodeMinQuantityLimit     LimitViolationCode = "MIN_QUANTITY_LIMIT"
	LimitViolationCodeSKUMutexCurrentOrder LimitViolationCode = "SKU_MUTEX_CURRENT_ORDER"
	LimitViolationCodeSKUMutexHistory      LimitViolationCode = "SKU_MUTEX_HISTORY"
	LimitViolationCodeSPUMutex             LimitViolationCode = "SPU_MUTEX"
)

// QuotaViolationCode returns the code for a hard or rest quota breach at granularity g
func QuotaViolationCode(g LimitGranularity, result LimitDecisionResult) LimitViolationCode {
	rest := result == LimitDecisionRestExceeded
	switch g {
	case LimitGranularitySPU:
		return lo.Ternary(rest, LimitViolationCodeSPURestLimit, LimitViolationCodeSPULimit)
	case LimitGranularityCategory:
		return lo.Ternary(rest, LimitViolationCodeCategoryRestLimit, LimitViolationCodeCategoryLimit)
	default:
		return lo.Ternary(rest, LimitViolationCodeSKURestLimit, LimitViolationCodeSKULimit)
	}
}

// LimitTarget identifies the catalog entity purchases are counted against
type LimitTarget struct {
	Granularity LimitGranularity `json:"granularity"`
	ID          string           `json:"id"`
}

func (t LimitTarget) Validate() error {
	if err := t.Granularity.Validate(); err != nil {
		return err
	}
	if t.ID == "" {
		return ierr.NewError("limit target id is required").
			WithHint("Limit target id is required").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// PurchaseHistoryQuery selects the purchases summed by a history repository.
// A nil Window means the user's whole history.
type PurchaseHistoryQuery struct {
	UserID         string
	Target         LimitTarget
	Window         *TimeRange
	ExcludeOrderID string
}

func (q *PurchaseHistoryQuery) Validate() error {
	if q.UserID == "" {
		return ierr.NewError("user id is required").
			WithHint("User id is required to read purchase history").
			Mark(ierr.ErrValidation)
	}
	if err := q.Target.Validate(); err != nil {
		return err
	}
	if q.Window != nil {
		return q.Window.Validate()
	}
	return nil
}

// ParseLimitValue reads the leading integer of a rule value. Surrounding
// whitespace is ignored; a value without a leading integer yields 0, so
// "5", " 5 " and "5pcs" all parse to 5.
func ParseLimitValue(value string) int64 {
	s := strings.TrimLeftFunc(value, unicode.IsSpace)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}

	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		// out of range
		if s[0] == '-' {
			return math.MinInt64
		}
		return math.MaxInt64
	}
	return n
}

// ParseLimitValueList splits a comma separated rule value, dropping blanks
func ParseLimitValueList(value string) []string {
	parts := lo.Map(strings.Split(value, ","), func(p string, _ int) string {
		return strings.TrimSpace(p)
	})
	return lo.Compact(parts)
}
