package limitrule

import (
	"sort"
	"strings"

	ierr "github.com/flexprice/orderlimit/internal/errors"
	"github.com/flexprice/orderlimit/internal/types"
)

// Rule is a purchase limit attached to a SKU, a SPU or a category
type Rule struct {
	ID           string                 `db:"id" json:"id" yaml:"id"`
	Granularity  types.LimitGranularity `db:"granularity" json:"granularity" yaml:"granularity"`
	TargetID     string                 `db:"target_id" json:"target_id" yaml:"target_id"`
	Type         types.LimitRuleType    `db:"type" json:"type" yaml:"type"`
	Value        string                 `db:"value" json:"value" yaml:"value"`
	DisplayOrder int                    `db:"display_order" json:"display_order" yaml:"display_order"`
	types.BaseModel `yaml:",inline"`
}

// HasValue reports whether the rule is configured. Rules without a value are inert.
func (r *Rule) HasValue() bool {
	return strings.TrimSpace(r.Value) != ""
}

// LimitValue returns the numeric payload of quantity based rules
func (r *Rule) LimitValue() int64 {
	return types.ParseLimitValue(r.Value)
}

// Target returns the catalog entity this rule is attached to
func (r *Rule) Target() types.LimitTarget {
	return types.LimitTarget{Granularity: r.Granularity, ID: r.TargetID}
}

func (r *Rule) Validate() error {
	if r.ID == "" {
		return ierr.NewError("rule id is required").
			WithHint("Please provide a rule id").
			Mark(ierr.ErrValidation)
	}
	if err := r.Granularity.Validate(); err != nil {
		return err
	}
	if r.TargetID == "" {
		return ierr.NewError("target_id is required").
			WithHint("Please provide the id of the sku, spu or category the rule applies to").
			WithReportableDetails(map[string]any{
				"rule_id": r.ID,
			}).
			Mark(ierr.ErrValidation)
	}
	if err := r.Type.Validate(); err != nil {
		return err
	}
	return nil
}

// SortRules orders rules by display order, then id, which is the order
// violations are reported in
func SortRules(rules []*Rule) {
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].DisplayOrder != rules[j].DisplayOrder {
			return rules[i].DisplayOrder < rules[j].DisplayOrder
		}
		return rules[i].ID < rules[j].ID
	})
}
