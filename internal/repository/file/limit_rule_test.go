package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	ierr "github.com/flexprice/orderlimit/internal/errors"
	"github.com/flexprice/orderlimit/internal/logger"
	"github.com/flexprice/orderlimit/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const ruleDoc = `
rules:
  - id: r2
    granularity: SKU
    target_id: sku_1
    type: BUY_TOTAL
    value: "10"
    display_order: 2
  - id: r1
    granularity: SKU
    target_id: sku_1
    type: MIN_QUANTITY
    value: "5"
    display_order: 1
  - id: r3
    granularity: SKU
    target_id: sku_1
    type: BUY_DAILY
    value: "1"
    status: inactive
  - id: r4
    granularity: CATEGORY
    target_id: cat_1
    type: BUY_MONTH
    value: "5"
`

func TestParseLimitRules(t *testing.T) {
	repo, err := ParseLimitRules([]byte(ruleDoc), logger.NewNoopLogger())
	require.NoError(t, err)

	rules, err := repo.ListByTarget(context.Background(), types.LimitGranularitySKU, "sku_1")
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "r1", rules[0].ID)
	assert.Equal(t, "r2", rules[1].ID)
	assert.Equal(t, types.LimitRuleTypeMinQuantity, rules[0].Type)

	rules, err = repo.ListByTarget(context.Background(), types.LimitGranularityCategory, "cat_1")
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, int64(5), rules[0].LimitValue())

	rules, err = repo.ListByTarget(context.Background(), types.LimitGranularitySPU, "sku_1")
	require.NoError(t, err)
	assert.Empty(t, rules)
}

func TestParseLimitRules_WarnsOnUnsupportedGranularity(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	log := &logger.Logger{SugaredLogger: zap.New(core).Sugar()}

	doc := "rules:\n" +
		"  - id: a\n    granularity: CATEGORY\n    target_id: cat_1\n    type: MIN_QUANTITY\n    value: '2'\n" +
		"  - id: b\n    granularity: CATEGORY\n    target_id: cat_1\n    type: BUY_TOTAL\n    value: '2'\n"

	repo, err := ParseLimitRules([]byte(doc), log)
	require.NoError(t, err)

	warnings := logs.FilterMessage("limit rule type has no effect at its granularity").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "a", warnings[0].ContextMap()["rule_id"])

	// still served, the evaluator skips it
	rules, err := repo.ListByTarget(context.Background(), types.LimitGranularityCategory, "cat_1")
	require.NoError(t, err)
	assert.Len(t, rules, 2)
}

func TestParseLimitRules_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "not yaml", doc: "rules: [\n"},
		{name: "unknown type", doc: "rules:\n  - id: a\n    granularity: SKU\n    target_id: s\n    type: BUY_WEEKLY\n    value: '1'\n"},
		{name: "unknown granularity", doc: "rules:\n  - id: a\n    granularity: BRAND\n    target_id: s\n    type: BUY_TOTAL\n    value: '1'\n"},
		{name: "duplicate id", doc: "rules:\n  - id: a\n    granularity: SKU\n    target_id: s\n    type: BUY_TOTAL\n    value: '1'\n  - id: a\n    granularity: SKU\n    target_id: t\n    type: BUY_TOTAL\n    value: '1'\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLimitRules([]byte(tt.doc), logger.NewNoopLogger())
			require.Error(t, err)
			assert.True(t, ierr.IsValidation(err))
		})
	}
}

func TestNewLimitRuleRepository_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(ruleDoc), 0o600))

	repo, err := NewLimitRuleRepository(path, logger.NewNoopLogger())
	require.NoError(t, err)

	rules, err := repo.ListByTarget(context.Background(), types.LimitGranularitySKU, "sku_1")
	require.NoError(t, err)
	assert.Len(t, rules, 2)

	_, err = NewLimitRuleRepository(filepath.Join(t.TempDir(), "missing.yaml"), logger.NewNoopLogger())
	assert.Error(t, err)
}
