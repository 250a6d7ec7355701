package service

import (
	"math"
	"math/rand"
	"testing"

	"github.com/flexprice/orderlimit/internal/config"
	"github.com/flexprice/orderlimit/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecideLimit(t *testing.T) {
	tests := []struct {
		name     string
		prior    int64
		incoming int64
		limit    int64
		want     types.LimitDecisionResult
		wantRest int64
	}{
		{name: "nothing bought", prior: 0, incoming: 1, limit: 10, want: types.LimitDecisionPass, wantRest: 9},
		{name: "exactly reaches limit", prior: 7, incoming: 3, limit: 10, want: types.LimitDecisionPass, wantRest: 0},
		{name: "crosses limit", prior: 8, incoming: 3, limit: 10, want: types.LimitDecisionRestExceeded, wantRest: 2},
		{name: "limit already reached", prior: 10, incoming: 1, limit: 10, want: types.LimitDecisionRestExceeded, wantRest: 0},
		{name: "prior above limit", prior: 12, incoming: 1, limit: 10, want: types.LimitDecisionHardExceeded, wantRest: 0},
		{name: "prior above limit with zero incoming", prior: 12, incoming: 0, limit: 10, want: types.LimitDecisionHardExceeded, wantRest: 0},
		{name: "saturated negative limit", prior: 3, incoming: 1, limit: math.MinInt64, want: types.LimitDecisionHardExceeded, wantRest: 0},
		{name: "zero limit", prior: 0, incoming: 1, limit: 0, want: types.LimitDecisionRestExceeded, wantRest: 0},
		{name: "zero limit zero incoming", prior: 0, incoming: 0, limit: 0, want: types.LimitDecisionPass, wantRest: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := DecideLimit(tt.prior, tt.incoming, tt.limit)
			assert.Equal(t, tt.want, d.Result)
			assert.Equal(t, tt.wantRest, d.Rest)
			assert.Equal(t, tt.limit, d.Limit)
			assert.Equal(t, tt.prior, d.Prior)
			assert.Equal(t, tt.incoming, d.Incoming)
		})
	}
}

func TestDecideLimit_Property(t *testing.T) {
	rng := rand.New(rand.NewSource(20240517))

	for i := 0; i < 10000; i++ {
		prior := rng.Int63n(1000)
		incoming := rng.Int63n(1000)
		limit := rng.Int63n(1000)

		d := DecideLimit(prior, incoming, limit)
		switch {
		case prior > limit:
			require.Equal(t, types.LimitDecisionHardExceeded, d.Result, "prior=%d incoming=%d limit=%d", prior, incoming, limit)
		case prior+incoming > limit:
			require.Equal(t, types.LimitDecisionRestExceeded, d.Result, "prior=%d incoming=%d limit=%d", prior, incoming, limit)
			require.Equal(t, limit-prior, d.Rest)
			require.GreaterOrEqual(t, d.Rest, int64(0))
		default:
			require.Equal(t, types.LimitDecisionPass, d.Result, "prior=%d incoming=%d limit=%d", prior, incoming, limit)
			require.True(t, d.Passed())
		}
	}
}

func TestLimitMessages_Quota(t *testing.T) {
	defaults := newLimitMessages(config.MessageTemplates{})

	hard := DecideLimit(12, 1, 10)
	assert.Equal(t, "最多只能购买10件", defaults.quota(types.LimitGranularitySKU, hard))

	rest := DecideLimit(8, 3, 10)
	assert.Equal(t, "只能继续购买2件", defaults.quota(types.LimitGranularitySKU, rest))

	reached := DecideLimit(10, 1, 10)
	assert.Equal(t, "已达到购买上限", defaults.quota(types.LimitGranularitySKU, reached))

	assert.Equal(t, "最少需要购买5件", defaults.minQuantity(5, 3))
	assert.Equal(t, "您不符合购买资格", defaults.mutex())
}

func TestLimitMessages_RestZeroNeverOffersMore(t *testing.T) {
	templates := []config.MessageTemplates{
		{},
		{MaxBuyLimit: "sold out for you"},
		{SKUBuyLimitAlert: "sku cap {limit}", MaxBuyLimit: "cap {limit} reached"},
	}

	for _, tmpl := range templates {
		m := newLimitMessages(tmpl)
		for limit := int64(0); limit < 20; limit++ {
			d := DecideLimit(limit, 1, limit)
			require.Equal(t, types.LimitDecisionRestExceeded, d.Result)
			require.Equal(t, int64(0), d.Rest)

			msg := m.quota(types.LimitGranularitySKU, d)
			assert.NotContains(t, msg, "只能继续购买")
			expected := DefaultMaxBuyLimitMessage
			if tmpl.MaxBuyLimit != "" {
				expected = render(tmpl.MaxBuyLimit, limit, 0, limit)
			}
			assert.Equal(t, expected, msg)
		}
	}
}

func TestLimitMessages_Overrides(t *testing.T) {
	m := newLimitMessages(config.MessageTemplates{
		SKUBuyLimitAlert:      "每人限购{limit}件，您已购买{count}件",
		SPUBuyLimitAlert:      "商品限购",
		CategoryBuyLimitAlert: "  ",
		MaxBuyLimit:           "上限{limit}",
	})

	hard := DecideLimit(12, 1, 10)
	assert.Equal(t, "每人限购10件，您已购买12件", m.quota(types.LimitGranularitySKU, hard))
	assert.Equal(t, "商品限购", m.quota(types.LimitGranularitySPU, hard))
	// blank override falls back to the default
	assert.Equal(t, "最多只能购买10件", m.quota(types.LimitGranularityCategory, hard))

	assert.Equal(t, "上限10", m.quota(types.LimitGranularitySKU, DecideLimit(10, 2, 10)))
	// the rest message is not configurable
	assert.Equal(t, "只能继续购买4件", m.quota(types.LimitGranularitySKU, DecideLimit(6, 5, 10)))
}

func TestLimitViolation_SaturatedNegativeLimit(t *testing.T) {
	limit := types.ParseLimitValue("-99999999999999999999")
	require.Equal(t, int64(math.MinInt64), limit)

	d := DecideLimit(3, 1, limit)
	require.Equal(t, types.LimitDecisionHardExceeded, d.Result)

	m := newLimitMessages(config.MessageTemplates{SKUBuyLimitAlert: "剩余{rest}件"})
	msg := m.quota(types.LimitGranularitySKU, d)
	assert.Equal(t, "剩余0件", msg)

	v := newQuotaViolation(types.LimitGranularitySKU, "rule_1", "sku_1", d, msg)
	assert.Equal(t, int64(0), v.Rest)
	assert.Equal(t, int64(3), v.ActualCount)
}

func TestLimitViolation_Error(t *testing.T) {
	d := DecideLimit(8, 3, 10)
	v := newQuotaViolation(types.LimitGranularityCategory, "rule_1", "cat_1", d, "只能继续购买2件")

	assert.Equal(t, types.LimitViolationKindRestExceeded, v.Kind)
	assert.Equal(t, types.LimitViolationCodeCategoryRestLimit, v.Code)
	assert.Equal(t, int64(2), v.Rest)
	assert.Equal(t, int64(8), v.ActualCount)

	err := v.toError()
	got, ok := AsLimitViolation(err)
	require.True(t, ok)
	assert.Same(t, v, got)

	_, ok = AsLimitViolation(nil)
	assert.False(t, ok)
}
