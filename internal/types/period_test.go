package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	ist = time.FixedZone("IST", 5*60*60+30*60)
	pst = time.FixedZone("PST", -8*60*60)
)

func TestGetLimitPeriodRange(t *testing.T) {
	now := time.Date(2024, time.May, 17, 13, 45, 12, 500, time.UTC)

	tests := []struct {
		name      string
		ruleType  LimitRuleType
		now       time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "daily",
			ruleType:  LimitRuleTypeBuyDaily,
			now:       now,
			wantStart: time.Date(2024, time.May, 17, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, time.May, 17, 23, 59, 59, 999999999, time.UTC),
		},
		{
			name:      "monthly",
			ruleType:  LimitRuleTypeBuyMonth,
			now:       now,
			wantStart: time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, time.May, 31, 23, 59, 59, 999999999, time.UTC),
		},
		{
			name:      "monthly leap february",
			ruleType:  LimitRuleTypeBuyMonth,
			now:       time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC),
			wantStart: time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, time.February, 29, 23, 59, 59, 999999999, time.UTC),
		},
		{
			name:      "quarterly second quarter",
			ruleType:  LimitRuleTypeBuyQuarter,
			now:       now,
			wantStart: time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, time.June, 30, 23, 59, 59, 999999999, time.UTC),
		},
		{
			name:      "quarterly on first day of quarter",
			ruleType:  LimitRuleTypeBuyQuarter,
			now:       time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC),
			wantStart: time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, time.December, 31, 23, 59, 59, 999999999, time.UTC),
		},
		{
			name:      "quarterly last instant of first quarter",
			ruleType:  LimitRuleTypeBuyQuarter,
			now:       time.Date(2024, time.March, 31, 23, 59, 59, 999999999, time.UTC),
			wantStart: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, time.March, 31, 23, 59, 59, 999999999, time.UTC),
		},
		{
			name:      "yearly",
			ruleType:  LimitRuleTypeBuyYear,
			now:       now,
			wantStart: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, time.December, 31, 23, 59, 59, 999999999, time.UTC),
		},
		{
			name:      "total falls back to day",
			ruleType:  LimitRuleTypeBuyTotal,
			now:       now,
			wantStart: time.Date(2024, time.May, 17, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, time.May, 17, 23, 59, 59, 999999999, time.UTC),
		},
		{
			name:      "unknown type falls back to day",
			ruleType:  LimitRuleType("BUY_WEEKLY"),
			now:       now,
			wantStart: time.Date(2024, time.May, 17, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, time.May, 17, 23, 59, 59, 999999999, time.UTC),
		},
		{
			name:      "timezone: IST month keeps local boundaries",
			ruleType:  LimitRuleTypeBuyMonth,
			now:       time.Date(2024, time.June, 1, 2, 0, 0, 0, ist),
			wantStart: time.Date(2024, time.June, 1, 0, 0, 0, 0, ist),
			wantEnd:   time.Date(2024, time.June, 30, 23, 59, 59, 999999999, ist),
		},
		{
			name:      "timezone: PST day differs from UTC day",
			ruleType:  LimitRuleTypeBuyDaily,
			now:       time.Date(2024, time.March, 1, 20, 0, 0, 0, pst),
			wantStart: time.Date(2024, time.March, 1, 0, 0, 0, 0, pst),
			wantEnd:   time.Date(2024, time.March, 1, 23, 59, 59, 999999999, pst),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetLimitPeriodRange(tt.ruleType, tt.now)
			assert.True(t, got.Start.Equal(tt.wantStart), "start: got %v, want %v", got.Start, tt.wantStart)
			assert.True(t, got.End.Equal(tt.wantEnd), "end: got %v, want %v", got.End, tt.wantEnd)
			assert.True(t, got.Contains(tt.now))
			require.NoError(t, got.Validate())
		})
	}
}

func TestGetLimitPeriodRange_Idempotent(t *testing.T) {
	now := time.Date(2023, time.November, 5, 8, 0, 0, 0, pst)
	for _, ruleType := range LimitRuleTypes {
		first := GetLimitPeriodRange(ruleType, now)
		second := GetLimitPeriodRange(ruleType, now)
		assert.Equal(t, first, second, ruleType.String())
	}
}

func TestGetLimitPeriodRange_Contiguous(t *testing.T) {
	periodic := []LimitRuleType{
		LimitRuleTypeBuyDaily,
		LimitRuleTypeBuyMonth,
		LimitRuleTypeBuyQuarter,
		LimitRuleTypeBuyYear,
	}

	start := time.Date(2023, time.December, 30, 12, 0, 0, 0, time.UTC)
	for _, ruleType := range periodic {
		t.Run(ruleType.String(), func(t *testing.T) {
			current := GetLimitPeriodRange(ruleType, start)
			for i := 0; i < 14; i++ {
				next := GetLimitPeriodRange(ruleType, current.End.Add(time.Nanosecond))
				assert.True(t, current.End.Add(time.Nanosecond).Equal(next.Start),
					"period %v does not touch %v", current, next)
				assert.False(t, next.Contains(current.End))
				assert.False(t, current.Contains(next.Start))
				current = next
			}
		})
	}
}

func TestEndOfMonthPlusOneIsNextMonth(t *testing.T) {
	for m := time.January; m <= time.December; m++ {
		t0 := time.Date(2025, m, 15, 0, 0, 0, 0, time.UTC)
		next := time.Date(2025, m+1, 15, 0, 0, 0, 0, time.UTC)
		assert.True(t, EndOfMonth(t0).Add(time.Nanosecond).Equal(StartOfMonth(next)), m.String())
	}
}

func TestTimeRange_Validate(t *testing.T) {
	start := time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)
	require.NoError(t, TimeRange{Start: start, End: start}.Validate())
	require.Error(t, TimeRange{Start: start, End: start.Add(-time.Second)}.Validate())
}
