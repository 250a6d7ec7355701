package types

import (
	"time"

	ierr "github.com/flexprice/orderlimit/internal/errors"
)

// TimeRange is an inclusive [Start, End] interval
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (r TimeRange) Validate() error {
	if r.End.Before(r.Start) {
		return ierr.NewError("time range end is before start").
			WithHint("Time range end must not be before its start").
			WithReportableDetails(map[string]any{
				"start": r.Start,
				"end":   r.End,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Contains reports whether t falls inside the range, bounds included
func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// StartOfDay returns midnight of t's day in t's location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last nanosecond of t's day
func EndOfDay(t time.Time) time.Time {
	return lastInstantBefore(StartOfDay(t).AddDate(0, 0, 1))
}

func StartOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

func EndOfMonth(t time.Time) time.Time {
	return lastInstantBefore(StartOfMonth(t).AddDate(0, 1, 0))
}

// StartOfQuarter returns the first instant of t's calendar quarter
// (Jan, Apr, Jul or Oct)
func StartOfQuarter(t time.Time) time.Time {
	y, m, _ := t.Date()
	first := time.Month((int(m)-1)/3*3 + 1)
	return time.Date(y, first, 1, 0, 0, 0, 0, t.Location())
}

func EndOfQuarter(t time.Time) time.Time {
	return lastInstantBefore(StartOfQuarter(t).AddDate(0, 3, 0))
}

func StartOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
}

func EndOfYear(t time.Time) time.Time {
	return lastInstantBefore(StartOfYear(t).AddDate(1, 0, 0))
}

func lastInstantBefore(next time.Time) time.Time {
	return next.Add(-time.Nanosecond)
}

// GetLimitPeriodRange returns the calendar period of a periodic limit rule
// containing now. Types without a period fall back to the current day.
// Boundaries are computed in now's location.
func GetLimitPeriodRange(ruleType LimitRuleType, now time.Time) TimeRange {
	switch ruleType {
	case LimitRuleTypeBuyMonth:
		return TimeRange{Start: StartOfMonth(now), End: EndOfMonth(now)}
	case LimitRuleTypeBuyQuarter:
		return TimeRange{Start: StartOfQuarter(now), End: EndOfQuarter(now)}
	case LimitRuleTypeBuyYear:
		return TimeRange{Start: StartOfYear(now), End: EndOfYear(now)}
	default:
		return TimeRange{Start: StartOfDay(now), End: EndOfDay(now)}
	}
}
