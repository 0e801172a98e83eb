package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRRuleString(t *testing.T) {
	tests := []struct {
		rule Rule
		want string
	}{
		{mustRule(NewDaily(1)), "FREQ=DAILY"},
		{mustRule(NewDaily(3)), "FREQ=DAILY;INTERVAL=3"},
		{mustRule(NewWeekly(2, Friday, Monday)), "FREQ=WEEKLY;INTERVAL=2;BYDAY=MO,FR"},
		{mustRule(NewWeekly(1)), "FREQ=WEEKLY"},
		{EveryWeekday(), "FREQ=WEEKLY;BYDAY=MO,TU,WE,TH,FR"},
		{mustRule(NewMonthly(1, 31)), "FREQ=MONTHLY;BYMONTHDAY=31"},
		{mustRule(NewMonthlyOnAnchorDay(2)), "FREQ=MONTHLY;INTERVAL=2"},
		{mustRule(NewHourly(4)), "FREQ=HOURLY"},
		{mustRule(NewMinutely(20)), "FREQ=MINUTELY"},
		{mustRule(NewMinutely(1)), "FREQ=MINUTELY"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got, err := RRuleString(tt.rule)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := RRuleString(NoRecurrence())
	assert.ErrorIs(t, err, ErrNoRecurrence)
}

// For rules whose semantics coincide with RFC 5545, the engine must agree
// with rrule-go when the anchor stays fixed. Anchors are Mondays so
// anchor-relative weeks line up with RFC 5545 weeks starting on Monday.
func TestNextFireAt_AgreesWithRRule(t *testing.T) {
	rules := []Rule{
		mustRule(NewDaily(1)),
		mustRule(NewDaily(2)),
		mustRule(NewDaily(9)),
		mustRule(NewWeekly(1)),
		mustRule(NewWeekly(3)),
		mustRule(NewWeekly(1, Tuesday, Sunday)),
		mustRule(NewWeekly(2, Monday, Thursday)),
		EveryWeekday(),
		mustRule(NewMonthlyOnAnchorDay(1)),
		mustRule(NewMonthly(1, 31)),
		mustRule(NewMonthly(1, 2)),
		mustRule(NewHourly(1)),
		mustRule(NewMinutely(1)),
	}
	anchors := []time.Time{
		time.Date(2024, 1, 1, 8, 30, 0, 0, time.UTC),
		time.Date(2023, 7, 31, 22, 5, 9, 0, time.UTC),
	}
	offsets := []time.Duration{
		0, time.Second, 3 * time.Hour, 26 * time.Hour, 9*24*time.Hour + 7*time.Hour,
		45 * 24 * time.Hour, 200 * 24 * time.Hour, 731*24*time.Hour + 13*time.Minute,
	}

	for _, rule := range rules {
		for _, anchor := range anchors {
			rr, err := ToRRule(rule, anchor)
			require.NoError(t, err)

			for _, off := range offsets {
				if rule.Kind() == KindMinutely && off > 48*time.Hour {
					continue // rrule-go walks every minute from DTSTART
				}
				ref := anchor.Add(off)
				want := rr.After(ref, false)
				got := NextFireAt(rule, anchor, ref)
				assert.True(t, want.Equal(got.At), "%s anchor=%s ref=%s: rrule %s, engine %s",
					Shorthand(rule), anchor, ref, want, got.At)
			}
		}
	}
}
