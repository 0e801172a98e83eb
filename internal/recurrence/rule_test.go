package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors_RejectInvalidInput(t *testing.T) {
	_, err := NewDaily(0)
	assert.ErrorIs(t, err, ErrInvalidInterval)

	_, err = NewHourly(-2)
	assert.ErrorIs(t, err, ErrInvalidInterval)

	_, err = NewMinutely(0)
	assert.ErrorIs(t, err, ErrInvalidInterval)

	_, err = NewWeekly(1, Weekday(0))
	assert.ErrorIs(t, err, ErrInvalidWeekday)

	_, err = NewWeekly(1, Monday, Weekday(8))
	assert.ErrorIs(t, err, ErrInvalidWeekday)

	_, err = NewMonthly(1, 32)
	assert.ErrorIs(t, err, ErrInvalidDayOfMonth)

	_, err = NewMonthly(1, 0)
	assert.ErrorIs(t, err, ErrInvalidDayOfMonth)

	_, err = NewMonthlyOnAnchorDay(0)
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestWeekly_WeekdaysIsASortedSet(t *testing.T) {
	r, err := NewWeekly(2, Friday, Monday, Friday, Wednesday)
	require.NoError(t, err)
	assert.Equal(t, []Weekday{Monday, Wednesday, Friday}, r.Weekdays())
	assert.Equal(t, 2, r.Interval())

	empty, err := NewWeekly(1)
	require.NoError(t, err)
	assert.Empty(t, empty.Weekdays())
}

func TestMonthly_DayOfMonth(t *testing.T) {
	pinned, err := NewMonthly(1, 31)
	require.NoError(t, err)
	d, ok := pinned.DayOfMonth().Get()
	assert.True(t, ok)
	assert.Equal(t, 31, d)

	floating, err := NewMonthlyOnAnchorDay(1)
	require.NoError(t, err)
	assert.True(t, floating.DayOfMonth().IsAbsent())
}

func TestZeroValueRulesBehave(t *testing.T) {
	assert.Equal(t, 1, Daily{}.Interval())
	assert.Equal(t, 1, Weekly{}.Interval())

	anchor := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	got := NextFireAt(Daily{}, anchor, anchor)
	assert.Equal(t, anchor.AddDate(0, 0, 1), got.At)
}

func TestEqual(t *testing.T) {
	a, _ := NewWeekly(1, Monday, Friday)
	b, _ := NewWeekly(1, Friday, Monday)
	c, _ := NewWeekly(1, Monday)
	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, c))

	m1, _ := NewMonthly(1, 15)
	m2, _ := NewMonthlyOnAnchorDay(1)
	assert.False(t, Equal(m1, m2))

	d1, _ := NewDaily(2)
	d2, _ := NewDaily(3)
	assert.False(t, Equal(d1, d2))
	assert.True(t, Equal(None{}, NoRecurrence()))
	assert.False(t, Equal(None{}, nil))
}

func TestISOWeekday(t *testing.T) {
	assert.Equal(t, Sunday, ISOWeekday(time.Sunday))
	assert.Equal(t, Monday, ISOWeekday(time.Monday))
	assert.Equal(t, Saturday, ISOWeekday(time.Saturday))
}

func TestParseWeekday(t *testing.T) {
	tests := []struct {
		in   string
		want Weekday
	}{
		{"1", Monday},
		{"7", Sunday},
		{"mo", Monday},
		{"TH", Thursday},
		{"wed", Wednesday},
		{"Saturday", Saturday},
		{" su ", Sunday},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseWeekday(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "t", "8", "0", "funday"} {
		_, err := ParseWeekday(bad)
		assert.ErrorIs(t, err, ErrInvalidWeekday, bad)
	}
}
