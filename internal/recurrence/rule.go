// Package recurrence computes when a recurring reminder fires next.
//
// A Rule is a closed set of value types, one per recurrence kind, each
// carrying only the fields that kind uses. Rules are built through the
// New* constructors, which reject invalid intervals, weekdays and days
// of the month, so the engine never sees a malformed rule.
package recurrence

import (
	"errors"
	"fmt"

	"github.com/samber/mo"
)

var (
	ErrInvalidInterval   = errors.New("recurrence: interval must be at least 1")
	ErrInvalidWeekday    = errors.New("recurrence: weekday must be between 1 (Monday) and 7 (Sunday)")
	ErrInvalidDayOfMonth = errors.New("recurrence: day of month must be between 1 and 31")
	ErrUnknownKind       = errors.New("recurrence: unknown kind")
)

// Kind is the string tag of a rule, as stored in JSON.
type Kind string

const (
	KindNone     Kind = "none"
	KindDaily    Kind = "daily"
	KindWeekly   Kind = "weekly"
	KindMonthly  Kind = "monthly"
	KindWeekdays Kind = "weekdays"
	KindHourly   Kind = "hourly"
	KindMinutely Kind = "minutely"
)

// Kinds lists every supported kind.
var Kinds = []Kind{KindNone, KindDaily, KindWeekly, KindMonthly, KindWeekdays, KindHourly, KindMinutely}

// Rule is implemented only by the types in this package.
type Rule interface {
	Kind() Kind
	// Interval is the "every N units" multiplier. Always >= 1.
	Interval() int
	isRule()
}

// None is a one-off reminder.
type None struct{}

// Daily fires every interval days, phase-locked to the anchor.
type Daily struct{ interval int }

// Weekly fires on the given ISO weekdays every interval weeks. With no
// weekdays it fires on the anchor's weekday.
type Weekly struct {
	interval int
	days     uint8 // bit (d-1) set for ISO weekday d
}

// Weekdays fires Monday through Friday.
type Weekdays struct{}

// Monthly fires on a day of the month. Without an explicit day it uses
// the anchor's day of month.
type Monthly struct {
	interval   int
	dayOfMonth mo.Option[int]
}

// Hourly fires every interval hours at the anchor's minute and second.
type Hourly struct{ interval int }

// Minutely fires every interval minutes at the anchor's second.
type Minutely struct{ interval int }

func NoRecurrence() None { return None{} }

func EveryWeekday() Weekdays { return Weekdays{} }

func NewDaily(interval int) (Daily, error) {
	if interval < 1 {
		return Daily{}, fmt.Errorf("%w: got %d", ErrInvalidInterval, interval)
	}
	return Daily{interval: interval}, nil
}

// NewWeekly builds a weekly rule. Duplicate weekdays are collapsed.
func NewWeekly(interval int, weekdays ...Weekday) (Weekly, error) {
	if interval < 1 {
		return Weekly{}, fmt.Errorf("%w: got %d", ErrInvalidInterval, interval)
	}
	var mask uint8
	for _, d := range weekdays {
		if !d.Valid() {
			return Weekly{}, fmt.Errorf("%w: got %d", ErrInvalidWeekday, int(d))
		}
		mask |= 1 << (d - 1)
	}
	return Weekly{interval: interval, days: mask}, nil
}

// NewMonthly builds a monthly rule pinned to dayOfMonth.
func NewMonthly(interval, dayOfMonth int) (Monthly, error) {
	if interval < 1 {
		return Monthly{}, fmt.Errorf("%w: got %d", ErrInvalidInterval, interval)
	}
	if dayOfMonth < 1 || dayOfMonth > 31 {
		return Monthly{}, fmt.Errorf("%w: got %d", ErrInvalidDayOfMonth, dayOfMonth)
	}
	return Monthly{interval: interval, dayOfMonth: mo.Some(dayOfMonth)}, nil
}

// NewMonthlyOnAnchorDay builds a monthly rule that follows the anchor's
// day of month.
func NewMonthlyOnAnchorDay(interval int) (Monthly, error) {
	if interval < 1 {
		return Monthly{}, fmt.Errorf("%w: got %d", ErrInvalidInterval, interval)
	}
	return Monthly{interval: interval, dayOfMonth: mo.None[int]()}, nil
}

func NewHourly(interval int) (Hourly, error) {
	if interval < 1 {
		return Hourly{}, fmt.Errorf("%w: got %d", ErrInvalidInterval, interval)
	}
	return Hourly{interval: interval}, nil
}

func NewMinutely(interval int) (Minutely, error) {
	if interval < 1 {
		return Minutely{}, fmt.Errorf("%w: got %d", ErrInvalidInterval, interval)
	}
	return Minutely{interval: interval}, nil
}

func (None) Kind() Kind     { return KindNone }
func (Daily) Kind() Kind    { return KindDaily }
func (Weekly) Kind() Kind   { return KindWeekly }
func (Weekdays) Kind() Kind { return KindWeekdays }
func (Monthly) Kind() Kind  { return KindMonthly }
func (Hourly) Kind() Kind   { return KindHourly }
func (Minutely) Kind() Kind { return KindMinutely }

func (None) Interval() int       { return 1 }
func (r Daily) Interval() int    { return atLeastOne(r.interval) }
func (r Weekly) Interval() int   { return atLeastOne(r.interval) }
func (Weekdays) Interval() int   { return 1 }
func (r Monthly) Interval() int  { return atLeastOne(r.interval) }
func (r Hourly) Interval() int   { return atLeastOne(r.interval) }
func (r Minutely) Interval() int { return atLeastOne(r.interval) }

func (None) isRule()     {}
func (Daily) isRule()    {}
func (Weekly) isRule()   {}
func (Weekdays) isRule() {}
func (Monthly) isRule()  {}
func (Hourly) isRule()   {}
func (Minutely) isRule() {}

// Weekdays returns the configured weekdays in ascending order. Empty means
// "same weekday as the anchor".
func (r Weekly) Weekdays() []Weekday {
	var out []Weekday
	for d := Monday; d <= Sunday; d++ {
		if r.has(d) {
			out = append(out, d)
		}
	}
	return out
}

func (r Weekly) has(d Weekday) bool {
	return r.days&(1<<(d-1)) != 0
}

// DayOfMonth is absent when the rule follows the anchor's day.
func (r Monthly) DayOfMonth() mo.Option[int] {
	return r.dayOfMonth
}

// IsRecurring reports whether the rule produces more than one occurrence.
func IsRecurring(r Rule) bool {
	return r != nil && r.Kind() != KindNone
}

// Equal compares two rules by value.
func Equal(a, b Rule) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() || a.Interval() != b.Interval() {
		return false
	}
	switch a := a.(type) {
	case Weekly:
		return a.days == b.(Weekly).days
	case Monthly:
		bd, bok := b.(Monthly).dayOfMonth.Get()
		ad, aok := a.dayOfMonth.Get()
		return aok == bok && ad == bd
	}
	return true
}

// The zero value of a rule struct has interval 0; treat it as 1 so a
// zero-value rule still behaves.
func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
