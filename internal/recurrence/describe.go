package recurrence

import (
	"fmt"
	"strings"
	"time"
)

// Describe renders a rule as English text, e.g. "Every 2 weeks on Wed,
// Fri at 08:00". The anchor fills in the weekday, day of month and time
// of day the rule inherits from it.
func Describe(rule Rule, anchor time.Time) string {
	if !IsRecurring(rule) {
		return "Once"
	}

	clock := " at " + anchor.Format("15:04")
	switch r := rule.(type) {
	case Daily:
		return every(r.Interval(), "day", "days") + clock
	case Weekdays:
		return "Every weekday" + clock
	case Weekly:
		days := r.Weekdays()
		if len(days) == 0 {
			days = []Weekday{ISOWeekday(anchor.Weekday())}
		}
		names := make([]string, len(days))
		for i, d := range days {
			names[i] = d.String()
		}
		return every(r.Interval(), "week", "weeks") + " on " + strings.Join(names, ", ") + clock
	case Monthly:
		return fmt.Sprintf("%s on day %d%s", every(r.Interval(), "month", "months"), targetDay(r, anchor), clock)
	case Hourly:
		return "Every hour" + anchor.Format(" at :04")
	case Minutely:
		return "Every minute"
	}
	return string(rule.Kind())
}

func every(n int, one, many string) string {
	if n == 1 {
		return "Every " + one
	}
	return fmt.Sprintf("Every %d %s", n, many)
}
