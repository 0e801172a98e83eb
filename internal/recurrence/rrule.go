package recurrence

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

var ErrNoRecurrence = errors.New("recurrence: rule does not recur")

var rruleDay = map[Weekday]string{
	Monday: "MO", Tuesday: "TU", Wednesday: "WE", Thursday: "TH",
	Friday: "FR", Saturday: "SA", Sunday: "SU",
}

// RRuleString renders rule as an RFC 5545 RRULE value (without the
// "RRULE:" prefix). Weekly rules without weekdays and monthly rules
// without a day leave those parts to DTSTART, as RFC 5545 does.
func RRuleString(rule Rule) (string, error) {
	if !IsRecurring(rule) {
		return "", ErrNoRecurrence
	}

	var parts []string
	switch rule.Kind() {
	case KindHourly:
		parts = append(parts, "FREQ=HOURLY")
	case KindMinutely:
		parts = append(parts, "FREQ=MINUTELY")
	case KindDaily:
		parts = append(parts, "FREQ=DAILY")
	case KindWeekly, KindWeekdays:
		parts = append(parts, "FREQ=WEEKLY")
	case KindMonthly:
		parts = append(parts, "FREQ=MONTHLY")
	}

	// Sub-daily rules fire every slot whatever their interval.
	if n := rule.Interval(); n > 1 && rule.Kind() != KindHourly && rule.Kind() != KindMinutely {
		parts = append(parts, fmt.Sprintf("INTERVAL=%d", n))
	}

	switch r := rule.(type) {
	case Weekdays:
		parts = append(parts, "BYDAY=MO,TU,WE,TH,FR")
	case Weekly:
		if days := r.Weekdays(); len(days) > 0 {
			codes := make([]string, len(days))
			for i, d := range days {
				codes[i] = rruleDay[d]
			}
			parts = append(parts, "BYDAY="+strings.Join(codes, ","))
		}
	case Monthly:
		if d, ok := r.dayOfMonth.Get(); ok {
			parts = append(parts, fmt.Sprintf("BYMONTHDAY=%d", d))
		}
	}

	return strings.Join(parts, ";"), nil
}

// ToRRule builds an rrule-go iterator for rule starting at anchor.
func ToRRule(rule Rule, anchor time.Time) (*rrule.RRule, error) {
	s, err := RRuleString(rule)
	if err != nil {
		return nil, err
	}
	opt, err := rrule.StrToROption(s)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RRULE: %w", err)
	}
	opt.Dtstart = anchor
	return rrule.NewRRule(*opt)
}
