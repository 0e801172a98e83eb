package recurrence

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidShorthand = errors.New("recurrence: invalid rule shorthand")

// ParseShorthand parses the compact form used in chat commands and the
// CLI: kind[/interval][:args]. Examples: "daily/3", "weekly/2:mon,wed",
// "weekdays", "monthly:31", "hourly/4".
func ParseShorthand(s string) (Rule, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidShorthand)
	}

	head, args, hasArgs := strings.Cut(s, ":")
	name, intervalStr, hasInterval := strings.Cut(head, "/")

	interval := 1
	if hasInterval {
		n, err := strconv.Atoi(intervalStr)
		if err != nil {
			return nil, fmt.Errorf("%w: interval %q", ErrInvalidShorthand, intervalStr)
		}
		interval = n
	}

	kind := Kind(name)
	if hasArgs && kind != KindWeekly && kind != KindMonthly {
		return nil, fmt.Errorf("%w: %s takes no arguments", ErrInvalidShorthand, kind)
	}
	if hasInterval && (kind == KindNone || kind == KindWeekdays) {
		return nil, fmt.Errorf("%w: %s takes no interval", ErrInvalidShorthand, kind)
	}

	switch kind {
	case KindNone:
		return None{}, nil
	case KindWeekdays:
		return Weekdays{}, nil
	case KindDaily:
		return NewDaily(interval)
	case KindHourly:
		return NewHourly(interval)
	case KindMinutely:
		return NewMinutely(interval)
	case KindWeekly:
		var days []Weekday
		if hasArgs {
			for _, part := range strings.Split(args, ",") {
				d, err := ParseWeekday(part)
				if err != nil {
					return nil, err
				}
				days = append(days, d)
			}
		}
		return NewWeekly(interval, days...)
	case KindMonthly:
		if !hasArgs {
			return NewMonthlyOnAnchorDay(interval)
		}
		day, err := strconv.Atoi(args)
		if err != nil {
			return nil, fmt.Errorf("%w: day of month %q", ErrInvalidShorthand, args)
		}
		return NewMonthly(interval, day)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// Shorthand renders a rule in the form ParseShorthand accepts.
func Shorthand(rule Rule) string {
	if rule == nil {
		return string(KindNone)
	}
	var sb strings.Builder
	sb.WriteString(string(rule.Kind()))
	if n := rule.Interval(); n > 1 {
		fmt.Fprintf(&sb, "/%d", n)
	}
	switch r := rule.(type) {
	case Weekly:
		days := r.Weekdays()
		if len(days) > 0 {
			names := make([]string, len(days))
			for i, d := range days {
				names[i] = strings.ToLower(d.String())
			}
			sb.WriteString(":" + strings.Join(names, ","))
		}
	case Monthly:
		if d, ok := r.dayOfMonth.Get(); ok {
			fmt.Fprintf(&sb, ":%d", d)
		}
	}
	return sb.String()
}
