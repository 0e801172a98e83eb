package recurrence

import (
	"fmt"
	"strings"
	"time"
)

// Weekday is an ISO weekday number: 1=Monday .. 7=Sunday.
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayAbbrev = [...]string{"", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// ISOWeekday converts a time.Weekday (Sunday=0) to its ISO number.
func ISOWeekday(d time.Weekday) Weekday {
	if d == time.Sunday {
		return Sunday
	}
	return Weekday(d)
}

func (d Weekday) Valid() bool {
	return d >= Monday && d <= Sunday
}

func (d Weekday) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayAbbrev[d]
}

// ParseWeekday accepts ISO numbers ("3"), two-letter RFC 5545 codes ("WE")
// and English names or abbreviations ("wed", "Wednesday").
func ParseWeekday(s string) (Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) == 1 && s[0] >= '1' && s[0] <= '7' {
		return Weekday(s[0] - '0'), nil
	}
	for d := Monday; d <= Sunday; d++ {
		name := strings.ToLower(time.Weekday(int(d) % 7).String())
		if len(s) >= 2 && strings.HasPrefix(name, s) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidWeekday, s)
}
