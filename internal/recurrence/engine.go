package recurrence

import "time"

// maxSearchSteps bounds the day-granularity search. Valid rules match
// within a handful of steps; the bound only guards against rules that
// can never match.
const maxSearchSteps = 1000

// Occurrence is the result of NextFireAt. Fallback is set when the
// search bound was exhausted and At is reference + 1 day instead of a
// real occurrence of the rule.
type Occurrence struct {
	At       time.Time
	Fallback bool
}

// NextFireAt returns the first occurrence of rule strictly after
// reference, keeping the anchor's time of day and interval phase.
//
// For a None rule (or a nil rule) the anchor is returned unchanged and the
// caller decides what a one-off reminder means. Calendar arithmetic runs in
// the anchor's location and the result is expressed in it.
func NextFireAt(rule Rule, anchor, reference time.Time) Occurrence {
	switch rule.(type) {
	case nil, None:
		return Occurrence{At: anchor}
	case Hourly:
		return Occurrence{At: nextSubDaily(anchor, reference, time.Hour)}
	case Minutely:
		return Occurrence{At: nextSubDaily(anchor, reference, time.Minute)}
	}
	return nextByDay(rule, anchor, reference)
}

// Upcoming lists up to n occurrences after reference, feeding each result
// back in as the next reference. It stops early for one-off rules and when
// the engine had to fall back.
func Upcoming(rule Rule, anchor, reference time.Time, n int) []time.Time {
	if !IsRecurring(rule) {
		return nil
	}
	out := make([]time.Time, 0, n)
	for len(out) < n {
		occ := NextFireAt(rule, anchor, reference)
		if occ.Fallback {
			break
		}
		out = append(out, occ.At)
		reference = occ.At
	}
	return out
}

// nextSubDaily returns the first slot after reference that keeps the
// anchor's minute (hourly) or second (minutely). The rule's interval is
// not applied: every slot fires.
func nextSubDaily(anchor, reference time.Time, unit time.Duration) time.Time {
	loc := anchor.Location()
	c := later(anchor, reference).In(loc)

	minute := c.Minute()
	if unit == time.Hour {
		minute = anchor.Minute()
	}
	c = time.Date(c.Year(), c.Month(), c.Day(), c.Hour(), minute, anchor.Second(), 0, loc)
	if !c.After(reference) {
		c = c.Add(unit)
	}
	return c
}

func nextByDay(rule Rule, anchor, reference time.Time) Occurrence {
	c := atAnchorClock(later(anchor, reference).In(anchor.Location()), anchor)
	if !c.After(reference) {
		c = atAnchorClock(c.AddDate(0, 0, 1), anchor)
	}

	for i := 0; i < maxSearchSteps; i++ {
		if matches(c, rule, anchor) {
			return Occurrence{At: c}
		}
		c = atAnchorClock(advance(c, rule, anchor), anchor)
	}
	return Occurrence{At: reference.In(anchor.Location()).AddDate(0, 0, 1), Fallback: true}
}

func matches(c time.Time, rule Rule, anchor time.Time) bool {
	switch r := rule.(type) {
	case Daily:
		n := r.Interval()
		return n == 1 || floorMod(daysBetween(anchor, c), n) == 0

	case Weekdays:
		wd := c.Weekday()
		return wd >= time.Monday && wd <= time.Friday

	case Weekly:
		day := ISOWeekday(c.Weekday())
		if r.days != 0 {
			if !r.has(day) {
				return false
			}
		} else if day != ISOWeekday(anchor.Weekday()) {
			return false
		}
		n := r.Interval()
		return n == 1 || floorMod(floorDiv(daysBetween(anchor, c), 7), n) == 0

	case Monthly:
		// Interval is not checked here: a monthly rule matches the target
		// day of any month the search lands on.
		return c.Day() == targetDay(r, anchor)
	}
	return false
}

// advance moves c to the next date that could match rule.
func advance(c time.Time, rule Rule, anchor time.Time) time.Time {
	switch r := rule.(type) {
	case Daily:
		n := r.Interval()
		return c.AddDate(0, 0, n-floorMod(daysBetween(anchor, c), n))

	case Weekly:
		n := r.Interval()
		days := daysBetween(anchor, c)
		week := floorDiv(days, 7)
		if r.days != 0 {
			if floorMod(week, n) == 0 {
				return c.AddDate(0, 0, 1)
			}
			// first day of the next in-phase anchor week
			return c.AddDate(0, 0, (week+n-floorMod(week, n))*7-days)
		}
		next := days + 7 - floorMod(days, 7)
		next += 7 * floorMod(-floorDiv(next, 7), n)
		return c.AddDate(0, 0, next-days)

	case Monthly:
		target := targetDay(r, anchor)
		y, m, d := c.Date()
		if d < target && target <= daysIn(y, m) {
			return time.Date(y, m, target, 0, 0, 0, 0, c.Location())
		}
		first := time.Date(y, m+time.Month(r.Interval()), 1, 0, 0, 0, 0, c.Location())
		for daysIn(first.Year(), first.Month()) < target {
			first = first.AddDate(0, 1, 0)
		}
		return time.Date(first.Year(), first.Month(), target, 0, 0, 0, 0, c.Location())
	}
	return c.AddDate(0, 0, 1)
}

func targetDay(r Monthly, anchor time.Time) int {
	return r.dayOfMonth.OrElse(anchor.Day())
}

func atAnchorClock(t, anchor time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), anchor.Hour(), anchor.Minute(), anchor.Second(), 0, anchor.Location())
}

// daysBetween counts calendar days between the civil dates of from and to,
// so DST transitions do not shift phase.
func daysBetween(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC).Unix()
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC).Unix()
	return int((b - a) / 86400)
}

func daysIn(y int, m time.Month) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func later(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func floorMod(a, n int) int {
	return ((a % n) + n) % n
}

func floorDiv(a, n int) int {
	q := a / n
	if a%n != 0 && (a < 0) != (n < 0) {
		q--
	}
	return q
}
