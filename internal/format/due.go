package format

import "time"

// DueTime renders t in loc relative to now: "3:04 PM" for today,
// "Tomorrow 3:04 PM", "Jan 2 3:04 PM" within the year and the full date
// otherwise.
func DueTime(t, now time.Time, loc *time.Location) string {
	t = t.In(loc)
	now = now.In(loc)

	clock := t.Format("3:04 PM")
	switch {
	case sameDay(t, now):
		return clock
	case sameDay(t, now.AddDate(0, 0, 1)):
		return "Tomorrow " + clock
	case t.Year() == now.Year():
		return t.Format("Jan 2 ") + clock
	default:
		return t.Format("Jan 2, 2006 ") + clock
	}
}

// Duration renders a snooze length: "10 min", "1 hr", "1 hr 30 min".
func Duration(minutes int) string {
	h, m := minutes/60, minutes%60
	switch {
	case h == 0:
		return itoa(m) + " min"
	case m == 0:
		return itoa(h) + " hr"
	default:
		return itoa(h) + " hr " + itoa(m) + " min"
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
