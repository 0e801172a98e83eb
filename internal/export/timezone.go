package export

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
)

// addTimezone writes the VTIMEZONE that TZID start times refer to. It
// holds the offset in effect at from plus one observance per offset
// change up to to, taken from the Go zone database.
func addTimezone(cal *ical.Calendar, loc *time.Location, from, to time.Time) {
	tz := cal.AddTimezone(loc.String())

	t := from.In(loc)
	name, offset := t.Zone()
	addObservance(tz, t.IsDST(), t.Format(localTimestamp), offset, offset, name)

	for {
		_, end := t.ZoneBounds()
		if end.IsZero() || end.After(to) {
			return
		}
		t = end.In(loc)
		next, nextOffset := t.Zone()
		// DTSTART of an observance is the local time before the change.
		onset := t.In(time.FixedZone("", offset)).Format(localTimestamp)
		addObservance(tz, t.IsDST(), onset, offset, nextOffset, next)
		offset = nextOffset
	}
}

func addObservance(tz *ical.VTimezone, dst bool, onset string, from, to int, name string) {
	var c *ical.ComponentBase
	if dst {
		d := &ical.Daylight{}
		tz.Components = append(tz.Components, d)
		c = &d.ComponentBase
	} else {
		c = &tz.AddStandard().ComponentBase
	}
	c.SetProperty(ical.ComponentPropertyDtStart, onset)
	c.SetProperty(ical.ComponentProperty(ical.PropertyTzoffsetfrom), formatOffset(from))
	c.SetProperty(ical.ComponentProperty(ical.PropertyTzoffsetto), formatOffset(to))
	if name != "" {
		c.SetProperty(ical.ComponentProperty(ical.PropertyTzname), name)
	}
}

// formatOffset renders seconds east of UTC as RFC 5545 UTC-OFFSET.
func formatOffset(seconds int) string {
	sign := '+'
	if seconds < 0 {
		sign = '-'
		seconds = -seconds
	}
	s := fmt.Sprintf("%c%02d%02d", sign, seconds/3600, seconds/60%60)
	if sec := seconds % 60; sec != 0 {
		s += fmt.Sprintf("%02d", sec)
	}
	return s
}
