// Package export renders reminders as an iCalendar feed.
package export

import (
	"fmt"
	"log"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/hray3182/nudge/internal/models"
	"github.com/hray3182/nudge/internal/recurrence"
)

const localTimestamp = "20060102T150405"

// timezoneYears is how far past the latest start the VTIMEZONE reaches.
const timezoneYears = 5

// Calendar returns an ICS document with one event per active reminder.
// Start times are written in loc with a TZID and a matching VTIMEZONE so
// recurring events keep their wall-clock time across DST changes.
func Calendar(reminders []*models.Reminder, loc *time.Location, now time.Time) string {
	cal := ical.NewCalendarFor("Nudge")
	cal.SetMethod(ical.MethodPublish)
	cal.SetXWRCalName("Nudge reminders")

	active := make([]*models.Reminder, 0, len(reminders))
	for _, r := range reminders {
		if !r.IsDeleted() && !r.IsDone() {
			active = append(active, r)
		}
	}

	if loc != time.UTC && len(active) > 0 {
		cal.SetXWRTimezone(loc.String())
		from, to := active[0].DueAt, now
		for _, r := range active {
			if r.DueAt.Before(from) {
				from = r.DueAt
			}
			if r.DueAt.After(to) {
				to = r.DueAt
			}
		}
		first := from.In(loc)
		addTimezone(cal, loc,
			time.Date(first.Year(), time.January, 1, 0, 0, 0, 0, loc),
			to.AddDate(timezoneYears, 0, 0))
	}

	for _, r := range active {
		event := cal.AddEvent(fmt.Sprintf("reminder-%d@nudge", r.ReminderID))
		event.SetDtStampTime(now)
		event.SetCreatedTime(r.CreatedAt)
		event.SetModifiedAt(r.UpdatedAt)
		event.SetSequence(r.Version)
		event.SetSummary(r.Title)
		if r.Notes != "" {
			event.SetDescription(r.Notes)
		}
		setStart(event, r.DueAt, loc)

		if !r.IsRecurring() {
			continue
		}
		rrule, err := recurrence.RRuleString(r.Rule())
		if err != nil {
			log.Printf("Failed to export recurrence of reminder %d: %v", r.ReminderID, err)
			continue
		}
		event.AddRrule(rrule)
	}

	return cal.Serialize()
}

func setStart(event *ical.VEvent, t time.Time, loc *time.Location) {
	if loc == time.UTC {
		event.SetStartAt(t)
		return
	}
	event.SetProperty(ical.ComponentPropertyDtStart, t.In(loc).Format(localTimestamp), ical.WithTZID(loc.String()))
}
