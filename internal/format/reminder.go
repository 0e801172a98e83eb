package format

import (
	"fmt"
	"strconv"
	"time"

	"github.com/hray3182/nudge/internal/models"
	"github.com/hray3182/nudge/internal/recurrence"
)

// ReminderCard is the notification sent when a reminder fires.
func ReminderCard(r *models.Reminder, now time.Time, loc *time.Location) Message {
	var b Builder
	b.Text("⏰ ").Bold(r.Title).Line()
	if r.Notes != "" {
		b.Italic(r.Notes).Line()
	}
	b.Text("Due: " + DueTime(r.NextFireAt, now, loc)).Line()
	if r.IsRecurring() {
		b.Text("🔁 " + recurrence.Describe(r.Rule(), r.DueAt.In(loc))).Line()
	}
	if r.SnoozeCount > 0 {
		b.Text(fmt.Sprintf("Snoozed %d×", r.SnoozeCount)).Line()
	}
	return b.Message()
}

// ReminderList renders active reminders in fire order, then done ones.
func ReminderList(reminders []*models.Reminder, now time.Time, loc *time.Location) Message {
	var b Builder
	if len(reminders) == 0 {
		return b.Text("No reminders yet. Add one with /remind.").Message()
	}

	b.Bold("Reminders").Line().Line()
	for _, r := range reminders {
		mark := "•"
		switch {
		case r.IsDone():
			mark = "✓"
		case r.IsOverdue(now):
			mark = "!"
		}
		b.Text(mark + " ").Code("#" + strconv.Itoa(r.ReminderID)).Text(" " + r.Title).Line()

		detail := "  " + DueTime(r.NextFireAt, now, loc)
		if r.IsDone() {
			detail = "  done"
		}
		if r.IsRecurring() {
			detail += " · " + recurrence.Describe(r.Rule(), r.DueAt.In(loc))
		}
		b.Text(detail).Line()
	}
	return b.Message()
}

// Upcoming lists the next occurrences of a reminder.
func Upcoming(r *models.Reminder, times []time.Time, loc *time.Location) Message {
	var b Builder
	b.Text("Next for ").Bold(r.Title).Line()
	b.Text(recurrence.Describe(r.Rule(), r.DueAt.In(loc))).Line().Line()
	if len(times) == 0 {
		return b.Text("No upcoming occurrences.").Message()
	}
	for i, t := range times {
		b.Text(fmt.Sprintf("%d. %s", i+1, t.In(loc).Format("Mon Jan 2, 2006 15:04"))).Line()
	}
	return b.Message()
}

// Completed confirms a completion. next is nil for one-off reminders.
func Completed(r *models.Reminder, next *time.Time, now time.Time, loc *time.Location) Message {
	var b Builder
	b.Text("✅ Done: ").Bold(r.Title).Line()
	if next != nil {
		b.Text("Next: " + DueTime(*next, now, loc)).Line()
	}
	return b.Message()
}

// StreamList renders routine templates available for /subscribe.
func StreamList(streams []*models.Stream) Message {
	var b Builder
	if len(streams) == 0 {
		return b.Text("No streams available.").Message()
	}

	b.Bold("Streams").Line().Line()
	for _, s := range streams {
		b.Bold(s.Title).Text(fmt.Sprintf(" (%d items)", len(s.Items))).Line()
		if s.Description != "" {
			b.Text(s.Description).Line()
		}
		b.Code("/subscribe " + s.StreamID.String()).Line().Line()
	}
	return b.Message()
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
