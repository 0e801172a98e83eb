package format

import (
	"fmt"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"
	"unicode/utf16"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hray3182/nudge/internal/models"
	"github.com/hray3182/nudge/internal/recurrence"
)

func taipei(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Taipei")
	require.NoError(t, err)
	return loc
}

// render prints a message with each entity and the text it covers.
func render(m Message) string {
	var sb strings.Builder
	sb.WriteString(m.Text)
	sb.WriteString("\n--- entities\n")
	units := utf16.Encode([]rune(m.Text))
	for _, e := range m.Entities {
		covered := string(utf16.Decode(units[e.Offset : e.Offset+e.Length]))
		fmt.Fprintf(&sb, "%s %d %d %s\n", e.Type, e.Offset, e.Length, covered)
	}
	return sb.String()
}

func assertGolden(t *testing.T, name string, m Message) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(render(m)))
}

func TestUTF16Len(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"abc", 3},
		{"⏰", 1},
		{"🔁", 2},
		{"提醒", 2},
		{"a🔁b", 4},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, UTF16Len(tt.in), tt.in)
	}
}

func TestBuilderOffsets(t *testing.T) {
	var b Builder
	m := b.Text("🔁 ").Bold("Gym").Text(" ").Italic("").Code("x").Line().Message()

	assert.Equal(t, "🔁 Gym x", m.Text)
	require.Len(t, m.Entities, 2)
	assert.Equal(t, "bold", m.Entities[0].Type)
	assert.Equal(t, 3, m.Entities[0].Offset)
	assert.Equal(t, 3, m.Entities[0].Length)
	assert.Equal(t, "code", m.Entities[1].Type)
	assert.Equal(t, 7, m.Entities[1].Offset)
}

func TestDueTime(t *testing.T) {
	loc := taipei(t)
	now := time.Date(2024, 1, 5, 12, 0, 0, 0, loc)

	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"today", time.Date(2024, 1, 5, 15, 4, 0, 0, loc), "3:04 PM"},
		{"earlier today", time.Date(2024, 1, 5, 0, 30, 0, 0, loc), "12:30 AM"},
		{"tomorrow", time.Date(2024, 1, 6, 9, 0, 0, 0, loc), "Tomorrow 9:00 AM"},
		{"this year", time.Date(2024, 3, 2, 18, 45, 0, 0, loc), "Mar 2 6:45 PM"},
		{"yesterday", time.Date(2024, 1, 4, 9, 0, 0, 0, loc), "Jan 4 9:00 AM"},
		{"next year", time.Date(2025, 1, 2, 8, 0, 0, 0, loc), "Jan 2, 2025 8:00 AM"},
		// 20:00 UTC on the 5th is already the 6th in Taipei.
		{"converted to location", time.Date(2024, 1, 5, 20, 0, 0, 0, time.UTC), "Tomorrow 4:00 AM"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DueTime(tt.t, now, loc))
		})
	}
}

func TestDuration(t *testing.T) {
	assert.Equal(t, "10 min", Duration(10))
	assert.Equal(t, "1 hr", Duration(60))
	assert.Equal(t, "1 hr 30 min", Duration(90))
	assert.Equal(t, "3 hr", Duration(180))
}

func TestReminderCard(t *testing.T) {
	loc := taipei(t)
	now := time.Date(2024, 1, 5, 12, 0, 0, 0, loc)
	rule, err := recurrence.NewWeekly(1, recurrence.Wednesday, recurrence.Saturday)
	require.NoError(t, err)
	due := time.Date(2024, 1, 6, 18, 0, 0, 0, loc)

	r := &models.Reminder{
		ReminderID: 1,
		Title:      "Water plants",
		Notes:      "Balcony ones",
		Status:     models.StatusActive,
		DueAt:      due,
		NextFireAt: due,
		Recurrence: recurrence.Value{Rule: rule},
	}
	assertGolden(t, "reminder_card", ReminderCard(r, now, loc))
}

func TestReminderCardSnoozedOneOff(t *testing.T) {
	loc := taipei(t)
	now := time.Date(2024, 1, 5, 12, 0, 0, 0, loc)
	r := &models.Reminder{
		Title:       "Call mom",
		Status:      models.StatusActive,
		DueAt:       time.Date(2024, 1, 5, 11, 0, 0, 0, loc),
		NextFireAt:  time.Date(2024, 1, 5, 12, 10, 0, 0, loc),
		SnoozeCount: 2,
	}
	m := ReminderCard(r, now, loc)
	assert.Equal(t, "⏰ Call mom\nDue: 12:10 PM\nSnoozed 2×", m.Text)
	require.Len(t, m.Entities, 1)
}

func TestReminderList(t *testing.T) {
	loc := taipei(t)
	now := time.Date(2024, 1, 5, 12, 0, 0, 0, loc)
	gym, err := recurrence.NewWeekly(2, recurrence.Monday, recurrence.Friday)
	require.NoError(t, err)

	gymDue := time.Date(2024, 1, 8, 7, 30, 0, 0, loc)
	list := []*models.Reminder{
		{
			ReminderID: 3, Title: "Pay rent", Status: models.StatusActive,
			DueAt: time.Date(2024, 1, 5, 9, 0, 0, 0, loc), NextFireAt: time.Date(2024, 1, 5, 9, 0, 0, 0, loc),
		},
		{
			ReminderID: 7, Title: "Gym", Status: models.StatusActive,
			DueAt: gymDue, NextFireAt: gymDue, Recurrence: recurrence.Value{Rule: gym},
		},
		{
			ReminderID: 9, Title: "Call mom", Status: models.StatusDone,
			DueAt: time.Date(2024, 1, 4, 9, 0, 0, 0, loc), NextFireAt: time.Date(2024, 1, 4, 9, 0, 0, 0, loc),
		},
	}
	assertGolden(t, "reminder_list", ReminderList(list, now, loc))
}

func TestReminderListEmpty(t *testing.T) {
	m := ReminderList(nil, time.Now(), time.UTC)
	assert.Equal(t, "No reminders yet. Add one with /remind.", m.Text)
	assert.Empty(t, m.Entities)
}

func TestUpcoming(t *testing.T) {
	loc := taipei(t)
	gym, err := recurrence.NewWeekly(2, recurrence.Monday, recurrence.Friday)
	require.NoError(t, err)
	due := time.Date(2024, 1, 8, 7, 30, 0, 0, loc)
	r := &models.Reminder{Title: "Gym", DueAt: due, NextFireAt: due, Recurrence: recurrence.Value{Rule: gym}}

	times := []time.Time{
		due,
		time.Date(2024, 1, 12, 7, 30, 0, 0, loc),
		time.Date(2024, 1, 22, 7, 30, 0, 0, loc),
	}
	assertGolden(t, "upcoming", Upcoming(r, times, loc))
}

func TestCompleted(t *testing.T) {
	now := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)
	r := &models.Reminder{Title: "Stretch"}

	m := Completed(r, nil, now, time.UTC)
	assert.Equal(t, "✅ Done: Stretch", m.Text)

	next := time.Date(2024, 1, 6, 7, 0, 0, 0, time.UTC)
	m = Completed(r, &next, now, time.UTC)
	assert.Equal(t, "✅ Done: Stretch\nNext: Tomorrow 7:00 AM", m.Text)
	require.Len(t, m.Entities, 1)
	assert.Equal(t, 8, m.Entities[0].Offset)
}

func TestReminderKeyboard(t *testing.T) {
	kb := ReminderKeyboard(12, []int{10, 60})
	require.Len(t, kb.InlineKeyboard, 2)

	done := kb.InlineKeyboard[0][0]
	assert.Equal(t, "✅ Done", done.Text)
	require.NotNil(t, done.CallbackData)
	assert.Equal(t, "done:12", *done.CallbackData)

	snooze := kb.InlineKeyboard[1]
	require.Len(t, snooze, 2)
	assert.Equal(t, "💤 10 min", snooze[0].Text)
	assert.Equal(t, "snooze:12:10", *snooze[0].CallbackData)
	assert.Equal(t, "💤 1 hr", snooze[1].Text)
	assert.Equal(t, "snooze:12:60", *snooze[1].CallbackData)

	assert.Len(t, ReminderKeyboard(1, nil).InlineKeyboard, 1)
}
