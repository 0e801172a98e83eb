package ai

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hray3182/nudge/internal/recurrence"
)

func TestParseDraft(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Taipei")
	require.NoError(t, err)

	tests := []struct {
		name      string
		content   string
		wantTitle string
		wantDue   time.Time
		wantRule  string
	}{
		{
			name:      "one-off",
			content:   `{"title":"Call mom","notes":"","due_at":"2024-01-06 18:00","recurrence":{"kind":"none","interval":1,"weekdays":[],"day_of_month":0},"need_more_info":false,"follow_up_prompt":""}`,
			wantTitle: "Call mom",
			wantDue:   time.Date(2024, 1, 6, 18, 0, 0, 0, loc),
			wantRule:  "none",
		},
		{
			name:      "weekly on days",
			content:   `{"title":" Gym ","notes":"leg day","due_at":"2024-01-08 07:30","recurrence":{"kind":"weekly","interval":2,"weekdays":[1,5],"day_of_month":0},"need_more_info":false,"follow_up_prompt":""}`,
			wantTitle: "Gym",
			wantDue:   time.Date(2024, 1, 8, 7, 30, 0, 0, loc),
			wantRule:  "weekly/2:mon,fri",
		},
		{
			name:      "monthly on anchor day",
			content:   `{"title":"Pay rent","notes":"","due_at":"2024-02-01 09:00","recurrence":{"kind":"monthly","interval":1,"weekdays":[],"day_of_month":0},"need_more_info":false,"follow_up_prompt":""}`,
			wantTitle: "Pay rent",
			wantDue:   time.Date(2024, 2, 1, 9, 0, 0, 0, loc),
			wantRule:  "monthly",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := parseDraft(tt.content, loc)
			require.NoError(t, err)
			assert.False(t, d.NeedsMoreInfo())
			assert.Equal(t, tt.wantTitle, d.Title)
			assert.True(t, tt.wantDue.Equal(d.DueAt), d.DueAt)
			assert.Equal(t, tt.wantRule, recurrence.Shorthand(d.Rule))
		})
	}
}

func TestParseDraftFollowUp(t *testing.T) {
	d, err := parseDraft(`{"title":"","notes":"","due_at":"","recurrence":{"kind":"none","interval":1,"weekdays":[],"day_of_month":0},"need_more_info":true,"follow_up_prompt":"When?"}`, time.UTC)
	require.NoError(t, err)
	assert.True(t, d.NeedsMoreInfo())
	assert.Equal(t, "When?", d.FollowUp)
}

func TestParseDraftErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", `nope`},
		{"no title", `{"title":"","due_at":"2024-01-06 18:00","recurrence":{"kind":"none"}}`},
		{"bad time", `{"title":"x","due_at":"tomorrow","recurrence":{"kind":"none"}}`},
		{"bad weekday", `{"title":"x","due_at":"2024-01-06 18:00","recurrence":{"kind":"weekly","interval":1,"weekdays":[9]}}`},
		{"unknown kind", `{"title":"x","due_at":"2024-01-06 18:00","recurrence":{"kind":"yearly","interval":1}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseDraft(tt.content, time.UTC)
			assert.Error(t, err)
		})
	}

	_, err := parseDraft(`{"title":"","due_at":"2024-01-06 18:00","recurrence":{"kind":"none"}}`, time.UTC)
	assert.ErrorIs(t, err, ErrNoTitle)
}
