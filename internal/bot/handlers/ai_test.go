package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hray3182/nudge/internal/ai"
	"github.com/hray3182/nudge/internal/recurrence"
)

func TestDraftStoreTake(t *testing.T) {
	s := newDraftStore()
	d := &ai.Draft{Title: "Gym"}
	s.put(1, d, now)

	_, ok := s.take(2, now)
	assert.False(t, ok)

	got, ok := s.take(1, now.Add(time.Minute))
	require.True(t, ok)
	assert.Same(t, d, got)

	_, ok = s.take(1, now)
	assert.False(t, ok, "take consumes the draft")
}

func TestDraftStoreExpiry(t *testing.T) {
	s := newDraftStore()
	s.put(1, &ai.Draft{Title: "Gym"}, now)
	_, ok := s.take(1, now.Add(draftTimeout+time.Second))
	assert.False(t, ok)
}

func TestDraftStoreSweepsAbandonedEntries(t *testing.T) {
	s := newDraftStore()
	s.put(1, &ai.Draft{Title: "Gym"}, now)
	s.ask(2, "remind me to call", now)
	s.put(3, &ai.Draft{Title: "Rent"}, now.Add(time.Minute))

	later := now.Add(draftTimeout + time.Second)
	s.put(4, &ai.Draft{Title: "Dentist"}, later)
	assert.Len(t, s.drafts, 2)
	assert.Contains(t, s.drafts, int64(3))
	assert.Contains(t, s.drafts, int64(4))
	assert.Empty(t, s.questions)

	s.ask(5, "call the bank", now.Add(draftTimeout+2*time.Minute))
	assert.Len(t, s.drafts, 1)
	assert.Contains(t, s.drafts, int64(4))
	assert.Len(t, s.questions, 1)
}

func TestDraftStoreWithContext(t *testing.T) {
	s := newDraftStore()
	assert.Equal(t, "tomorrow", s.withContext(1, "tomorrow", now))

	s.ask(1, "remind me to call mom", now)
	assert.Equal(t, "remind me to call mom\nat 6pm", s.withContext(1, "at 6pm", now))
	assert.Equal(t, "again", s.withContext(1, "again", now))

	s.ask(1, "old", now)
	assert.Equal(t, "late", s.withContext(1, "late", now.Add(draftTimeout+time.Second)))
}

func TestDraftPreview(t *testing.T) {
	daily, err := recurrence.NewDaily(1)
	require.NoError(t, err)
	d := &ai.Draft{
		Title: "Stretch",
		DueAt: time.Date(2024, 1, 6, 7, 0, 0, 0, time.UTC),
		Rule:  daily,
	}
	m := draftPreview(d, now, time.UTC)
	assert.Equal(t, "Create this reminder?\n\nStretch\nDue: Tomorrow 7:00 AM\n🔁 Every day at 07:00", m.Text)
	require.Len(t, m.Entities, 1)
	assert.Equal(t, 23, m.Entities[0].Offset)
}
