package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hray3182/nudge/internal/recurrence"
)

// Stream is a shareable routine template.
type Stream struct {
	StreamID    uuid.UUID     `json:"stream_id"`
	CreatorID   *int64        `json:"creator_id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Category    string        `json:"category"`
	Tags        []string      `json:"tags"`
	IsPublic    bool          `json:"is_public"`
	LikesCount  int           `json:"likes_count"`
	CreatedAt   time.Time     `json:"created_at"`
	Items       []*StreamItem `json:"items"`
}

type StreamItem struct {
	ItemID     uuid.UUID        `json:"item_id"`
	StreamID   uuid.UUID        `json:"stream_id"`
	Title      string           `json:"title"`
	Recurrence recurrence.Value `json:"recurrence"`
	DayOffset  int              `json:"day_offset"`
	TimeOfDay  string           `json:"time_of_day"` // HH:MM, empty keeps the import time
}

// Anchor resolves the item's first due time for an import happening at
// start: DayOffset days later, at TimeOfDay in start's location.
func (i *StreamItem) Anchor(start time.Time) (time.Time, error) {
	day := start.AddDate(0, 0, i.DayOffset)
	if i.TimeOfDay == "" {
		return day, nil
	}
	clock, err := time.Parse("15:04", i.TimeOfDay)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time_of_day %q: %w", i.TimeOfDay, err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, start.Location()), nil
}
