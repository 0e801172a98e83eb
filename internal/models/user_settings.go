package models

import (
	"time"

	"github.com/hray3182/nudge/internal/tz"
)

// DefaultSnoozePresets are offered on every notification unless the user
// picks their own.
var DefaultSnoozePresets = []int{10, 60, 180}

const maxSnoozePresets = 4

// UserSettings represents user-specific settings
type UserSettings struct {
	UserID               int64     `json:"user_id"`
	Timezone             string    `json:"timezone"`
	SnoozePresetsMins    []int     `json:"snooze_presets_mins"`
	NotificationsEnabled bool      `json:"notifications_enabled"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// NewDefaultUserSettings creates a new UserSettings with default values
func NewDefaultUserSettings(userID int64, timezone string) *UserSettings {
	return &UserSettings{
		UserID:               userID,
		Timezone:             timezone,
		SnoozePresetsMins:    append([]int(nil), DefaultSnoozePresets...),
		NotificationsEnabled: true,
		UpdatedAt:            time.Now(),
	}
}

// Location resolves the user's timezone, falling back to UTC.
func (s *UserSettings) Location() *time.Location {
	return tz.LoadOr(s.Timezone, time.UTC)
}

// SnoozePresets returns the user's presets, or the defaults when none
// are usable. Non-positive values are dropped.
func (s *UserSettings) SnoozePresets() []int {
	var out []int
	for _, m := range s.SnoozePresetsMins {
		if m > 0 {
			out = append(out, m)
		}
		if len(out) == maxSnoozePresets {
			break
		}
	}
	if len(out) == 0 {
		return append([]int(nil), DefaultSnoozePresets...)
	}
	return out
}

// DateKey is the user's local calendar date, used to bucket activity.
func (s *UserSettings) DateKey(t time.Time) string {
	return t.In(s.Location()).Format("2006-01-02")
}
