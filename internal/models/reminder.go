package models

import (
	"time"

	"github.com/hray3182/nudge/internal/recurrence"
)

type ReminderStatus string

const (
	StatusActive ReminderStatus = "active"
	StatusDone   ReminderStatus = "done"
)

// ReminderAction records the last user action on a reminder.
type ReminderAction string

const (
	ActionCreate ReminderAction = "create"
	ActionEdit   ReminderAction = "edit"
	ActionSnooze ReminderAction = "snooze"
	ActionDone   ReminderAction = "done"
	ActionUndone ReminderAction = "undone"
)

type Reminder struct {
	ReminderID    int              `json:"reminder_id"`
	UserID        int64            `json:"user_id"`
	Title         string           `json:"title"`
	Notes         string           `json:"notes"`
	Status        ReminderStatus   `json:"status"`
	DueAt         time.Time        `json:"due_at"`       // Anchor: user intent, carried forward on completion
	NextFireAt    time.Time        `json:"next_fire_at"` // Scheduling target, moved by snooze
	Recurrence    recurrence.Value `json:"recurrence"`
	SnoozeCount   int              `json:"snooze_count"`
	Version       int              `json:"version"` // Incremented on every edit
	LastAction    ReminderAction   `json:"last_action"`
	NotifiedAt    *time.Time       `json:"notified_at"`     // Last notification for the current fire time
	LastMessageID *int             `json:"last_message_id"` // Last sent message ID for deletion before resend
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	DeletedAt     *time.Time       `json:"deleted_at"`
}

// Rule returns the recurrence rule, None when unset.
func (r *Reminder) Rule() recurrence.Rule {
	return r.Recurrence.Get()
}

// IsRecurring returns true if this reminder has a recurrence rule
func (r *Reminder) IsRecurring() bool {
	return recurrence.IsRecurring(r.Rule())
}

func (r *Reminder) IsDone() bool {
	return r.Status == StatusDone
}

func (r *Reminder) IsDeleted() bool {
	return r.DeletedAt != nil
}

// IsOverdue reports whether an active reminder's fire time has passed.
func (r *Reminder) IsOverdue(now time.Time) bool {
	return r.Status == StatusActive && !r.NextFireAt.After(now)
}
