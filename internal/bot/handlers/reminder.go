package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/hray3182/nudge/internal/format"
	"github.com/hray3182/nudge/internal/recurrence"
	"github.com/hray3182/nudge/internal/reminders"
)

const (
	defaultPreviewCount = 5
	maxPreviewCount     = 20
)

func (h *Handlers) handleRemind(ctx context.Context, msg *tgbotapi.Message) {
	settings := h.settings(ctx, msg.From.ID)
	loc := settings.Location()

	args, err := parseRemindArgs(msg.CommandArguments(), time.Now(), loc)
	if errors.Is(err, errUsage) {
		h.sendMessage(msg.Chat.ID, "Usage: /remind <when> [rule] <title>\nExample: /remind 07:30 weekdays Stretch")
		return
	}
	if err != nil {
		h.sendMessage(msg.Chat.ID, "I couldn't read the time. Use 18:00, 2024-03-01T09:00, +30m, +2h or +1d.")
		return
	}

	reminder, err := h.service.Create(ctx, reminders.NewReminder{
		UserID: msg.From.ID,
		Title:  args.title,
		DueAt:  args.dueAt,
		Rule:   args.rule,
	})
	if err != nil {
		log.Printf("Failed to create reminder: %v", err)
		h.sendMessage(msg.Chat.ID, "Failed to create the reminder, please try again later.")
		return
	}
	h.notify()

	var b format.Builder
	b.Text("⏰ Reminder set: ").Bold(reminder.Title).Line()
	b.Text("Due: " + format.DueTime(reminder.DueAt, time.Now(), loc)).Line()
	if reminder.IsRecurring() {
		b.Text("🔁 " + recurrence.Describe(reminder.Rule(), reminder.DueAt.In(loc))).Line()
	}
	b.Code("#" + strconv.Itoa(reminder.ReminderID))
	h.sendFormatted(msg.Chat.ID, b.Message(), nil)
}

func (h *Handlers) handleReminderList(ctx context.Context, msg *tgbotapi.Message) {
	list, err := h.repos.Reminder.GetByUserID(ctx, msg.From.ID)
	if err != nil {
		log.Printf("Failed to list reminders: %v", err)
		h.sendMessage(msg.Chat.ID, "Failed to list reminders, please try again later.")
		return
	}
	settings := h.settings(ctx, msg.From.ID)
	h.sendFormatted(msg.Chat.ID, format.ReminderList(list, time.Now(), settings.Location()), nil)
}

func (h *Handlers) handleDone(ctx context.Context, msg *tgbotapi.Message) {
	id, ok := h.commandID(msg, "/done <id>")
	if !ok {
		return
	}
	completion, err := h.service.Complete(ctx, id, msg.From.ID)
	if err != nil {
		h.replyError(msg.Chat.ID, "complete", err)
		return
	}
	h.notify()
	settings := h.settings(ctx, msg.From.ID)
	h.sendFormatted(msg.Chat.ID, format.Completed(completion.Reminder, completion.Next, time.Now(), settings.Location()), nil)
}

func (h *Handlers) handleUndo(ctx context.Context, msg *tgbotapi.Message) {
	id, ok := h.commandID(msg, "/undo <id>")
	if !ok {
		return
	}
	reminder, err := h.service.Reopen(ctx, id, msg.From.ID)
	if err != nil {
		h.replyError(msg.Chat.ID, "reopen", err)
		return
	}
	h.notify()
	h.sendMessage(msg.Chat.ID, fmt.Sprintf("↩️ Reopened #%d %s", reminder.ReminderID, reminder.Title))
}

func (h *Handlers) handleSnooze(ctx context.Context, msg *tgbotapi.Message) {
	fields := strings.Fields(msg.CommandArguments())
	if len(fields) != 2 {
		h.sendMessage(msg.Chat.ID, "Usage: /snooze <id> <minutes>")
		return
	}
	id, err := parseID(fields[0])
	if err != nil {
		h.sendMessage(msg.Chat.ID, "Usage: /snooze <id> <minutes>")
		return
	}
	minutes, err := strconv.Atoi(fields[1])
	if err != nil {
		h.sendMessage(msg.Chat.ID, "Usage: /snooze <id> <minutes>")
		return
	}

	reminder, err := h.service.Snooze(ctx, id, msg.From.ID, minutes)
	if err != nil {
		h.replyError(msg.Chat.ID, "snooze", err)
		return
	}
	h.notify()
	settings := h.settings(ctx, msg.From.ID)
	h.sendMessage(msg.Chat.ID, fmt.Sprintf("💤 Snoozed %s until %s",
		reminder.Title, format.DueTime(reminder.NextFireAt, time.Now(), settings.Location())))
}

func (h *Handlers) handleDelete(ctx context.Context, msg *tgbotapi.Message) {
	id, ok := h.commandID(msg, "/delete <id>")
	if !ok {
		return
	}
	if err := h.service.Delete(ctx, id, msg.From.ID); err != nil {
		h.replyError(msg.Chat.ID, "delete", err)
		return
	}
	h.sendMessage(msg.Chat.ID, fmt.Sprintf("🗑 Deleted #%d", id))
}

func (h *Handlers) handleNext(ctx context.Context, msg *tgbotapi.Message) {
	fields := strings.Fields(msg.CommandArguments())
	if len(fields) == 0 || len(fields) > 2 {
		h.sendMessage(msg.Chat.ID, "Usage: /next <id> [count]")
		return
	}
	id, err := parseID(fields[0])
	if err != nil {
		h.sendMessage(msg.Chat.ID, "Usage: /next <id> [count]")
		return
	}
	count := defaultPreviewCount
	if len(fields) == 2 {
		count, err = strconv.Atoi(fields[1])
		if err != nil || count <= 0 {
			h.sendMessage(msg.Chat.ID, "Usage: /next <id> [count]")
			return
		}
		count = min(count, maxPreviewCount)
	}

	reminder, err := h.repos.Reminder.GetByID(ctx, id, msg.From.ID)
	if err != nil || reminder.IsDeleted() {
		h.sendMessage(msg.Chat.ID, fmt.Sprintf("Reminder #%d not found.", id))
		return
	}

	settings := h.settings(ctx, msg.From.ID)
	loc := settings.Location()
	times := []time.Time{reminder.DueAt}
	if reminder.IsRecurring() {
		// The current due time counts as the first upcoming occurrence.
		times = append(times, recurrence.Upcoming(reminder.Rule(), reminder.DueAt.In(loc), reminder.DueAt, count-1)...)
	}
	h.sendFormatted(msg.Chat.ID, format.Upcoming(reminder, times, loc), nil)
}

func (h *Handlers) handleDoneCallback(ctx context.Context, callback *tgbotapi.CallbackQuery, reminderID int) {
	completion, err := h.service.Complete(ctx, reminderID, callback.From.ID)
	if err != nil {
		h.answerCallbackWithAlert(callback.ID, errorText("complete", err))
		return
	}
	h.answerCallback(callback.ID, "Done")
	h.notify()

	settings := h.settings(ctx, callback.From.ID)
	m := format.Completed(completion.Reminder, completion.Next, time.Now(), settings.Location())
	h.editFormatted(callback.Message.Chat.ID, callback.Message.MessageID, m)
}

func (h *Handlers) handleSnoozeCallback(ctx context.Context, callback *tgbotapi.CallbackQuery, reminderID, minutes int) {
	reminder, err := h.service.Snooze(ctx, reminderID, callback.From.ID, minutes)
	if err != nil {
		h.answerCallbackWithAlert(callback.ID, errorText("snooze", err))
		return
	}
	h.answerCallback(callback.ID, "Snoozed "+format.Duration(minutes))
	h.notify()

	settings := h.settings(ctx, callback.From.ID)
	var b format.Builder
	b.Text("💤 ").Bold(reminder.Title).Line()
	b.Text("Snoozed until " + format.DueTime(reminder.NextFireAt, time.Now(), settings.Location()))
	h.editFormatted(callback.Message.Chat.ID, callback.Message.MessageID, b.Message())
}

func (h *Handlers) commandID(msg *tgbotapi.Message, usage string) (int, bool) {
	id, err := parseID(msg.CommandArguments())
	if err != nil {
		h.sendMessage(msg.Chat.ID, "Usage: "+usage)
		return 0, false
	}
	return id, true
}

func (h *Handlers) replyError(chatID int64, action string, err error) {
	h.sendMessage(chatID, errorText(action, err))
}

// errorText maps workflow errors to a user message, logging unexpected ones.
func errorText(action string, err error) string {
	switch {
	case errors.Is(err, reminders.ErrNotFound):
		return "Reminder not found."
	case errors.Is(err, reminders.ErrAlreadyDone):
		return "That reminder is already done."
	case errors.Is(err, reminders.ErrNotDone):
		return "That reminder is not done."
	case errors.Is(err, reminders.ErrInvalidSnooze):
		return "Snooze must be between 1 minute and 30 days."
	case errors.Is(err, reminders.ErrInvalidTitle):
		return "The reminder needs a title."
	}
	log.Printf("Failed to %s reminder: %v", action, err)
	return fmt.Sprintf("Failed to %s the reminder, please try again later.", action)
}
