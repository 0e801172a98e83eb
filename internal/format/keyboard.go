package format

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback data prefixes for reminder buttons.
const (
	CallbackDone   = "done"
	CallbackSnooze = "snooze"
)

// ReminderKeyboard offers Done and one snooze button per preset.
func ReminderKeyboard(reminderID int, snoozeMins []int) tgbotapi.InlineKeyboardMarkup {
	done := tgbotapi.NewInlineKeyboardButtonData("✅ Done", fmt.Sprintf("%s:%d", CallbackDone, reminderID))

	var snooze []tgbotapi.InlineKeyboardButton
	for _, m := range snoozeMins {
		snooze = append(snooze, tgbotapi.NewInlineKeyboardButtonData(
			"💤 "+Duration(m),
			fmt.Sprintf("%s:%d:%d", CallbackSnooze, reminderID, m),
		))
	}

	rows := [][]tgbotapi.InlineKeyboardButton{tgbotapi.NewInlineKeyboardRow(done)}
	if len(snooze) > 0 {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(snooze...))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
