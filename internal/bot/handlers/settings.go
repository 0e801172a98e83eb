package handlers

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/hray3182/nudge/internal/export"
	"github.com/hray3182/nudge/internal/format"
	"github.com/hray3182/nudge/internal/models"
	"github.com/hray3182/nudge/internal/tz"
)

const statsDays = 7

// handleSettings shows the current settings with a notifications toggle.
func (h *Handlers) handleSettings(ctx context.Context, msg *tgbotapi.Message) {
	settings := h.settings(ctx, msg.From.ID)
	h.sendFormatted(msg.Chat.ID, settingsText(settings), settingsKeyboard(settings))
}

func (h *Handlers) handleToggleNotifications(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	userID := callback.From.ID
	settings := h.settings(ctx, userID)
	enabled := !settings.NotificationsEnabled

	if err := h.repos.Settings.SetNotificationsEnabled(ctx, userID, enabled); err != nil {
		log.Printf("Failed to toggle notifications: %v", err)
		h.answerCallbackWithAlert(callback.ID, "Failed to update settings, please try again later.")
		return
	}
	settings.NotificationsEnabled = enabled
	h.answerCallback(callback.ID, "")

	m := settingsText(settings)
	edit := tgbotapi.NewEditMessageTextAndMarkup(callback.Message.Chat.ID, callback.Message.MessageID, m.Text, settingsKeyboard(settings))
	edit.Entities = m.Entities
	if _, err := h.api.Send(edit); err != nil {
		log.Printf("Failed to edit settings message: %v", err)
	}
}

func settingsText(s *models.UserSettings) format.Message {
	presets := make([]string, 0, len(s.SnoozePresets()))
	for _, m := range s.SnoozePresets() {
		presets = append(presets, format.Duration(m))
	}
	notifications := "on"
	if !s.NotificationsEnabled {
		notifications = "off"
	}

	var b format.Builder
	b.Bold("Settings").Line().Line()
	b.Text("Timezone: ").Code(s.Timezone).Line()
	b.Text("Snooze buttons: " + strings.Join(presets, ", ")).Line()
	b.Text("Notifications: " + notifications).Line()
	return b.Message()
}

func settingsKeyboard(s *models.UserSettings) tgbotapi.InlineKeyboardMarkup {
	label := "🔕 Turn notifications off"
	if !s.NotificationsEnabled {
		label = "🔔 Turn notifications on"
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(label, callbackToggleNotifications)),
	)
}

func (h *Handlers) handleTimezone(ctx context.Context, msg *tgbotapi.Message) {
	name := strings.TrimSpace(msg.CommandArguments())
	if name == "" {
		settings := h.settings(ctx, msg.From.ID)
		h.sendMessage(msg.Chat.ID, fmt.Sprintf("Your timezone is %s.\nChange it with /timezone <Area/City>, e.g. /timezone Europe/Berlin", settings.Timezone))
		return
	}

	loc, err := tz.Load(name)
	if err != nil {
		h.sendMessage(msg.Chat.ID, fmt.Sprintf("Unknown timezone %q. Use an IANA name such as Asia/Taipei.", name))
		return
	}
	if err := h.repos.Settings.SetTimezone(ctx, msg.From.ID, loc.String()); err != nil {
		log.Printf("Failed to set timezone: %v", err)
		h.sendMessage(msg.Chat.ID, "Failed to update settings, please try again later.")
		return
	}
	h.sendMessage(msg.Chat.ID, fmt.Sprintf("🌍 Timezone set to %s (now %s).", loc.String(), time.Now().In(loc).Format("15:04")))
}

func (h *Handlers) handleSnoozePresets(ctx context.Context, msg *tgbotapi.Message) {
	presets, err := parseSnoozePresets(msg.CommandArguments())
	if err != nil {
		h.sendMessage(msg.Chat.ID, "Usage: /snoozepresets 10,60,180 (one to four values in minutes)")
		return
	}
	if err := h.repos.Settings.SetSnoozePresets(ctx, msg.From.ID, presets); err != nil {
		log.Printf("Failed to set snooze presets: %v", err)
		h.sendMessage(msg.Chat.ID, "Failed to update settings, please try again later.")
		return
	}

	labels := make([]string, len(presets))
	for i, m := range presets {
		labels[i] = format.Duration(m)
	}
	h.sendMessage(msg.Chat.ID, "💤 Snooze buttons: "+strings.Join(labels, ", "))
}

func (h *Handlers) handleExport(ctx context.Context, msg *tgbotapi.Message) {
	list, err := h.repos.Reminder.GetByUserID(ctx, msg.From.ID)
	if err != nil {
		log.Printf("Failed to list reminders for export: %v", err)
		h.sendMessage(msg.Chat.ID, "Failed to export reminders, please try again later.")
		return
	}

	settings := h.settings(ctx, msg.From.ID)
	doc := export.Calendar(list, settings.Location(), time.Now())

	file := tgbotapi.NewDocument(msg.Chat.ID, tgbotapi.FileBytes{Name: "nudge.ics", Bytes: []byte(doc)})
	file.Caption = "📅 Import this file into your calendar app."
	if _, err := h.api.Send(file); err != nil {
		log.Printf("Failed to send export: %v", err)
	}
}

func (h *Handlers) handleStats(ctx context.Context, msg *tgbotapi.Message) {
	settings := h.settings(ctx, msg.From.ID)
	loc := settings.Location()
	today := time.Now().In(loc)
	from := today.AddDate(0, 0, -(statsDays - 1))

	counts, err := h.repos.Activity.Range(ctx, msg.From.ID, from.Format("2006-01-02"), today.Format("2006-01-02"))
	if err != nil {
		log.Printf("Failed to get activity: %v", err)
		h.sendMessage(msg.Chat.ID, "Failed to load stats, please try again later.")
		return
	}
	h.sendFormatted(msg.Chat.ID, statsText(counts, from), nil)
}

// statsText renders one line per day starting at from.
func statsText(counts map[string]int, from time.Time) format.Message {
	var b format.Builder
	b.Bold("Completed this week").Line().Line()
	total := 0
	for i := 0; i < statsDays; i++ {
		day := from.AddDate(0, 0, i)
		n := counts[day.Format("2006-01-02")]
		total += n
		b.Text(fmt.Sprintf("%s %s %d", day.Format("Mon Jan 2"), strings.Repeat("▇", min(n, 10)), n)).Line()
	}
	b.Line().Text(fmt.Sprintf("Total: %d", total))
	return b.Message()
}
