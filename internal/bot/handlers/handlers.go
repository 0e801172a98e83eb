package handlers

import (
	"context"
	"fmt"
	"log"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/hray3182/nudge/internal/ai"
	"github.com/hray3182/nudge/internal/format"
	"github.com/hray3182/nudge/internal/models"
	"github.com/hray3182/nudge/internal/reminders"
	"github.com/hray3182/nudge/internal/repository"
)

type Repositories struct {
	User     *repository.UserRepository
	Reminder *repository.ReminderRepository
	Settings *repository.UserSettingsRepository
	Activity *repository.ActivityRepository
}

// Notifier wakes the scheduler after a change to fire times.
type Notifier interface {
	Notify()
}

type Handlers struct {
	api             *tgbotapi.BotAPI
	repos           *Repositories
	service         *reminders.Service
	ai              *ai.Client
	notifier        Notifier
	drafts          *draftStore
	defaultTimezone string
	devMode         bool
}

func New(api *tgbotapi.BotAPI, repos *Repositories, service *reminders.Service, aiClient *ai.Client, notifier Notifier, defaultTimezone string, devMode bool) *Handlers {
	return &Handlers{
		api:             api,
		repos:           repos,
		service:         service,
		ai:              aiClient,
		notifier:        notifier,
		drafts:          newDraftStore(),
		defaultTimezone: defaultTimezone,
		devMode:         devMode,
	}
}

func (h *Handlers) HandleCommand(ctx context.Context, msg *tgbotapi.Message) {
	if !h.ensureUser(ctx, msg.From) {
		return
	}

	switch msg.Command() {
	case "start":
		h.handleStart(ctx, msg)
	case "help":
		h.handleHelp(ctx, msg)
	case "remind":
		h.handleRemind(ctx, msg)
	case "reminders":
		h.handleReminderList(ctx, msg)
	case "done":
		h.handleDone(ctx, msg)
	case "undo":
		h.handleUndo(ctx, msg)
	case "snooze":
		h.handleSnooze(ctx, msg)
	case "delete":
		h.handleDelete(ctx, msg)
	case "next":
		h.handleNext(ctx, msg)
	case "streams":
		h.handleStreams(ctx, msg)
	case "subscribe":
		h.handleSubscribe(ctx, msg)
	case "export":
		h.handleExport(ctx, msg)
	case "stats":
		h.handleStats(ctx, msg)
	case "settings":
		h.handleSettings(ctx, msg)
	case "timezone":
		h.handleTimezone(ctx, msg)
	case "snoozepresets":
		h.handleSnoozePresets(ctx, msg)
	default:
		h.sendMessage(msg.Chat.ID, "Unknown command. Use /help to see what I can do.")
	}
}

func (h *Handlers) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if !h.ensureUser(ctx, msg.From) {
		return
	}
	h.handleAIMessage(ctx, msg)
}

func (h *Handlers) HandleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	if callback.Message == nil {
		return
	}
	if !h.ensureUser(ctx, callback.From) {
		return
	}

	data, err := parseCallback(callback.Data)
	if err != nil {
		h.debug("Ignoring callback", "data", callback.Data, "err", err)
		h.answerCallback(callback.ID, "")
		return
	}

	switch data.action {
	case format.CallbackDone:
		h.handleDoneCallback(ctx, callback, data.reminderID)
	case format.CallbackSnooze:
		h.handleSnoozeCallback(ctx, callback, data.reminderID, data.minutes)
	case callbackDraftConfirm, callbackDraftCancel:
		h.handleDraftCallback(ctx, callback, data.action)
	case callbackToggleNotifications:
		h.handleToggleNotifications(ctx, callback)
	}
}

func (h *Handlers) ensureUser(ctx context.Context, from *tgbotapi.User) bool {
	if from == nil {
		return false
	}
	if _, err := h.repos.User.Ensure(ctx, from.ID, from.UserName, h.defaultTimezone); err != nil {
		log.Printf("Failed to get/create user: %v", err)
		return false
	}
	return true
}

// settings returns the user's settings, or defaults when they cannot be read.
func (h *Handlers) settings(ctx context.Context, userID int64) *models.UserSettings {
	settings, err := h.repos.Settings.GetByUserID(ctx, userID)
	if err != nil {
		log.Printf("Failed to get settings for user %d: %v", userID, err)
		return models.NewDefaultUserSettings(userID, h.defaultTimezone)
	}
	return settings
}

func (h *Handlers) notify() {
	if h.notifier != nil {
		h.notifier.Notify()
	}
}

func (h *Handlers) debug(msg string, kv ...any) {
	if !h.devMode {
		return
	}
	log.Printf("[DEBUG] %s %v", msg, kv)
}

func (h *Handlers) answerCallback(callbackID string, text string) {
	answer := tgbotapi.NewCallback(callbackID, text)
	if _, err := h.api.Request(answer); err != nil {
		log.Printf("Failed to answer callback: %v", err)
	}
}

func (h *Handlers) answerCallbackWithAlert(callbackID string, text string) {
	answer := tgbotapi.NewCallbackWithAlert(callbackID, text)
	if _, err := h.api.Request(answer); err != nil {
		log.Printf("Failed to answer callback with alert: %v", err)
	}
}

func (h *Handlers) editFormatted(chatID int64, messageID int, m format.Message) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, m.Text)
	edit.Entities = m.Entities
	if _, err := h.api.Send(edit); err != nil {
		log.Printf("Failed to edit message: %v", err)
	}
}

func (h *Handlers) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.api.Send(msg); err != nil {
		log.Printf("Failed to send message: %v", err)
	}
}

func (h *Handlers) sendFormatted(chatID int64, m format.Message, markup any) {
	msg := tgbotapi.NewMessage(chatID, m.Text)
	msg.Entities = m.Entities
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := h.api.Send(msg); err != nil {
		log.Printf("Failed to send message: %v", err)
	}
}

func (h *Handlers) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	text := fmt.Sprintf(`👋 Hi %s!

I'm Nudge. I remind you of things, once or on a schedule, and move recurring reminders forward when you mark them done.

Try:
• /remind 18:00 Water the plants
• /remind 07:30 weekly/2:mon,fri Gym
• /streams to pick a ready-made routine

Or just tell me: "remind me to pay rent on the 1st of every month".

Use /help to see all commands.`, msg.From.FirstName)
	h.sendMessage(msg.Chat.ID, text)
}

func (h *Handlers) handleHelp(ctx context.Context, msg *tgbotapi.Message) {
	var b format.Builder
	b.Bold("Reminders").Line()
	b.Text("/remind <when> [rule] <title> - add a reminder").Line()
	b.Text("   when: 18:00, 2024-03-01T09:00, +30m, +2h, +1d").Line()
	b.Text("   rule: daily/3, weekly/2:mon,fri, weekdays, monthly:15, hourly, minutely/20").Line()
	b.Text("/reminders - list reminders").Line()
	b.Text("/done <id> - mark done").Line()
	b.Text("/undo <id> - reopen a done reminder").Line()
	b.Text("/snooze <id> <minutes> - snooze").Line()
	b.Text("/delete <id> - delete").Line()
	b.Text("/next <id> [n] - preview upcoming times").Line().Line()
	b.Bold("Routines").Line()
	b.Text("/streams - browse routine streams").Line()
	b.Text("/subscribe <stream-id> - add a stream's reminders").Line().Line()
	b.Bold("Settings").Line()
	b.Text("/settings - show settings, turn notifications on or off").Line()
	b.Text("/timezone <Area/City> - set your timezone").Line()
	b.Text("/snoozepresets 10,60,180 - snooze buttons in minutes").Line()
	b.Text("/export - calendar file of your reminders").Line()
	b.Text("/stats - completions over the last week").Line()
	h.sendFormatted(msg.Chat.ID, b.Message(), nil)
}

// draftTimeout bounds how long an AI draft waits for confirmation.
const draftTimeout = 5 * time.Minute
