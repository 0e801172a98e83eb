package scheduler

import (
	"context"
	"errors"
	"log"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/hray3182/nudge/internal/format"
	"github.com/hray3182/nudge/internal/metrics"
	"github.com/hray3182/nudge/internal/models"
	"github.com/hray3182/nudge/internal/repository"
)

// Sender is the part of *tgbotapi.BotAPI the scheduler uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type ReminderStore interface {
	GetDue(ctx context.Context, until time.Time) ([]*models.Reminder, error)
	SetNotified(ctx context.Context, reminderID int, notifiedAt time.Time, messageID int) error
}

type SettingsStore interface {
	GetByUserID(ctx context.Context, userID int64) (*models.UserSettings, error)
}

type Scheduler struct {
	api             Sender
	reminders       ReminderStore
	settings        SettingsStore
	metrics         *metrics.Metrics
	checkInterval   time.Duration
	defaultTimezone string
	notifyCh        chan struct{}
	now             func() time.Time
}

func New(api Sender, reminders ReminderStore, settings SettingsStore, checkInterval time.Duration, defaultTimezone string, m *metrics.Metrics) *Scheduler {
	return &Scheduler{
		api:             api,
		reminders:       reminders,
		settings:        settings,
		metrics:         m,
		checkInterval:   checkInterval,
		defaultTimezone: defaultTimezone,
		notifyCh:        make(chan struct{}, 1),
		now:             time.Now,
	}
}

// Notify triggers an immediate check. Non-blocking if a check is already pending.
func (s *Scheduler) Notify() {
	select {
	case s.notifyCh <- struct{}{}:
	default:
		// Channel already has a pending notification, skip
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	log.Println("Scheduler started")
	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	s.check(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("Scheduler stopped")
			return
		case <-ticker.C:
			s.check(ctx)
		case <-s.notifyCh:
			log.Println("Scheduler triggered by notification")
			s.check(ctx)
		}
	}
}

func (s *Scheduler) check(ctx context.Context) {
	start := time.Now()
	defer func() { s.metrics.ObservePoll(time.Since(start)) }()

	now := s.now()
	reminders, err := s.reminders.GetDue(ctx, now)
	if err != nil {
		log.Printf("Failed to get due reminders: %v", err)
		return
	}

	for _, reminder := range reminders {
		if ctx.Err() != nil {
			return
		}
		s.notify(ctx, reminder, now)
	}
}

func (s *Scheduler) notify(ctx context.Context, reminder *models.Reminder, now time.Time) {
	settings := s.userSettings(ctx, reminder.UserID)

	// Delete previous message if exists (to avoid flooding)
	if reminder.LastMessageID != nil {
		deleteMsg := tgbotapi.NewDeleteMessage(reminder.UserID, *reminder.LastMessageID)
		if _, err := s.api.Request(deleteMsg); err != nil {
			// The user may have deleted it already
			log.Printf("Failed to delete old reminder message %d: %v", *reminder.LastMessageID, err)
		}
	}

	if !settings.NotificationsEnabled {
		if err := s.reminders.SetNotified(ctx, reminder.ReminderID, now, 0); err != nil {
			log.Printf("Failed to mark reminder %d as notified: %v", reminder.ReminderID, err)
		}
		return
	}

	card := format.ReminderCard(reminder, now, settings.Location())
	msg := tgbotapi.NewMessage(reminder.UserID, card.Text)
	msg.Entities = card.Entities
	msg.ReplyMarkup = format.ReminderKeyboard(reminder.ReminderID, settings.SnoozePresets())

	sent, err := s.api.Send(msg)
	if err != nil {
		log.Printf("Failed to send reminder %d: %v", reminder.ReminderID, err)
		s.metrics.IncNotification(false)
		return
	}
	s.metrics.IncNotification(true)

	if err := s.reminders.SetNotified(ctx, reminder.ReminderID, now, sent.MessageID); err != nil {
		log.Printf("Failed to mark reminder %d as notified: %v", reminder.ReminderID, err)
		return
	}
	log.Printf("Sent reminder %d to user %d", reminder.ReminderID, reminder.UserID)
}

func (s *Scheduler) userSettings(ctx context.Context, userID int64) *models.UserSettings {
	settings, err := s.settings.GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Printf("Failed to get settings for user %d: %v", userID, err)
		}
		return models.NewDefaultUserSettings(userID, s.defaultTimezone)
	}
	return settings
}
