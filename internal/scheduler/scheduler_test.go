package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hray3182/nudge/internal/models"
	"github.com/hray3182/nudge/internal/repository"
)

type fakeSender struct {
	sent     []tgbotapi.MessageConfig
	deleted  []int
	failSend bool
	nextID   int
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.failSend {
		return tgbotapi.Message{}, errors.New("telegram down")
	}
	msg, ok := c.(tgbotapi.MessageConfig)
	if !ok {
		return tgbotapi.Message{}, errors.New("unexpected chattable")
	}
	f.sent = append(f.sent, msg)
	f.nextID++
	return tgbotapi.Message{MessageID: 100 + f.nextID}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	if d, ok := c.(tgbotapi.DeleteMessageConfig); ok {
		f.deleted = append(f.deleted, d.MessageID)
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

type notified struct {
	at        time.Time
	messageID int
}

type fakeReminders struct {
	due      []*models.Reminder
	until    time.Time
	notified map[int]notified
}

func (f *fakeReminders) GetDue(_ context.Context, until time.Time) ([]*models.Reminder, error) {
	f.until = until
	return f.due, nil
}

func (f *fakeReminders) SetNotified(_ context.Context, id int, at time.Time, messageID int) error {
	f.notified[id] = notified{at: at, messageID: messageID}
	return nil
}

type fakeSettings map[int64]*models.UserSettings

func (f fakeSettings) GetByUserID(_ context.Context, userID int64) (*models.UserSettings, error) {
	s, ok := f[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s, nil
}

var now = time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)

func newScheduler(api *fakeSender, reminders *fakeReminders, settings fakeSettings) *Scheduler {
	s := New(api, reminders, settings, time.Minute, "UTC", nil)
	s.now = func() time.Time { return now }
	return s
}

func dueReminder(id int, userID int64) *models.Reminder {
	return &models.Reminder{
		ReminderID: id,
		UserID:     userID,
		Title:      "Stretch",
		Status:     models.StatusActive,
		DueAt:      now,
		NextFireAt: now,
	}
}

func TestCheckSendsDueReminders(t *testing.T) {
	previous := 55
	withOld := dueReminder(2, 7)
	withOld.LastMessageID = &previous

	api := &fakeSender{}
	store := &fakeReminders{due: []*models.Reminder{dueReminder(1, 7), withOld}, notified: map[int]notified{}}
	s := newScheduler(api, store, fakeSettings{})

	s.check(context.Background())

	assert.Equal(t, now, store.until)
	require.Len(t, api.sent, 2)
	assert.Equal(t, int64(7), api.sent[0].ChatID)
	assert.Equal(t, "⏰ Stretch\nDue: 9:00 AM", api.sent[0].Text)
	assert.Equal(t, []int{55}, api.deleted)

	assert.Equal(t, notified{at: now, messageID: 101}, store.notified[1])
	assert.Equal(t, notified{at: now, messageID: 102}, store.notified[2])

	kb, ok := api.sent[0].ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, kb.InlineKeyboard, 2)
	assert.Len(t, kb.InlineKeyboard[1], len(models.DefaultSnoozePresets))
}

func TestCheckUsesUserSettings(t *testing.T) {
	settings := models.NewDefaultUserSettings(7, "UTC")
	settings.SnoozePresetsMins = []int{5}

	api := &fakeSender{}
	store := &fakeReminders{due: []*models.Reminder{dueReminder(1, 7)}, notified: map[int]notified{}}
	newScheduler(api, store, fakeSettings{7: settings}).check(context.Background())

	require.Len(t, api.sent, 1)
	kb := api.sent[0].ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.Len(t, kb.InlineKeyboard[1], 1)
	assert.Equal(t, "snooze:1:5", *kb.InlineKeyboard[1][0].CallbackData)
}

func TestCheckNotificationsDisabled(t *testing.T) {
	settings := models.NewDefaultUserSettings(7, "UTC")
	settings.NotificationsEnabled = false

	api := &fakeSender{}
	store := &fakeReminders{due: []*models.Reminder{dueReminder(1, 7)}, notified: map[int]notified{}}
	newScheduler(api, store, fakeSettings{7: settings}).check(context.Background())

	assert.Empty(t, api.sent)
	assert.Equal(t, notified{at: now}, store.notified[1])
}

func TestCheckSendFailureLeavesReminderDue(t *testing.T) {
	api := &fakeSender{failSend: true}
	store := &fakeReminders{due: []*models.Reminder{dueReminder(1, 7)}, notified: map[int]notified{}}
	newScheduler(api, store, fakeSettings{}).check(context.Background())

	assert.Empty(t, store.notified)
}

func TestNotifyIsNonBlocking(t *testing.T) {
	s := newScheduler(&fakeSender{}, &fakeReminders{notified: map[int]notified{}}, fakeSettings{})
	s.Notify()
	s.Notify()
	assert.Len(t, s.notifyCh, 1)
}
