// Package reminders implements the reminder workflow: creation, completion
// with recurrence advancement, snoozing and routine stream imports.
package reminders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hray3182/nudge/internal/metrics"
	"github.com/hray3182/nudge/internal/models"
	"github.com/hray3182/nudge/internal/recurrence"
	"github.com/hray3182/nudge/internal/repository"
	"github.com/hray3182/nudge/internal/streams"
)

var (
	ErrNotFound       = errors.New("reminder not found")
	ErrAlreadyDone    = errors.New("reminder is already done")
	ErrNotDone        = errors.New("reminder is not done")
	ErrInvalidSnooze  = errors.New("snooze must be between 1 minute and 30 days")
	ErrInvalidTitle   = errors.New("title must not be empty")
	ErrStreamNotFound = errors.New("stream not found")
)

type ReminderStore interface {
	Create(ctx context.Context, reminder *models.Reminder) error
	CreateBatch(ctx context.Context, reminders []*models.Reminder) error
	GetByID(ctx context.Context, reminderID int, userID int64) (*models.Reminder, error)
	Update(ctx context.Context, reminder *models.Reminder) error
}

type ActivityStore interface {
	Increment(ctx context.Context, userID int64, dateKey string) (int, error)
}

type SettingsStore interface {
	GetByUserID(ctx context.Context, userID int64) (*models.UserSettings, error)
}

type StreamStore interface {
	ListPublic(ctx context.Context) ([]*models.Stream, error)
	GetByID(ctx context.Context, streamID uuid.UUID) (*models.Stream, error)
	Subscribe(ctx context.Context, userID int64, streamID uuid.UUID) error
}

// MaxSnoozeMinutes bounds a single snooze to 30 days.
const MaxSnoozeMinutes = 30 * 24 * 60

type Service struct {
	reminders ReminderStore
	activity  ActivityStore
	settings  SettingsStore
	streams   StreamStore
	catalog   *streams.Catalog
	metrics   *metrics.Metrics
	now       func() time.Time
	// defaultTimezone applies when a user's settings cannot be read.
	defaultTimezone string
}

type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithDefaultTimezone sets the zone used when a user's settings are
// missing or unreadable. The default is UTC.
func WithDefaultTimezone(name string) Option {
	return func(s *Service) { s.defaultTimezone = name }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithCatalog sets the built-in streams used when the store has none.
func WithCatalog(c *streams.Catalog) Option {
	return func(s *Service) { s.catalog = c }
}

func NewService(reminders ReminderStore, activity ActivityStore, settings SettingsStore, streamStore StreamStore, opts ...Option) *Service {
	s := &Service{
		reminders: reminders,
		activity:  activity,
		settings:  settings,
		streams:   streamStore,
		now:       time.Now,

		defaultTimezone: "UTC",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewReminder is the input to Create.
type NewReminder struct {
	UserID int64
	Title  string
	Notes  string
	DueAt  time.Time
	Rule   recurrence.Rule
}

// Completion is the result of marking a reminder done.
type Completion struct {
	Reminder *models.Reminder
	// Next is the next occurrence for recurring reminders, nil otherwise.
	Next *time.Time
	// Fallback is set when no occurrence matched within the search limit
	// and Next is one day after completion.
	Fallback bool
}

func (s *Service) Create(ctx context.Context, in NewReminder) (*models.Reminder, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrInvalidTitle
	}
	rule := in.Rule
	if rule == nil {
		rule = recurrence.NoRecurrence()
	}

	reminder := &models.Reminder{
		UserID:     in.UserID,
		Title:      title,
		Notes:      strings.TrimSpace(in.Notes),
		Status:     models.StatusActive,
		DueAt:      in.DueAt,
		NextFireAt: in.DueAt,
		Recurrence: recurrence.Value{Rule: rule},
		Version:    1,
		LastAction: models.ActionCreate,
	}
	if err := s.reminders.Create(ctx, reminder); err != nil {
		return nil, fmt.Errorf("failed to create reminder: %w", err)
	}
	return reminder, nil
}

// Complete marks a reminder done. A recurring reminder moves its anchor to
// the next occurrence after now and stays active; a one-off reminder
// becomes done.
func (s *Service) Complete(ctx context.Context, reminderID int, userID int64) (*Completion, error) {
	reminder, err := s.load(ctx, reminderID, userID)
	if err != nil {
		return nil, err
	}
	if reminder.IsDone() {
		return nil, ErrAlreadyDone
	}

	now := s.now()
	settings := s.userSettings(ctx, userID)
	rule := reminder.Rule()
	result := &Completion{Reminder: reminder}

	if recurrence.IsRecurring(rule) {
		// Stored times come back in UTC; the anchor must carry the user's
		// zone so the wall-clock time survives DST.
		occ := recurrence.NextFireAt(rule, reminder.DueAt.In(settings.Location()), now)
		if occ.Fallback {
			log.Printf("No occurrence of %s found for reminder %d, falling back to %s",
				recurrence.Shorthand(rule), reminder.ReminderID, occ.At.Format(time.RFC3339))
			s.metrics.IncFallback()
		}
		reminder.DueAt = occ.At
		reminder.NextFireAt = occ.At
		reminder.Status = models.StatusActive
		reminder.SnoozeCount = 0
		next := occ.At
		result.Next = &next
		result.Fallback = occ.Fallback
	} else {
		reminder.Status = models.StatusDone
	}
	reminder.LastAction = models.ActionDone
	reminder.NotifiedAt = nil
	reminder.Version++
	reminder.UpdatedAt = now

	if err := s.reminders.Update(ctx, reminder); err != nil {
		return nil, fmt.Errorf("failed to complete reminder: %w", err)
	}
	s.metrics.IncCompletion(string(rule.Kind()))

	if _, err := s.activity.Increment(ctx, userID, settings.DateKey(now)); err != nil {
		log.Printf("Failed to record activity for user %d: %v", userID, err)
	}
	return result, nil
}

// Snooze pushes the next notification minutes into the future without
// touching the anchor.
func (s *Service) Snooze(ctx context.Context, reminderID int, userID int64, minutes int) (*models.Reminder, error) {
	if minutes <= 0 || minutes > MaxSnoozeMinutes {
		return nil, ErrInvalidSnooze
	}
	reminder, err := s.load(ctx, reminderID, userID)
	if err != nil {
		return nil, err
	}
	if reminder.IsDone() {
		return nil, ErrAlreadyDone
	}

	now := s.now()
	reminder.NextFireAt = now.Add(time.Duration(minutes) * time.Minute)
	reminder.SnoozeCount++
	reminder.LastAction = models.ActionSnooze
	reminder.NotifiedAt = nil
	reminder.Version++
	reminder.UpdatedAt = now

	if err := s.reminders.Update(ctx, reminder); err != nil {
		return nil, fmt.Errorf("failed to snooze reminder: %w", err)
	}
	return reminder, nil
}

// Reopen makes a done reminder active again at its due time.
func (s *Service) Reopen(ctx context.Context, reminderID int, userID int64) (*models.Reminder, error) {
	reminder, err := s.load(ctx, reminderID, userID)
	if err != nil {
		return nil, err
	}
	if !reminder.IsDone() {
		return nil, ErrNotDone
	}

	reminder.Status = models.StatusActive
	reminder.NextFireAt = reminder.DueAt
	reminder.LastAction = models.ActionUndone
	reminder.NotifiedAt = nil
	reminder.Version++
	reminder.UpdatedAt = s.now()

	if err := s.reminders.Update(ctx, reminder); err != nil {
		return nil, fmt.Errorf("failed to reopen reminder: %w", err)
	}
	return reminder, nil
}

func (s *Service) Delete(ctx context.Context, reminderID int, userID int64) error {
	reminder, err := s.load(ctx, reminderID, userID)
	if err != nil {
		return err
	}

	now := s.now()
	reminder.DeletedAt = &now
	reminder.LastAction = models.ActionEdit
	reminder.Version++
	reminder.UpdatedAt = now

	if err := s.reminders.Update(ctx, reminder); err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}
	return nil
}

// ListStreams returns public streams from the store, or the built-in
// catalog when the store has none.
func (s *Service) ListStreams(ctx context.Context) ([]*models.Stream, error) {
	list, err := s.streams.ListPublic(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list streams: %w", err)
	}
	if len(list) == 0 && s.catalog != nil {
		return s.catalog.Streams(), nil
	}
	return list, nil
}

// ImportStream subscribes the user and creates one reminder per stream
// item, anchored at the item's day offset and time of day in the user's
// timezone.
func (s *Service) ImportStream(ctx context.Context, userID int64, streamID uuid.UUID) ([]*models.Reminder, error) {
	stream, err := s.findStream(ctx, streamID)
	if err != nil {
		return nil, err
	}

	settings := s.userSettings(ctx, userID)
	start := s.now().In(settings.Location())

	created := make([]*models.Reminder, 0, len(stream.Items))
	for _, item := range stream.Items {
		anchor, err := item.Anchor(start)
		if err != nil {
			return nil, fmt.Errorf("failed to import %q: %w", item.Title, err)
		}
		created = append(created, &models.Reminder{
			UserID:     userID,
			Title:      item.Title,
			Status:     models.StatusActive,
			DueAt:      anchor,
			NextFireAt: anchor,
			Recurrence: recurrence.Value{Rule: item.Recurrence.Get()},
			Version:    1,
			LastAction: models.ActionCreate,
		})
	}

	if err := s.reminders.CreateBatch(ctx, created); err != nil {
		return nil, fmt.Errorf("failed to import stream: %w", err)
	}
	if err := s.streams.Subscribe(ctx, userID, stream.StreamID); err != nil {
		log.Printf("Failed to record subscription of user %d to stream %s: %v", userID, stream.StreamID, err)
	}
	return created, nil
}

func (s *Service) findStream(ctx context.Context, streamID uuid.UUID) (*models.Stream, error) {
	stream, err := s.streams.GetByID(ctx, streamID)
	if err == nil {
		return stream, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to get stream: %w", err)
	}
	if s.catalog != nil {
		if stream, ok := s.catalog.Get(streamID); ok {
			return stream, nil
		}
	}
	return nil, ErrStreamNotFound
}

func (s *Service) load(ctx context.Context, reminderID int, userID int64) (*models.Reminder, error) {
	reminder, err := s.reminders.GetByID(ctx, reminderID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reminder: %w", err)
	}
	if reminder.IsDeleted() {
		return nil, ErrNotFound
	}
	return reminder, nil
}

// userSettings never fails; missing settings mean the default timezone
// and default presets.
func (s *Service) userSettings(ctx context.Context, userID int64) *models.UserSettings {
	settings, err := s.settings.GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Printf("Failed to get settings for user %d: %v", userID, err)
		}
		return models.NewDefaultUserSettings(userID, s.defaultTimezone)
	}
	return settings
}
