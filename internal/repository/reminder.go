package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hray3182/nudge/internal/database"
	"github.com/hray3182/nudge/internal/models"
	"github.com/hray3182/nudge/internal/recurrence"
)

const reminderColumns = `reminder_id, user_id, title, notes, status, due_at, next_fire_at, recurrence,
	snooze_count, version, last_action, notified_at, last_message_id, created_at, updated_at, deleted_at`

type ReminderRepository struct {
	db *database.DB
}

func NewReminderRepository(db *database.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

func (r *ReminderRepository) Create(ctx context.Context, reminder *models.Reminder) error {
	rule, rruleStr, err := encodeRule(reminder.Rule())
	if err != nil {
		return err
	}
	return r.db.Pool.QueryRow(ctx,
		`INSERT INTO reminders (user_id, title, notes, status, due_at, next_fire_at, recurrence, rrule,
			snooze_count, version, last_action)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING reminder_id, created_at, updated_at`,
		reminder.UserID, reminder.Title, reminder.Notes, reminder.Status, reminder.DueAt, reminder.NextFireAt,
		rule, rruleStr, reminder.SnoozeCount, reminder.Version, reminder.LastAction,
	).Scan(&reminder.ReminderID, &reminder.CreatedAt, &reminder.UpdatedAt)
}

// CreateBatch inserts reminders in one transaction.
func (r *ReminderRepository) CreateBatch(ctx context.Context, reminders []*models.Reminder) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, reminder := range reminders {
		rule, rruleStr, err := encodeRule(reminder.Rule())
		if err != nil {
			return err
		}
		err = tx.QueryRow(ctx,
			`INSERT INTO reminders (user_id, title, notes, status, due_at, next_fire_at, recurrence, rrule,
				snooze_count, version, last_action)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			 RETURNING reminder_id, created_at, updated_at`,
			reminder.UserID, reminder.Title, reminder.Notes, reminder.Status, reminder.DueAt, reminder.NextFireAt,
			rule, rruleStr, reminder.SnoozeCount, reminder.Version, reminder.LastAction,
		).Scan(&reminder.ReminderID, &reminder.CreatedAt, &reminder.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert reminder %q: %w", reminder.Title, err)
		}
	}
	return tx.Commit(ctx)
}

func (r *ReminderRepository) GetByID(ctx context.Context, reminderID int, userID int64) (*models.Reminder, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT `+reminderColumns+` FROM reminders WHERE reminder_id = $1 AND user_id = $2`,
		reminderID, userID,
	)
	reminder, err := scanReminder(row)
	if err != nil {
		return nil, notFound(err)
	}
	return reminder, nil
}

// GetByUserID lists a user's reminders that are not deleted, active ones
// first in fire order.
func (r *ReminderRepository) GetByUserID(ctx context.Context, userID int64) ([]*models.Reminder, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+reminderColumns+` FROM reminders
		 WHERE user_id = $1 AND deleted_at IS NULL
		 ORDER BY status = 'done', next_fire_at ASC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	return collectReminders(rows)
}

// Update writes every mutable field. reminder.Version must already hold
// the new version; the row is only updated if it still has the previous
// one.
func (r *ReminderRepository) Update(ctx context.Context, reminder *models.Reminder) error {
	rule, rruleStr, err := encodeRule(reminder.Rule())
	if err != nil {
		return err
	}
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE reminders SET title = $1, notes = $2, status = $3, due_at = $4, next_fire_at = $5,
			recurrence = $6, rrule = $7, snooze_count = $8, version = $9, last_action = $10,
			notified_at = $11, updated_at = $12, deleted_at = $13
		 WHERE reminder_id = $14 AND user_id = $15 AND version = $16`,
		reminder.Title, reminder.Notes, reminder.Status, reminder.DueAt, reminder.NextFireAt,
		rule, rruleStr, reminder.SnoozeCount, reminder.Version, reminder.LastAction,
		reminder.NotifiedAt, reminder.UpdatedAt, reminder.DeletedAt,
		reminder.ReminderID, reminder.UserID, reminder.Version-1,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}
	return nil
}

// GetDue returns active reminders whose fire time has passed and that have
// not been notified for that fire time yet.
func (r *ReminderRepository) GetDue(ctx context.Context, until time.Time) ([]*models.Reminder, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+reminderColumns+` FROM reminders
		 WHERE status = 'active' AND deleted_at IS NULL AND next_fire_at <= $1
		   AND (notified_at IS NULL OR notified_at < next_fire_at)
		 ORDER BY next_fire_at ASC`,
		until,
	)
	if err != nil {
		return nil, err
	}
	return collectReminders(rows)
}

func (r *ReminderRepository) SetNotified(ctx context.Context, reminderID int, notifiedAt time.Time, messageID int) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE reminders SET notified_at = $1, last_message_id = $2 WHERE reminder_id = $3`,
		notifiedAt, messageID, reminderID,
	)
	return err
}

func encodeRule(rule recurrence.Rule) ([]byte, string, error) {
	data, err := recurrence.Marshal(rule)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode recurrence: %w", err)
	}
	if !recurrence.IsRecurring(rule) {
		return data, "", nil
	}
	rruleStr, err := recurrence.RRuleString(rule)
	if err != nil {
		return nil, "", err
	}
	return data, rruleStr, nil
}

func scanReminder(row pgx.Row) (*models.Reminder, error) {
	reminder := &models.Reminder{}
	var rule []byte
	if err := row.Scan(&reminder.ReminderID, &reminder.UserID, &reminder.Title, &reminder.Notes,
		&reminder.Status, &reminder.DueAt, &reminder.NextFireAt, &rule, &reminder.SnoozeCount,
		&reminder.Version, &reminder.LastAction, &reminder.NotifiedAt, &reminder.LastMessageID,
		&reminder.CreatedAt, &reminder.UpdatedAt, &reminder.DeletedAt); err != nil {
		return nil, err
	}
	if err := reminder.Recurrence.UnmarshalJSON(rule); err != nil {
		return nil, fmt.Errorf("reminder %d: %w", reminder.ReminderID, err)
	}
	return reminder, nil
}

func collectReminders(rows pgx.Rows) ([]*models.Reminder, error) {
	defer rows.Close()

	var reminders []*models.Reminder
	for rows.Next() {
		reminder, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, reminder)
	}
	return reminders, rows.Err()
}
