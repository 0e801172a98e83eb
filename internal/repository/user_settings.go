package repository

import (
	"context"
	"time"

	"github.com/hray3182/nudge/internal/database"
	"github.com/hray3182/nudge/internal/models"
)

type UserSettingsRepository struct {
	db *database.DB
}

func NewUserSettingsRepository(db *database.DB) *UserSettingsRepository {
	return &UserSettingsRepository{db: db}
}

func (r *UserSettingsRepository) GetByUserID(ctx context.Context, userID int64) (*models.UserSettings, error) {
	settings := &models.UserSettings{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT user_id, timezone, snooze_presets_mins, notifications_enabled, updated_at
		 FROM user_settings WHERE user_id = $1`,
		userID,
	).Scan(
		&settings.UserID,
		&settings.Timezone,
		&settings.SnoozePresetsMins,
		&settings.NotificationsEnabled,
		&settings.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return settings, nil
}

func (r *UserSettingsRepository) SetTimezone(ctx context.Context, userID int64, timezone string) error {
	return r.exec(ctx,
		`UPDATE user_settings SET timezone = $1, updated_at = $2 WHERE user_id = $3`,
		timezone, time.Now(), userID,
	)
}

func (r *UserSettingsRepository) SetSnoozePresets(ctx context.Context, userID int64, minutes []int) error {
	return r.exec(ctx,
		`UPDATE user_settings SET snooze_presets_mins = $1, updated_at = $2 WHERE user_id = $3`,
		minutes, time.Now(), userID,
	)
}

func (r *UserSettingsRepository) SetNotificationsEnabled(ctx context.Context, userID int64, enabled bool) error {
	return r.exec(ctx,
		`UPDATE user_settings SET notifications_enabled = $1, updated_at = $2 WHERE user_id = $3`,
		enabled, time.Now(), userID,
	)
}

func (r *UserSettingsRepository) exec(ctx context.Context, sql string, args ...any) error {
	tag, err := r.db.Pool.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
