package repository

import (
	"context"
	"fmt"

	"github.com/hray3182/nudge/internal/database"
	"github.com/hray3182/nudge/internal/models"
)

type UserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Ensure upserts the user and creates default settings on first contact.
// Existing settings are left untouched.
func (r *UserRepository) Ensure(ctx context.Context, userID int64, userName, defaultTimezone string) (*models.User, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	user := &models.User{}
	err = tx.QueryRow(ctx,
		`INSERT INTO "user" (user_id, user_name) VALUES ($1, $2)
		 ON CONFLICT (user_id) DO UPDATE SET user_name = EXCLUDED.user_name
		 RETURNING user_id, user_name, created_at`,
		userID, userName,
	).Scan(&user.UserID, &user.UserName, &user.CreatedAt)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO user_settings (user_id, timezone) VALUES ($1, $2)
		 ON CONFLICT (user_id) DO NOTHING`,
		userID, defaultTimezone,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user settings: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return user, nil
}
