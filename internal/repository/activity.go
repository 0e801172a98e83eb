package repository

import (
	"context"
	"time"

	"github.com/hray3182/nudge/internal/database"
)

// ActivityRepository counts completions per user per local day.
type ActivityRepository struct {
	db *database.DB
}

func NewActivityRepository(db *database.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Increment bumps the count for dateKey (YYYY-MM-DD) and returns the new
// total.
func (r *ActivityRepository) Increment(ctx context.Context, userID int64, dateKey string) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx,
		`INSERT INTO activity (user_id, date_key, count) VALUES ($1, $2::date, 1)
		 ON CONFLICT (user_id, date_key) DO UPDATE SET count = activity.count + 1
		 RETURNING count`,
		userID, dateKey,
	).Scan(&count)
	return count, err
}

// Range returns counts keyed by YYYY-MM-DD for days in [from, to].
func (r *ActivityRepository) Range(ctx context.Context, userID int64, from, to string) (map[string]int, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT date_key, count FROM activity
		 WHERE user_id = $1 AND date_key BETWEEN $2::date AND $3::date`,
		userID, from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var day time.Time
		var count int
		if err := rows.Scan(&day, &count); err != nil {
			return nil, err
		}
		counts[day.Format("2006-01-02")] = count
	}
	return counts, rows.Err()
}
