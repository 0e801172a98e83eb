package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hray3182/nudge/internal/database"
	"github.com/hray3182/nudge/internal/models"
	"github.com/hray3182/nudge/internal/recurrence"
)

type StreamRepository struct {
	db *database.DB
}

func NewStreamRepository(db *database.DB) *StreamRepository {
	return &StreamRepository{db: db}
}

// Upsert writes a stream and replaces its items. Missing IDs are generated.
func (r *StreamRepository) Upsert(ctx context.Context, stream *models.Stream) error {
	if stream.StreamID == uuid.Nil {
		stream.StreamID = uuid.New()
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO streams (stream_id, creator_id, title, description, category, tags, is_public)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (stream_id) DO UPDATE SET
		     title = EXCLUDED.title, description = EXCLUDED.description,
		     category = EXCLUDED.category, tags = EXCLUDED.tags, is_public = EXCLUDED.is_public`,
		stream.StreamID, stream.CreatorID, stream.Title, stream.Description, stream.Category,
		stream.Tags, stream.IsPublic,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert stream: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM stream_items WHERE stream_id = $1`, stream.StreamID); err != nil {
		return fmt.Errorf("failed to clear stream items: %w", err)
	}

	for i, item := range stream.Items {
		if item.ItemID == uuid.Nil {
			item.ItemID = uuid.New()
		}
		item.StreamID = stream.StreamID
		rule, err := recurrence.Marshal(item.Recurrence.Get())
		if err != nil {
			return fmt.Errorf("failed to encode recurrence: %w", err)
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO stream_items (item_id, stream_id, title, recurrence, day_offset, time_of_day, position)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			item.ItemID, item.StreamID, item.Title, rule, item.DayOffset, item.TimeOfDay, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert stream item %q: %w", item.Title, err)
		}
	}

	return tx.Commit(ctx)
}

// ListPublic returns public streams, most liked first, with their items.
func (r *StreamRepository) ListPublic(ctx context.Context) ([]*models.Stream, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT stream_id, creator_id, title, description, category, tags, is_public, likes_count, created_at
		 FROM streams WHERE is_public = TRUE
		 ORDER BY likes_count DESC, created_at ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var streams []*models.Stream
	byID := make(map[uuid.UUID]*models.Stream)
	for rows.Next() {
		stream, err := scanStream(rows)
		if err != nil {
			return nil, err
		}
		streams = append(streams, stream)
		byID[stream.StreamID] = stream
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	itemRows, err := r.db.Pool.Query(ctx,
		`SELECT i.item_id, i.stream_id, i.title, i.recurrence, i.day_offset, i.time_of_day
		 FROM stream_items i JOIN streams s ON s.stream_id = i.stream_id
		 WHERE s.is_public = TRUE
		 ORDER BY i.stream_id, i.position`,
	)
	if err != nil {
		return nil, err
	}
	items, err := collectItems(itemRows)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if stream, ok := byID[item.StreamID]; ok {
			stream.Items = append(stream.Items, item)
		}
	}
	return streams, nil
}

func (r *StreamRepository) GetByID(ctx context.Context, streamID uuid.UUID) (*models.Stream, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT stream_id, creator_id, title, description, category, tags, is_public, likes_count, created_at
		 FROM streams WHERE stream_id = $1`,
		streamID,
	)
	stream, err := scanStream(row)
	if err != nil {
		return nil, notFound(err)
	}

	rows, err := r.db.Pool.Query(ctx,
		`SELECT item_id, stream_id, title, recurrence, day_offset, time_of_day
		 FROM stream_items WHERE stream_id = $1 ORDER BY position`,
		streamID,
	)
	if err != nil {
		return nil, err
	}
	stream.Items, err = collectItems(rows)
	if err != nil {
		return nil, err
	}
	return stream, nil
}

// Subscribe records the subscription. Subscribing twice is a no-op.
func (r *StreamRepository) Subscribe(ctx context.Context, userID int64, streamID uuid.UUID) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO stream_subscriptions (user_id, stream_id) VALUES ($1, $2)
		 ON CONFLICT (user_id, stream_id) DO NOTHING`,
		userID, streamID,
	)
	return err
}

func scanStream(row pgx.Row) (*models.Stream, error) {
	stream := &models.Stream{}
	err := row.Scan(&stream.StreamID, &stream.CreatorID, &stream.Title, &stream.Description,
		&stream.Category, &stream.Tags, &stream.IsPublic, &stream.LikesCount, &stream.CreatedAt)
	if err != nil {
		return nil, err
	}
	return stream, nil
}

func collectItems(rows pgx.Rows) ([]*models.StreamItem, error) {
	defer rows.Close()

	var items []*models.StreamItem
	for rows.Next() {
		item := &models.StreamItem{}
		var rule []byte
		if err := rows.Scan(&item.ItemID, &item.StreamID, &item.Title, &rule,
			&item.DayOffset, &item.TimeOfDay); err != nil {
			return nil, err
		}
		if err := item.Recurrence.UnmarshalJSON(rule); err != nil {
			return nil, fmt.Errorf("stream item %s: %w", item.ItemID, err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
