// Package streams holds the built-in routine templates offered when no
// public streams exist in the database.
package streams

import (
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/hray3182/nudge/internal/models"
	"github.com/hray3182/nudge/internal/recurrence"
)

//go:embed catalog.yaml
var builtinYAML []byte

type catalogFile struct {
	Streams []streamEntry `yaml:"streams"`
}

type streamEntry struct {
	ID          string      `yaml:"id"`
	Title       string      `yaml:"title"`
	Description string      `yaml:"description"`
	Category    string      `yaml:"category"`
	Tags        []string    `yaml:"tags"`
	Items       []itemEntry `yaml:"items"`
}

type itemEntry struct {
	Title     string `yaml:"title"`
	Rule      string `yaml:"rule"`
	DayOffset int    `yaml:"day_offset"`
	Time      string `yaml:"time"`
}

type Catalog struct {
	streams []*models.Stream
	byID    map[uuid.UUID]*models.Stream
}

// Builtin parses the embedded catalog.
func Builtin() (*Catalog, error) {
	return Parse(builtinYAML)
}

// Parse decodes a YAML catalog. Item rules use the shorthand accepted by
// recurrence.ParseShorthand; an empty rule means a one-off item.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	c := &Catalog{byID: make(map[uuid.UUID]*models.Stream)}
	for _, entry := range file.Streams {
		id, err := uuid.Parse(entry.ID)
		if err != nil {
			return nil, fmt.Errorf("stream %q: invalid id: %w", entry.Title, err)
		}
		if _, dup := c.byID[id]; dup {
			return nil, fmt.Errorf("stream %q: duplicate id %s", entry.Title, id)
		}

		stream := &models.Stream{
			StreamID:    id,
			Title:       entry.Title,
			Description: entry.Description,
			Category:    entry.Category,
			Tags:        entry.Tags,
			IsPublic:    true,
		}
		for i, it := range entry.Items {
			item, err := buildItem(id, i, it)
			if err != nil {
				return nil, fmt.Errorf("stream %q: %w", entry.Title, err)
			}
			stream.Items = append(stream.Items, item)
		}

		c.streams = append(c.streams, stream)
		c.byID[id] = stream
	}
	return c, nil
}

func buildItem(streamID uuid.UUID, pos int, it itemEntry) (*models.StreamItem, error) {
	var rule recurrence.Rule = recurrence.NoRecurrence()
	if it.Rule != "" {
		r, err := recurrence.ParseShorthand(it.Rule)
		if err != nil {
			return nil, fmt.Errorf("item %q: %w", it.Title, err)
		}
		rule = r
	}
	item := &models.StreamItem{
		// Item IDs are derived so they stay stable across restarts.
		ItemID:     uuid.NewSHA1(streamID, []byte(fmt.Sprintf("%d:%s", pos, it.Title))),
		StreamID:   streamID,
		Title:      it.Title,
		Recurrence: recurrence.Value{Rule: rule},
		DayOffset:  it.DayOffset,
		TimeOfDay:  it.Time,
	}
	// Validate the clock now rather than at import time.
	if _, err := item.Anchor(time.Time{}); err != nil {
		return nil, fmt.Errorf("item %q: %w", it.Title, err)
	}
	return item, nil
}

func (c *Catalog) Streams() []*models.Stream {
	return c.streams
}

func (c *Catalog) Get(id uuid.UUID) (*models.Stream, bool) {
	s, ok := c.byID[id]
	return s, ok
}
