// Package tz caches *time.Location values by IANA name. time.LoadLocation
// reads the zoneinfo database on every call, and the scheduler and
// handlers resolve a user's zone for every message.
package tz

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const cacheSize = 64

var cache *lru.Cache[string, *time.Location]

func init() {
	c, err := lru.New[string, *time.Location](cacheSize)
	if err != nil {
		panic(err)
	}
	cache = c
}

// Load returns the location for name, loading it once.
func Load(name string) (*time.Location, error) {
	if loc, ok := cache.Get(name); ok {
		return loc, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", name, err)
	}
	cache.Add(name, loc)
	return loc, nil
}

// LoadOr returns the location for name, or fallback when name is unknown.
func LoadOr(name string, fallback *time.Location) *time.Location {
	loc, err := Load(name)
	if err != nil {
		return fallback
	}
	return loc
}
