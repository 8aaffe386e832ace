// Package cache persists the last normalized energy dataset in a single
// keyed slot and rehydrates it on start-up.
package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"energy_dashboard/internal/model"
)

const (
	// DefaultKey is the slot the dataset lives in.
	DefaultKey = "energyData"
	// DefaultMaxRecords bounds a single saved dataset.
	DefaultMaxRecords = 100_000

	currentVersion = 1
)

var (
	ErrCorrupt            = errors.New("cache: corrupt payload")
	ErrUnsupportedVersion = errors.New("cache: unsupported payload version")
	ErrTooLarge           = errors.New("cache: dataset exceeds record limit")
)

type envelope struct {
	Version int                  `json:"version"`
	SavedAt time.Time            `json:"saved_at"`
	Records []model.EnergyRecord `json:"records"`
}

// Cache saves and loads the energy record collection through a Backend.
type Cache struct {
	backend    Backend
	key        string
	maxRecords int
	now        func() time.Time
}

// Option configures the cache.
type Option func(*Cache)

// WithKey overrides the storage key.
func WithKey(key string) Option {
	return func(c *Cache) {
		if key != "" {
			c.key = key
		}
	}
}

// WithMaxRecords overrides the record limit. Non-positive values keep the
// default.
func WithMaxRecords(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.maxRecords = n
		}
	}
}

func New(backend Backend, opts ...Option) *Cache {
	c := &Cache{
		backend:    backend,
		key:        DefaultKey,
		maxRecords: DefaultMaxRecords,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) Key() string { return c.key }

// Save overwrites the slot with records. A dataset over the record limit is
// rejected with ErrTooLarge and the previous value is left in place.
func (c *Cache) Save(ctx context.Context, records []model.EnergyRecord) error {
	if len(records) > c.maxRecords {
		return fmt.Errorf("%w: %d records, limit %d", ErrTooLarge, len(records), c.maxRecords)
	}
	if records == nil {
		records = []model.EnergyRecord{}
	}

	data, err := json.Marshal(envelope{
		Version: currentVersion,
		SavedAt: c.now().UTC(),
		Records: records,
	})
	if err != nil {
		return fmt.Errorf("encoding cache payload: %w", err)
	}
	return c.backend.Set(ctx, c.key, data)
}

// Load returns the saved collection, or an empty one when nothing was saved.
// A bare JSON array written by older dashboards is accepted.
func (c *Cache) Load(ctx context.Context) ([]model.EnergyRecord, error) {
	data, ok, err := c.backend.Get(ctx, c.key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []model.EnergyRecord{}, nil
	}
	return decode(data)
}

// Clear removes the saved collection.
func (c *Cache) Clear(ctx context.Context) error {
	return c.backend.Delete(ctx, c.key)
}

func decode(data []byte) ([]model.EnergyRecord, error) {
	data = bytes.TrimSpace(data)

	if len(data) > 0 && data[0] == '[' {
		var records []model.EnergyRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		if records == nil {
			records = []model.EnergyRecord{}
		}
		return records, nil
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	switch {
	case env.Version == 0:
		return nil, fmt.Errorf("%w: missing version", ErrCorrupt)
	case env.Version > currentVersion:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, env.Version)
	}
	if env.Records == nil {
		env.Records = []model.EnergyRecord{}
	}
	return env.Records, nil
}
