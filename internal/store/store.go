// Package store persists the whole counter collection as one serialized record.
//
// Callers read-modify-write the full mapping; there is no per-counter update
// and no locking. With one active writer and any number of readers the last
// write wins.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/chris/tock/internal/db"
	"github.com/chris/tock/pkg/models"
)

// DefaultKey is the storage key holding the counter collection
const DefaultKey = "counters"

// epoch is the reference of an entry whose date is missing or unreadable
var epoch = time.Unix(0, 0).UTC()

// isoLayout matches the millisecond ISO-8601 instants the collection has always used
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

// record is the persisted shape of one counter
type record struct {
	Name      string `json:"name,omitempty"`
	Mode      string `json:"mode,omitempty"`
	Date      string `json:"date"`
	Timer     int64  `json:"timer,omitempty"`
	IsRunning bool   `json:"isRunning"`
}

// Store reads and writes the counter collection through a db.KV
type Store struct {
	kv     db.KV
	key    string
	logger *slog.Logger
}

// Option configures a Store
type Option func(*Store)

// WithKey overrides the storage key
func WithKey(key string) Option {
	return func(s *Store) {
		s.key = key
	}
}

// WithLogger sets the logger used for recovered failures
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates a Store over kv
func New(kv db.KV, opts ...Option) *Store {
	s := &Store{
		kv:     kv,
		key:    DefaultKey,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the full collection. A missing record is an empty collection.
// Failures wrap ErrStorageUnavailable or ErrCorruptRecord.
func (s *Store) Load(ctx context.Context) (map[string]models.Counter, error) {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to load counters: %w", err)
	}
	if !ok {
		return map[string]models.Counter{}, nil
	}
	return decode(raw, s.logger)
}

// LoadAll is Load that never fails: unavailable storage and corrupt data are
// logged and reported as an empty collection
func (s *Store) LoadAll(ctx context.Context) map[string]models.Counter {
	counters, err := s.Load(ctx)
	if err != nil {
		s.logger.Warn("counters unavailable, using empty collection", "key", s.key, "error", err)
		return map[string]models.Counter{}
	}
	return counters
}

// SaveAll replaces the persisted collection with counters
func (s *Store) SaveAll(ctx context.Context, counters map[string]models.Counter) error {
	raw, err := encode(counters)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, s.key, raw); err != nil {
		return fmt.Errorf("failed to save counters: %w", err)
	}
	return nil
}

// Get loads the collection and returns the named counter
func (s *Store) Get(ctx context.Context, name string) (models.Counter, bool, error) {
	counters, err := s.Load(ctx)
	if err != nil {
		return models.Counter{}, false, err
	}
	c, ok := counters[models.CanonicalName(name)]
	return c, ok, nil
}

// Put writes one counter with a whole-collection read-modify-write.
// An unreadable collection is left untouched rather than replaced.
func (s *Store) Put(ctx context.Context, c models.Counter) error {
	counters, err := s.Load(ctx)
	if err != nil {
		return err
	}
	c.Name = models.CanonicalName(c.Name)
	counters[c.Name] = c
	return s.SaveAll(ctx, counters)
}

// Names returns the stored counter names in ascending order
func (s *Store) Names(ctx context.Context) []string {
	counters := s.LoadAll(ctx)
	names := make([]string, 0, len(counters))
	for name := range counters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// decode parses the collection. Only malformed JSON is corrupt: an entry with
// an unknown mode falls back to count-up and an entry with a missing or
// unreadable date falls back to the Unix epoch, each with a warning.
// Raw keys are visited in sorted order, so when several keys canonicalise to
// one name the canonical key wins, or else the first key in that order.
func decode(raw string, logger *slog.Logger) (map[string]models.Counter, error) {
	var records map[string]record
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}

	keys := make([]string, 0, len(records))
	for key := range records {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	counters := make(map[string]models.Counter, len(records))
	canonical := make(map[string]bool, len(records))
	for _, key := range keys {
		rec := records[key]
		name := models.CanonicalName(key)
		if name == "" {
			continue
		}
		if _, dup := counters[name]; dup && (canonical[name] || key != name) {
			continue
		}

		mode := models.CountUp
		if rec.Mode != "" {
			m, err := models.ParseMode(rec.Mode)
			if err != nil {
				logger.Warn("unknown counter mode, using countup", "name", name, "mode", rec.Mode)
			} else {
				mode = m
			}
		}

		ref, err := time.Parse(time.RFC3339Nano, rec.Date)
		if err != nil {
			logger.Warn("invalid counter date, using epoch", "name", name, "date", rec.Date)
			ref = epoch
		}

		timer := rec.Timer
		if timer < 0 {
			timer = 0
		}

		counters[name] = models.Counter{
			Name:      name,
			Mode:      mode,
			Reference: ref,
			Elapsed:   timer,
			IsRunning: rec.IsRunning,
		}
		canonical[name] = key == name
	}
	return counters, nil
}

func encode(counters map[string]models.Counter) (string, error) {
	records := make(map[string]record, len(counters))
	for key, c := range counters {
		name := c.Name
		if name == "" {
			name = models.CanonicalName(key)
		}
		if name == "" {
			continue
		}
		mode := c.Mode
		if mode == "" {
			mode = models.CountUp
		}
		records[name] = record{
			Name:      name,
			Mode:      string(mode),
			Date:      c.Reference.UTC().Format(isoLayout),
			Timer:     c.Elapsed,
			IsRunning: c.IsRunning,
		}
	}

	// encoding/json sorts map keys, so equal collections encode identically
	raw, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("failed to encode counters: %w", err)
	}
	return string(raw), nil
}
