package mood

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"devchron/internal/dates"
	"devchron/internal/logging"
)

const keyPrefix = "mood_"

type Mood struct {
	Emoji string `json:"emoji"`
	Label string `json:"label"`
	Color string `json:"color"`
}

var Presets = []Mood{
	{Emoji: "😀", Label: "Happy", Color: "#FFD700"},
	{Emoji: "😌", Label: "Calm", Color: "#90EE90"},
	{Emoji: "😐", Label: "Neutral", Color: "#E0E0E0"},
	{Emoji: "😔", Label: "Sad", Color: "#ADD8E6"},
	{Emoji: "😡", Label: "Angry", Color: "#FF6347"},
}

// KV is the storage the mood records live in, one key per day.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

type Store struct {
	kv KV
}

func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// Key returns the storage key for the calendar day of day.
func Key(day time.Time) string {
	return keyPrefix + dates.FormatDate(day)
}

// Get returns the mood recorded for day. ok is false when none was set.
func (s *Store) Get(ctx context.Context, day time.Time) (m Mood, ok bool, err error) {
	key := Key(day)
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil || !ok {
		return Mood{}, false, err
	}
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		logging.Error("mood", "unreadable record %s: %v", key, err)
		return Mood{}, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return m, true, nil
}

func (s *Store) Set(ctx context.Context, day time.Time, m Mood) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, Key(day), string(b)); err != nil {
		logging.Error("mood", "save %s: %v", Key(day), err)
		return err
	}
	return nil
}

// Month returns the moods recorded in the zero-indexed month, keyed by
// YYYY-MM-DD. Unreadable records are skipped.
func (s *Store) Month(ctx context.Context, year, month int) (map[string]Mood, error) {
	keys, err := s.kv.Keys(ctx, fmt.Sprintf("%s%04d-%02d-", keyPrefix, year, month+1))
	if err != nil {
		return nil, err
	}
	out := make(map[string]Mood, len(keys))
	for _, key := range keys {
		raw, ok, err := s.kv.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		var m Mood
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			logging.Debug("mood", "skipping %s: %v", key, err)
			continue
		}
		out[strings.TrimPrefix(key, keyPrefix)] = m
	}
	return out, nil
}
