// Package state keeps durable pipeline checkpoints in a flat key/value map.
package state

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	KeyExtractorModified = "extractor.modified"
	KeyOffset            = "offset"
	KeyLoaderModified    = "loader.modified"
)

// TimeLayout is how watermarks are written to storage.
const TimeLayout = time.RFC3339Nano

// legacy layouts still accepted on read
var timeLayouts = []string{
	TimeLayout,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// State is a key/value view over a Storage. Keys are namespaced by prefix.
type State struct {
	storage Storage
	prefix  string
}

func New(storage Storage) *State {
	return &State{storage: storage}
}

// WithPrefix returns a view whose keys are stored as prefix+key.
func (s *State) WithPrefix(prefix string) *State {
	return &State{storage: s.storage, prefix: s.prefix + prefix}
}

func (s *State) Prefix() string {
	return s.prefix
}

func (s *State) Get(key string) (any, bool, error) {
	all, err := s.storage.Retrieve()
	if err != nil {
		return nil, false, err
	}
	v, ok := all[s.prefix+key]
	if !ok || v == nil {
		return nil, false, nil
	}
	return v, true, nil
}

func (s *State) Set(key string, value any) error {
	return s.SetMany(map[string]any{key: value})
}

// SetMany writes several keys in one storage save.
func (s *State) SetMany(values map[string]any) error {
	prefixed := make(map[string]any, len(values))
	for k, v := range values {
		prefixed[s.prefix+k] = v
	}
	if err := s.storage.Save(prefixed); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

// Snapshot returns every key under this prefix with the prefix stripped.
func (s *State) Snapshot() (map[string]any, error) {
	all, err := s.storage.Retrieve()
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	for k, v := range all {
		if strings.HasPrefix(k, s.prefix) {
			out[strings.TrimPrefix(k, s.prefix)] = v
		}
	}
	return out, nil
}

func (s *State) GetTime(key string) (time.Time, bool, error) {
	v, ok, err := s.Get(key)
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	str, isStr := v.(string)
	if !isStr || str == "" {
		return time.Time{}, false, fmt.Errorf("state key %s%s: expected timestamp string, got %T", s.prefix, key, v)
	}
	t, err := ParseTime(str)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("state key %s%s: %w", s.prefix, key, err)
	}
	return t, true, nil
}

func (s *State) GetInt(key string) (int, bool, error) {
	v, ok, err := s.Get(key)
	if err != nil || !ok {
		return 0, false, err
	}
	n, err := toInt(v)
	if err != nil {
		return 0, false, fmt.Errorf("state key %s%s: %w", s.prefix, key, err)
	}
	return n, true, nil
}

// ExtractorCursor returns the persisted extraction position, if any.
func (s *State) ExtractorCursor() (Cursor, bool, error) {
	wm, ok, err := s.GetTime(KeyExtractorModified)
	if err != nil || !ok {
		return Cursor{}, false, err
	}
	offset, _, err := s.GetInt(KeyOffset)
	if err != nil {
		return Cursor{}, false, err
	}
	return Cursor{Watermark: wm, Offset: offset}, true, nil
}

func (s *State) SaveExtractorCursor(c Cursor) error {
	return s.SetMany(map[string]any{
		KeyExtractorModified: FormatTime(c.Watermark),
		KeyOffset:            c.Offset,
	})
}

// LoaderWatermark is the newest modification time known to be loaded into the sink.
func (s *State) LoaderWatermark() (time.Time, bool, error) {
	return s.GetTime(KeyLoaderModified)
}

func (s *State) SaveLoaderWatermark(t time.Time) error {
	return s.Set(KeyLoaderModified, FormatTime(t))
}

func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

func ParseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		return int(i), err
	case string:
		return strconv.Atoi(n)
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
}
