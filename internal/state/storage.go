package state

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"sync"
)

// Storage persists the flat key/value state map.
// Save merges the given keys into what is already stored.
type Storage interface {
	Save(state map[string]any) error
	Retrieve() (map[string]any, error)
}

// JSONFileStorage keeps the whole state in one JSON file that is rewritten on every save.
// It is safe for concurrent use inside one process, not across processes.
type JSONFileStorage struct {
	filePath string
	mu       sync.Mutex
}

func NewJSONFileStorage(filePath string) *JSONFileStorage {
	return &JSONFileStorage{filePath: filePath}
}

func (s *JSONFileStorage) Path() string {
	return s.filePath
}

func (s *JSONFileStorage) Save(state map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.read()
	if err != nil {
		return err
	}
	maps.Copy(current, state)

	data, err := json.MarshalIndent(current, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	return s.writeAtomic(data)
}

func (s *JSONFileStorage) Retrieve() (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.read()
}

func (s *JSONFileStorage) read() (map[string]any, error) {
	data, err := os.ReadFile(s.filePath)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file %s: %w", s.filePath, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]any{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	state := map[string]any{}
	if err := dec.Decode(&state); err != nil {
		return nil, fmt.Errorf("failed to decode state file %s: %w", s.filePath, err)
	}
	return state, nil
}

func (s *JSONFileStorage) writeAtomic(data []byte) error {
	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create state dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.filePath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write temp state file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp state file: %w", err)
	}

	if err := os.Rename(tmpName, s.filePath); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}

// MemoryStorage is an in-process Storage with the same merge semantics.
type MemoryStorage struct {
	mu    sync.RWMutex
	state map[string]any
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{state: map[string]any{}}
}

func (m *MemoryStorage) Save(state map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	maps.Copy(m.state, state)
	return nil
}

func (m *MemoryStorage) Retrieve() (map[string]any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return maps.Clone(m.state), nil
}

var (
	_ Storage = (*JSONFileStorage)(nil)
	_ Storage = (*MemoryStorage)(nil)
)
