package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	snapshotFilePrefix = "study_session_"
	snapshotFileExt    = ".yml"
)

// FileSnapshotStore saves each deck's session as a YAML file in a directory.
type FileSnapshotStore struct {
	dir string
}

func NewFileSnapshotStore(dir string) *FileSnapshotStore {
	return &FileSnapshotStore{dir: dir}
}

func (s *FileSnapshotStore) path(deckID string) (string, error) {
	if deckID == "" || strings.ContainsAny(deckID, `/\`) || strings.Contains(deckID, "..") {
		return "", fmt.Errorf("invalid deck id %q", deckID)
	}
	return filepath.Join(s.dir, snapshotFilePrefix+deckID+snapshotFileExt), nil
}

// Save writes the snapshot through a temporary file so a crash never leaves a half written one.
func (s *FileSnapshotStore) Save(state State) error {
	path, err := s.path(state.DeckID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, snapshotFilePrefix+"*.tmp")
	if err != nil {
		return fmt.Errorf("create temporary snapshot: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	enc := yaml.NewEncoder(tmp)
	if err := enc.Encode(state); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := enc.Close(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temporary snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename snapshot %s: %w", path, err)
	}
	return nil
}

func (s *FileSnapshotStore) Load(deckID string) (State, bool, error) {
	path, err := s.path(deckID)
	if err != nil {
		return State{}, false, err
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return State{}, false, nil
		}
		return State{}, false, fmt.Errorf("open snapshot %s: %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	var state State
	if err := yaml.NewDecoder(file).Decode(&state); err != nil {
		return State{}, false, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	return state, true, nil
}

func (s *FileSnapshotStore) Clear(deckID string) error {
	path, err := s.path(deckID)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove snapshot %s: %w", path, err)
	}
	return nil
}

// Purge removes snapshots last written before now minus olderThan and returns how many were removed.
func (s *FileSnapshotStore) Purge(olderThan time.Duration, now time.Time) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("read snapshot directory: %w", err)
	}

	cutoff := now.Add(-olderThan)
	removed := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, snapshotFilePrefix) || filepath.Ext(name) != snapshotFileExt {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return removed, fmt.Errorf("stat %s: %w", name, err)
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return removed, fmt.Errorf("remove %s: %w", name, err)
		}
		removed++
	}
	return removed, nil
}

// MemorySnapshotStore keeps snapshots for the lifetime of the process.
type MemorySnapshotStore struct {
	mu     sync.Mutex
	states map[string]State
}

func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{states: make(map[string]State)}
}

func (s *MemorySnapshotStore) Save(state State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state.DeckID] = state.clone()
	return nil
}

func (s *MemorySnapshotStore) Load(deckID string) (State, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[deckID]
	return state.clone(), ok, nil
}

func (s *MemorySnapshotStore) Clear(deckID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, deckID)
	return nil
}
