package workspace

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Store persists workspace state across reloads. Implementations must treat
// a missing session as ErrStateNotFound, not as an empty state.
type Store interface {
	Load(ctx context.Context, sessionID string) (*State, error)
	Save(ctx context.Context, state *State) error
	Clear(ctx context.Context, sessionID string) error
}

// FileStore keeps one JSON document per session under a directory. It is the
// default backend for single-host deployments and local development.
type FileStore struct {
	root string
}

// NewFileStore creates the directory if needed.
func NewFileStore(root string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state directory %s: %w", root, err)
	}
	return &FileStore{root: root}, nil
}

// Load implements Store.
func (f *FileStore) Load(_ context.Context, sessionID string) (*State, error) {
	data, err := os.ReadFile(f.path(sessionID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrStateNotFound
		}
		return nil, fmt.Errorf("failed to read state for session %s: %w", sessionID, err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		// Corrupt state is discarded, not partially trusted.
		return nil, ErrStateNotFound
	}
	return &state, nil
}

// Save implements Store. The write is atomic (temp file + rename) so a crash
// never leaves a torn state document.
func (f *FileStore) Save(_ context.Context, state *State) error {
	state.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	tmp := f.path(state.SessionID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err := os.Rename(tmp, f.path(state.SessionID)); err != nil {
		return fmt.Errorf("failed to commit state: %w", err)
	}
	return nil
}

// Clear implements Store.
func (f *FileStore) Clear(_ context.Context, sessionID string) error {
	err := os.Remove(f.path(sessionID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear state for session %s: %w", sessionID, err)
	}
	return nil
}

// SweepExpired removes state documents older than maxAge and returns how
// many were removed. The janitor calls this on a schedule.
func (f *FileStore) SweepExpired(_ context.Context, maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		return 0, fmt.Errorf("failed to list state directory: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(f.root, entry.Name())); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}

func (f *FileStore) path(sessionID string) string {
	// Session ids are uuids; sanitize anyway so a hostile id cannot escape
	// the state directory.
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, sessionID)
	return filepath.Join(f.root, safe+".json")
}
