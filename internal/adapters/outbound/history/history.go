// Package history records one summary line per check run under the project's
// .breakguard directory.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/breakguard/breakguard/internal/domain"
)

const (
	historyFile = ".breakguard/history/scans.json"

	// DefaultMaxEntries bounds the file; the oldest runs are dropped first.
	DefaultMaxEntries = 200
)

// FileHistory implements domain.ScanHistory on a JSON array file.
type FileHistory struct {
	maxEntries int
}

// Option configures a FileHistory.
type Option func(*FileHistory)

// WithMaxEntries caps how many runs are kept. n <= 0 keeps everything.
func WithMaxEntries(n int) Option {
	return func(h *FileHistory) { h.maxEntries = n }
}

func New(opts ...Option) *FileHistory {
	h := &FileHistory{maxEntries: DefaultMaxEntries}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Save appends entry and rewrites the file atomically.
func (h *FileHistory) Save(projectPath string, entry domain.ScanEntry) error {
	entries, err := h.Load(projectPath)
	if err != nil {
		return err
	}
	entries = append(entries, entry)
	if h.maxEntries > 0 && len(entries) > h.maxEntries {
		entries = entries[len(entries)-h.maxEntries:]
	}

	fp := filepath.Join(projectPath, historyFile)
	if err := os.MkdirAll(filepath.Dir(fp), 0755); err != nil {
		return fmt.Errorf("creating history dir: %w", err)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding scan history: %w", err)
	}

	tmp := fp + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing scan history: %w", err)
	}
	if err := os.Rename(tmp, fp); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("writing scan history: %w", err)
	}
	return nil
}

// Load returns entries oldest first. A missing file is an empty history.
func (h *FileHistory) Load(projectPath string) ([]domain.ScanEntry, error) {
	data, err := os.ReadFile(filepath.Join(projectPath, historyFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading scan history: %w", err)
	}

	var entries []domain.ScanEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decoding scan history: %w", err)
	}
	return entries, nil
}
