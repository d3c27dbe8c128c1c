package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/breakguard/breakguard/internal/domain"
)

// Store is a file-based implementation of domain.SymbolCacheStore. Each
// project keeps one JSON document under .breakguard/cache.
type Store struct{}

// New creates a new file-based cache store.
func New() *Store {
	return &Store{}
}

// Load reads a project cache from disk. Returns (nil, nil) if no cache exists.
func (s *Store) Load(projectPath string) (*domain.SymbolCache, error) {
	data, err := os.ReadFile(cachePath(projectPath))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var c domain.SymbolCache
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decoding symbol cache: %w", err)
	}
	if c.Files == nil {
		c.Files = make(map[string]domain.CacheEntry)
	}
	return &c, nil
}

// Save writes a project cache to disk, creating directories as needed.
// The file is replaced atomically so a concurrent reader never sees a
// partial document.
func (s *Store) Save(c *domain.SymbolCache) error {
	if c == nil {
		return errors.New("nil symbol cache")
	}
	if err := os.MkdirAll(cacheDir(c.ProjectPath), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	target := cachePath(c.ProjectPath)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, target)
}

// Invalidate removes the cache file for the given project path.
func (s *Store) Invalidate(projectPath string) error {
	if err := os.Remove(cachePath(projectPath)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func cacheDir(projectPath string) string {
	return filepath.Join(projectPath, ".breakguard", "cache")
}

func cachePath(projectPath string) string {
	return filepath.Join(cacheDir(projectPath), "symbols.json")
}
