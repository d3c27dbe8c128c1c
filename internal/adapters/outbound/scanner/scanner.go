package scanner

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/breakguard/breakguard/internal/domain"
	"github.com/breakguard/breakguard/internal/logging"
)

var skipDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	"dist":         true,
	"build":        true,
	"__pycache__":  true,
	".next":        true,
}

var sourceExts = map[string]bool{
	".js":  true,
	".jsx": true,
	".tsx": true,
	".ts":  true,
	".mjs": true,
}

// IsSource reports whether path has a scanned source extension.
func IsSource(path string) bool {
	return sourceExts[strings.ToLower(filepath.Ext(path))]
}

// FileScanner implements domain.ProjectScanner by walking the filesystem and
// extracting every source file with a bounded worker pool.
type FileScanner struct {
	extractor   domain.SymbolExtractor
	extraSkip   map[string]bool
	workers     int
	cache       domain.SymbolCacheStore
	fingerprint string
	logger      *slog.Logger
}

// Option configures a FileScanner.
type Option func(*FileScanner)

// WithExcludeDirs skips additional directory names.
func WithExcludeDirs(names ...string) Option {
	return func(s *FileScanner) {
		for _, n := range names {
			s.extraSkip[strings.TrimSuffix(n, "/")] = true
		}
	}
}

// WithWorkers sets extraction parallelism. Values below 1 use NumCPU.
func WithWorkers(n int) Option {
	return func(s *FileScanner) { s.workers = n }
}

// WithCache reuses symbol sets of unchanged files. catalogFingerprint
// invalidates the whole cache when the catalog changes.
func WithCache(store domain.SymbolCacheStore, catalogFingerprint string) Option {
	return func(s *FileScanner) {
		s.cache = store
		s.fingerprint = catalogFingerprint
	}
}

// WithLogger sets the logger for skipped files.
func WithLogger(l *slog.Logger) Option {
	return func(s *FileScanner) { s.logger = logging.OrDiscard(l) }
}

func New(extractor domain.SymbolExtractor, opts ...Option) *FileScanner {
	s := &FileScanner{
		extractor: extractor,
		extraSkip: make(map[string]bool),
		logger:    logging.NewDiscardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.workers < 1 {
		s.workers = runtime.NumCPU()
	}
	return s
}

// Scan walks rootPath and returns the file → symbol-set mapping. Paths in the
// result are slash-separated and relative to the absolute RootPath. Per-file
// failures land in Skipped. On cancellation the partial result is returned
// together with ctx.Err().
func (s *FileScanner) Scan(ctx context.Context, rootPath string) (*domain.ScanResult, error) {
	absPath, err := filepath.Abs(rootPath)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(absPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrPathNotFound, rootPath)
		}
		return nil, err
	}

	root := absPath
	if !info.IsDir() {
		root = filepath.Dir(absPath)
	}
	result := domain.NewScanResult(root)

	var files []string
	if info.IsDir() {
		files, err = s.walk(ctx, root, result)
		if err != nil {
			return result, err
		}
	} else if IsSource(absPath) {
		files = []string{absPath}
	}

	var previous, next *domain.SymbolCache
	if info.IsDir() {
		previous, next = s.loadCache(root)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, path := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			rel := relPath(root, path)
			syms, hash, err := s.extract(gctx, path, rel, previous)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				result.Add(rel, syms)
				if next != nil {
					next.Files[rel] = domain.CacheEntry{Hash: hash, Symbols: syms}
				}
			case gctx.Err() != nil:
				return gctx.Err()
			default:
				s.logger.Warn("skipping file", "file", rel, "error", err)
				result.Skipped = append(result.Skipped, domain.SkippedFile{FilePath: rel, Reason: reason(err)})
			}
			return nil
		})
	}
	waitErr := g.Wait()

	sort.Slice(result.Skipped, func(i, j int) bool { return result.Skipped[i].FilePath < result.Skipped[j].FilePath })

	if err := ctx.Err(); err != nil {
		return result, err
	}
	if waitErr != nil {
		return result, waitErr
	}

	if next != nil {
		if err := s.cache.Save(next); err != nil {
			s.logger.Warn("saving symbol cache", "error", err)
		}
	}
	return result, nil
}

func (s *FileScanner) walk(ctx context.Context, root string, result *domain.ScanResult) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == root {
				return err
			}
			result.Skipped = append(result.Skipped, domain.SkippedFile{FilePath: relPath(root, path), Reason: err.Error()})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != root && (skipDirs[d.Name()] || s.extraSkip[d.Name()]) {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type().IsRegular() && IsSource(path) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func (s *FileScanner) extract(ctx context.Context, path, rel string, previous *domain.SymbolCache) ([]string, string, error) {
	src, err := s.extractor.ReadSource(path)
	if err != nil {
		return nil, "", err
	}

	var hash string
	if s.cache != nil {
		sum := sha256.Sum256(src)
		hash = hex.EncodeToString(sum[:])
		if syms, ok := previous.Lookup(rel, hash); ok {
			return syms, hash, nil
		}
	}

	syms, err := s.extractor.ExtractSource(ctx, path, src)
	return syms, hash, err
}

// loadCache returns the usable previous cache (possibly nil) and the cache
// being built by this scan, or nil, nil when caching is off.
func (s *FileScanner) loadCache(root string) (*domain.SymbolCache, *domain.SymbolCache) {
	if s.cache == nil {
		return nil, nil
	}
	mode := s.extractor.Mode()
	next := &domain.SymbolCache{
		ProjectPath:        root,
		CatalogFingerprint: s.fingerprint,
		Extractor:          mode,
		Files:              make(map[string]domain.CacheEntry),
	}

	previous, err := s.cache.Load(root)
	if err != nil {
		s.logger.Warn("ignoring unreadable symbol cache", "error", err)
		return nil, next
	}
	if previous != nil && previous.IsInvalidated(s.fingerprint, mode) {
		s.logger.Info("symbol cache invalidated", "extractor", mode)
		return nil, next
	}
	return previous, next
}

func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func reason(err error) string {
	var fe *domain.FileError
	if errors.As(err, &fe) {
		if fe.Err != nil {
			return fmt.Sprintf("%s: %v", fe.Reason, fe.Err)
		}
		return fe.Reason
	}
	return err.Error()
}
