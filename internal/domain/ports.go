package domain

import "context"

// SymbolExtractor returns the canonical symbols used in one source file.
// ReadSource and ExtractSource split Extract so callers can hash content
// before deciding whether to parse it.
type SymbolExtractor interface {
	Extract(ctx context.Context, filePath string) ([]string, error)
	ReadSource(filePath string) ([]byte, error)
	ExtractSource(ctx context.Context, filePath string, src []byte) ([]string, error)
	Mode() string
}

// SymbolParser turns source text into canonical symbols. Implementations are
// either structural (syntax tree) or lexical (regular expressions).
type SymbolParser interface {
	Name() string
	Symbols(ctx context.Context, filePath string, src []byte) ([]string, error)
}

// ProjectScanner walks a project and extracts symbols from every source file.
type ProjectScanner interface {
	Scan(ctx context.Context, rootPath string) (*ScanResult, error)
}

// MatchProvider returns ranked candidates for a semantic description,
// ordered by descending similarity.
type MatchProvider interface {
	Query(ctx context.Context, text string, filter MatchFilter, topK int) ([]MatchCandidate, error)
}

// Embedder converts texts to vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Classifier produces one verdict for one symbol.
type Classifier interface {
	Classify(ctx context.Context, symbol string, vc VersionContext) Verdict
}

// ConfigLoader loads configuration for a project.
type ConfigLoader interface {
	Load(projectPath string) (Config, error)
}

// SymbolCacheStore persists extraction results between runs.
type SymbolCacheStore interface {
	Load(projectPath string) (*SymbolCache, error)
	Save(cache *SymbolCache) error
	Invalidate(projectPath string) error
}

// ScanHistory persists scan summaries.
type ScanHistory interface {
	Save(projectPath string, entry ScanEntry) error
	Load(projectPath string) ([]ScanEntry, error)
}

// GitInfo reads repository metadata.
type GitInfo interface {
	IsGitRepo(projectPath string) bool
	CommitHash(projectPath string) (string, error)
}
