package domain

// SymbolCache holds per-file extraction results from a previous run.
// Verdicts are never cached.
type SymbolCache struct {
	ProjectPath        string                `json:"project_path"`
	CatalogFingerprint string                `json:"catalog_fingerprint"`
	Extractor          string                `json:"extractor"`
	Files              map[string]CacheEntry `json:"files"`
}

// CacheEntry is the symbol set of one file at one content hash.
type CacheEntry struct {
	Hash    string   `json:"hash"`
	Symbols []string `json:"symbols"`
}

func (c *SymbolCache) IsInvalidated(catalogFingerprint, extractor string) bool {
	return c.CatalogFingerprint != catalogFingerprint || c.Extractor != extractor
}

// Lookup returns the cached symbols for path when the hash still matches.
func (c *SymbolCache) Lookup(path, hash string) ([]string, bool) {
	if c == nil || c.Files == nil {
		return nil, false
	}
	e, ok := c.Files[path]
	if !ok || e.Hash != hash {
		return nil, false
	}
	return e.Symbols, true
}
