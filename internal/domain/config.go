package domain

import (
	"fmt"
	"runtime"
	"time"
)

// ExtractorMode selects which SymbolParser the extractor uses first.
type ExtractorMode string

const (
	ExtractorAuto       ExtractorMode = "auto"
	ExtractorStructural ExtractorMode = "structural"
	ExtractorLexical    ExtractorMode = "lexical"
)

// ValidExtractorModes enumerates all recognized extractor modes.
var ValidExtractorModes = []ExtractorMode{
	ExtractorAuto,
	ExtractorStructural,
	ExtractorLexical,
}

const (
	DefaultLibrary           = "react"
	DefaultFromVersion       = "17"
	DefaultToVersion         = "18"
	DefaultBreakingThreshold = 0.85
	DefaultMinorThreshold    = 0.95
	DefaultTopK              = 5
	DefaultWorkers           = 4
	DefaultMaxFileBytes      = 2 << 20
	DefaultProviderURL       = "http://localhost:8080/api/v1"
	DefaultProviderIndex     = "api_versions"
	DefaultEmbedderURL       = "http://127.0.0.1:11434"
	DefaultEmbedderModel     = "all-minilm"
)

// Thresholds are the similarity cut-offs of the decision table.
// Scores below Breaking are breaking; below Minor are minor; otherwise compatible.
type Thresholds struct {
	Breaking float64 `yaml:"breaking" json:"breaking"`
	Minor    float64 `yaml:"minor"    json:"minor"`
}

// ThresholdOverrides tunes thresholds per library. Pointer fields distinguish
// "not specified" from zero.
type ThresholdOverrides struct {
	Breaking *float64 `yaml:"breaking,omitempty" json:"breaking,omitempty"`
	Minor    *float64 `yaml:"minor,omitempty"    json:"minor,omitempty"`
}

// ProviderConfig addresses the match provider backend.
type ProviderConfig struct {
	URL       string        `yaml:"url"        json:"url"`
	Index     string        `yaml:"index"      json:"index"`
	AuthToken string        `yaml:"auth_token" json:"-"`
	Timeout   time.Duration `yaml:"timeout"    json:"timeout"`
}

// EmbedderConfig addresses the text embedding service.
type EmbedderConfig struct {
	URL   string `yaml:"url"   json:"url"`
	Model string `yaml:"model" json:"model"`
}

// Config is the process-wide configuration, built once at the boundary and
// passed down. No component reads the environment directly.
type Config struct {
	Library      string                        `yaml:"library"        json:"library"`
	FromVersion  string                        `yaml:"from"           json:"from"`
	ToVersion    string                        `yaml:"to"             json:"to"`
	Thresholds   Thresholds                    `yaml:"thresholds"     json:"thresholds"`
	Libraries    map[string]ThresholdOverrides `yaml:"libraries"      json:"libraries,omitempty"`
	TopK         int                           `yaml:"top_k"          json:"top_k"`
	Workers      int                           `yaml:"workers"        json:"workers"`
	ScanWorkers  int                           `yaml:"scan_workers"   json:"scan_workers"`
	Extractor    ExtractorMode                 `yaml:"extractor"      json:"extractor"`
	MaxFileBytes int64                         `yaml:"max_file_bytes" json:"max_file_bytes"`
	ExcludeDirs  []string                      `yaml:"exclude_dirs"   json:"exclude_dirs,omitempty"`
	Provider     ProviderConfig                `yaml:"provider"       json:"provider"`
	Embedder     EmbedderConfig                `yaml:"embedder"       json:"embedder"`
	LogLevel     string                        `yaml:"log_level"      json:"log_level,omitempty"`
}

// DefaultConfig returns the configuration used when nothing is specified.
func DefaultConfig() Config {
	return Config{
		Library:     DefaultLibrary,
		FromVersion: DefaultFromVersion,
		ToVersion:   DefaultToVersion,
		Thresholds: Thresholds{
			Breaking: DefaultBreakingThreshold,
			Minor:    DefaultMinorThreshold,
		},
		TopK:         DefaultTopK,
		Workers:      DefaultWorkers,
		ScanWorkers:  runtime.NumCPU(),
		Extractor:    ExtractorAuto,
		MaxFileBytes: DefaultMaxFileBytes,
		Provider: ProviderConfig{
			URL:     DefaultProviderURL,
			Index:   DefaultProviderIndex,
			Timeout: 30 * time.Second,
		},
		Embedder: EmbedderConfig{
			URL:   DefaultEmbedderURL,
			Model: DefaultEmbedderModel,
		},
	}
}

// ThresholdsFor returns the thresholds for library, applying any override.
func (c Config) ThresholdsFor(library string) Thresholds {
	t := c.Thresholds
	o, ok := c.Libraries[library]
	if !ok {
		return t
	}
	if o.Breaking != nil {
		t.Breaking = *o.Breaking
	}
	if o.Minor != nil {
		t.Minor = *o.Minor
	}
	return t
}

// SetBreakingThreshold applies an explicit breaking threshold. It also
// replaces the checked library's breaking override so the value wins over
// per-library settings from the config file.
func (c *Config) SetBreakingThreshold(v float64) {
	c.Thresholds.Breaking = v
	o, ok := c.Libraries[c.Library]
	if !ok || o.Breaking == nil {
		return
	}
	o.Breaking = &v
	c.Libraries[c.Library] = o
}

// VersionContext returns the library/version triple configured for a check.
func (c Config) VersionContext() VersionContext {
	return VersionContext{
		Library:    c.Library,
		OldVersion: c.FromVersion,
		NewVersion: c.ToVersion,
	}
}

// Validate checks the config for invalid values and returns a descriptive error.
func (c Config) Validate() error {
	if err := c.Thresholds.validate("thresholds"); err != nil {
		return err
	}

	for lib := range c.Libraries {
		if err := c.ThresholdsFor(lib).validate(fmt.Sprintf("libraries[%q]", lib)); err != nil {
			return err
		}
	}

	if c.Extractor != "" {
		valid := false
		for _, m := range ValidExtractorModes {
			if c.Extractor == m {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("unknown extractor %q (valid: auto, structural, lexical)", c.Extractor)
		}
	}

	if c.TopK <= 0 {
		return fmt.Errorf("top_k must be > 0 (got %d)", c.TopK)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be > 0 (got %d)", c.Workers)
	}
	if c.ScanWorkers < 0 {
		return fmt.Errorf("scan_workers must be >= 0 (got %d)", c.ScanWorkers)
	}
	if c.MaxFileBytes < 0 {
		return fmt.Errorf("max_file_bytes must be >= 0 (got %d)", c.MaxFileBytes)
	}

	return nil
}

func (t Thresholds) validate(field string) error {
	if t.Breaking < 0 || t.Breaking > 1 {
		return fmt.Errorf("%s.breaking must be between 0.0 and 1.0 (got %.2f)", field, t.Breaking)
	}
	if t.Minor < 0 || t.Minor > 1 {
		return fmt.Errorf("%s.minor must be between 0.0 and 1.0 (got %.2f)", field, t.Minor)
	}
	if t.Breaking > t.Minor {
		return fmt.Errorf("%s.breaking (%.2f) must not exceed %s.minor (%.2f)", field, t.Breaking, field, t.Minor)
	}
	return nil
}
