package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/breakguard/breakguard/internal/domain"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// FileName is the project configuration file.
	FileName = ".breakguard.yaml"
	envFile  = ".env"
)

// YAMLLoader implements domain.ConfigLoader. Values are layered as
// defaults, then .breakguard.yaml, then .env, then the process environment.
type YAMLLoader struct {
	lookupEnv func(string) (string, bool)
}

// Option configures a YAMLLoader.
type Option func(*YAMLLoader)

// WithLookupEnv replaces os.LookupEnv.
func WithLookupEnv(fn func(string) (string, bool)) Option {
	return func(l *YAMLLoader) {
		if fn != nil {
			l.lookupEnv = fn
		}
	}
}

// New creates a YAMLLoader.
func New(opts ...Option) *YAMLLoader {
	l := &YAMLLoader{lookupEnv: os.LookupEnv}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load builds the configuration for projectPath. A file path is resolved to
// its directory. A missing config file is not an error.
func (l *YAMLLoader) Load(projectPath string) (domain.Config, error) {
	dir := projectPath
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		dir = filepath.Dir(projectPath)
	}

	cfg := domain.DefaultConfig()

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return domain.Config{}, fmt.Errorf("parsing %s: %w", FileName, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return domain.Config{}, err
	}

	dotenv, err := godotenv.Read(filepath.Join(dir, envFile))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return domain.Config{}, fmt.Errorf("parsing %s: %w", envFile, err)
	}

	l.applyEnv(&cfg, dotenv)

	if err := cfg.Validate(); err != nil {
		return domain.Config{}, fmt.Errorf("invalid %s: %w", FileName, err)
	}
	return cfg, nil
}

// applyEnv overlays environment values. The process environment wins over .env.
func (l *YAMLLoader) applyEnv(cfg *domain.Config, dotenv map[string]string) {
	get := func(keys ...string) (string, bool) {
		for _, k := range keys {
			if v, ok := l.lookupEnv(k); ok && v != "" {
				return v, true
			}
		}
		for _, k := range keys {
			if v := dotenv[k]; v != "" {
				return v, true
			}
		}
		return "", false
	}

	if v, ok := get("BREAKGUARD_PROVIDER_URL", "ENDEE_URL"); ok {
		cfg.Provider.URL = v
	}
	if v, ok := get("ENDEE_AUTH_TOKEN", "NDD_AUTH_TOKEN"); ok {
		cfg.Provider.AuthToken = v
	}
	if v, ok := get("BREAKGUARD_EMBEDDER_URL"); ok {
		cfg.Embedder.URL = v
	}
	if v, ok := get("BREAKGUARD_EMBEDDER_MODEL"); ok {
		cfg.Embedder.Model = v
	}
	if v, ok := get("BREAKGUARD_LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
}
