package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/breakguard/breakguard/internal/adapters/outbound/cache"
	"github.com/breakguard/breakguard/internal/adapters/outbound/config"
	"github.com/breakguard/breakguard/internal/adapters/outbound/embedder"
	"github.com/breakguard/breakguard/internal/adapters/outbound/gitinfo"
	"github.com/breakguard/breakguard/internal/adapters/outbound/history"
	"github.com/breakguard/breakguard/internal/adapters/outbound/matchprovider"
	"github.com/breakguard/breakguard/internal/adapters/outbound/parser"
	"github.com/breakguard/breakguard/internal/adapters/outbound/scanner"
	"github.com/breakguard/breakguard/internal/application"
	"github.com/breakguard/breakguard/internal/domain"
	"github.com/breakguard/breakguard/internal/domain/compat"
	"github.com/breakguard/breakguard/internal/logging"
	"github.com/spf13/cobra"
)

// resolvePath returns the absolute form of path, failing when it does not exist.
func resolvePath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	if _, err := os.Stat(absPath); err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrPathNotFound, path)
	}
	return absPath, nil
}

// loadConfig reads project configuration and applies the global flags that
// were set explicitly.
func loadConfig(cmd *cobra.Command, g *globalOptions, projectPath string) (domain.Config, error) {
	cfg, err := config.New().Load(projectPath)
	if err != nil {
		return domain.Config{}, err
	}
	flags := cmd.Flags()
	if flags.Changed("extractor") {
		cfg.Extractor = domain.ExtractorMode(g.extractor)
	}
	if flags.Changed("workers") {
		cfg.Workers = g.workers
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, g *globalOptions, cfg domain.Config) *slog.Logger {
	level := logging.LevelFromVerbosity(g.verbose, g.quiet)
	if g.verbose == 0 && !g.quiet && cfg.LogLevel != "" {
		level = logging.LevelFromString(cfg.LogLevel)
	}
	return logging.NewLogger(cmd.ErrOrStderr(), level)
}

// services is the wired pipeline for one project.
type services struct {
	cfg     domain.Config
	catalog *domain.Catalog
	check   *application.CheckService
}

// buildServices wires config → extractor → scanner → provider → classifier →
// aggregator → CheckService.
func buildServices(cfg domain.Config, logger *slog.Logger, useCache bool, opts ...application.CheckOption) (*services, error) {
	catalog := domain.DefaultCatalog()

	extractor, err := parser.New(cfg.Extractor, catalog,
		parser.WithMaxFileBytes(cfg.MaxFileBytes),
		parser.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	scanOpts := []scanner.Option{
		scanner.WithExcludeDirs(cfg.ExcludeDirs...),
		scanner.WithWorkers(cfg.ScanWorkers),
		scanner.WithLogger(logger),
	}
	if useCache {
		scanOpts = append(scanOpts, scanner.WithCache(cache.New(), catalog.Fingerprint()))
	}

	emb := embedder.NewOllama(cfg.Embedder, cfg.Provider.Timeout)
	provider := matchprovider.NewEndee(cfg.Provider, emb, matchprovider.WithLogger(logger))
	aggregator := application.NewAggregator(
		compat.NewFromConfig(provider, cfg),
		application.WithClassifyWorkers(cfg.Workers),
		application.WithAggregatorLogger(logger),
	)

	opts = append([]application.CheckOption{
		application.WithGitInfo(gitinfo.New()),
		application.WithHistory(history.New()),
		application.WithLogger(logger),
	}, opts...)

	return &services{
		cfg:     cfg,
		catalog: catalog,
		check:   application.NewCheckService(scanner.New(extractor, scanOpts...), aggregator, opts...),
	}, nil
}

// lineLocator resolves report-relative paths against root.
func lineLocator(root string) func(relPath, symbol string) []int {
	return func(relPath, symbol string) []int {
		return parser.Locate(filepath.Join(root, filepath.FromSlash(relPath)), symbol)
	}
}
