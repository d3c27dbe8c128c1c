package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/breakguard/breakguard/internal/adapters/outbound/config"
	"github.com/breakguard/breakguard/internal/domain"
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	var (
		extractor string
		to        string
		force     bool
	)

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Generate a .breakguard.yaml configuration file",
		Long:  "Create a .breakguard.yaml with the default thresholds, provider and embedder settings.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}

			absPath, err := resolvePath(path)
			if err != nil {
				return err
			}

			dest := filepath.Join(absPath, config.FileName)
			if !force {
				if _, err := os.Stat(dest); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", config.FileName)
				}
			}

			mode := domain.ExtractorMode(extractor)
			if !slices.Contains(domain.ValidExtractorModes, mode) {
				return fmt.Errorf("unknown extractor %q (valid: auto, structural, lexical)", extractor)
			}

			if err := os.WriteFile(dest, []byte(generateConfig(mode, to)), 0644); err != nil {
				return fmt.Errorf("writing config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", config.FileName)
			return nil
		},
	}

	cmd.Flags().StringVar(&extractor, "extractor", string(domain.ExtractorAuto), "Extractor mode (auto, structural, lexical)")
	cmd.Flags().StringVar(&to, "to", domain.DefaultToVersion, "Target library version")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing .breakguard.yaml")

	return cmd
}

func generateConfig(mode domain.ExtractorMode, to string) string {
	cfg := domain.DefaultConfig()

	return fmt.Sprintf(`# BreakGuard configuration

library: %s
from: "%s"
to: "%s"

thresholds:
  breaking: %.2f
  minor: %.2f

# libraries:
#   react:
#     minor: 0.97

top_k: %d
workers: %d
extractor: %s
max_file_bytes: %d

# exclude_dirs:
#   - coverage
#   - storybook-static

provider:
  url: %s
  index: %s
  timeout: %s

embedder:
  url: %s
  model: %s
`,
		cfg.Library, cfg.FromVersion, to,
		cfg.Thresholds.Breaking, cfg.Thresholds.Minor,
		cfg.TopK, cfg.Workers, mode, cfg.MaxFileBytes,
		cfg.Provider.URL, cfg.Provider.Index, cfg.Provider.Timeout,
		cfg.Embedder.URL, cfg.Embedder.Model,
	)
}
