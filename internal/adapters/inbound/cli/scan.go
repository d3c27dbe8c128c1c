package cli

import (
	"fmt"

	"github.com/breakguard/breakguard/internal/adapters/outbound/tui"
	"github.com/spf13/cobra"
)

func newScanCmd(g *globalOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "List recognized API calls without contacting the match provider",
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

			cfg, err := loadConfig(cmd, g, absPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid options: %w", err)
			}

			svc, err := buildServices(cfg, newLogger(cmd, g, cfg), g.cache)
			if err != nil {
				return err
			}

			scan, err := svc.check.Scan(cmd.Context(), absPath)
			if scan == nil {
				return err
			}

			if jsonOutput {
				if jerr := encodeJSON(cmd.OutOrStdout(), scan); jerr != nil {
					return jerr
				}
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), tui.RenderScan(scan, lineLocator(scan.RootPath)))
			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the scan result as JSON")
	return cmd
}
