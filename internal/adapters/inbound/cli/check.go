package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/breakguard/breakguard/internal/adapters/outbound/tui"
	"github.com/breakguard/breakguard/internal/application"
	"github.com/breakguard/breakguard/internal/domain"
	"github.com/spf13/cobra"
)

// ErrBreakingChanges is returned in --ci mode when a breaking change is reported.
var ErrBreakingChanges = errors.New("breaking changes detected")

type checkOptions struct {
	library     string
	from        string
	to          string
	jsonPath    string
	threshold   float64
	noBanner    bool
	ciMode      bool
	saveHistory bool
}

func newCheckCmd(g *globalOptions) *cobra.Command {
	o := &checkOptions{}

	cmd := &cobra.Command{
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}
			return runCheck(cmd, g, o, path)
		},
	}

	cmd.Flags().StringVar(&o.library, "library", domain.DefaultLibrary, "Library to check against")
	cmd.Flags().StringVar(&o.from, "from", domain.DefaultFromVersion, "Current library version")
	cmd.Flags().StringVar(&o.to, "to", domain.DefaultToVersion, "Target library version")
	cmd.Flags().StringVar(&o.jsonPath, "json", "", "Write the report as JSON to this file")
	cmd.Flags().Float64Var(&o.threshold, "threshold", domain.DefaultBreakingThreshold, "Similarity below which a change is breaking")
	cmd.Flags().BoolVar(&o.noBanner, "no-banner", false, "Skip the banner display")
	cmd.Flags().BoolVar(&o.ciMode, "ci", false, "CI mode: exit 1 if any breaking change is found")
	cmd.Flags().BoolVar(&o.saveHistory, "save-history", false, "Append the summary to .breakguard/history")

	return cmd
}

func runCheck(cmd *cobra.Command, g *globalOptions, o *checkOptions, path string) error {
	absPath, err := resolvePath(path)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd, g, absPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("library") {
		cfg.Library = o.library
	}
	if flags.Changed("from") {
		cfg.FromVersion = o.from
	}
	if flags.Changed("to") {
		cfg.ToVersion = o.to
	}
	if flags.Changed("threshold") {
		cfg.SetBreakingThreshold(o.threshold)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	out := cmd.OutOrStdout()
	vc := cfg.VersionContext()

	if !o.noBanner {
		fmt.Fprint(out, tui.RenderBanner())
	}
	fmt.Fprint(out, tui.RenderSection("Scanning Project"))
	fmt.Fprintf(out, "\n  Project path: %s\n", absPath)
	fmt.Fprintf(out, "  Scanning for %s API calls...\n\n", vc.Library)

	onScan := func(scan *domain.ScanResult) {
		fmt.Fprint(out, tui.RenderScan(scan, lineLocator(scan.RootPath)))
		if len(scan.Files) > 0 {
			fmt.Fprint(out, tui.RenderSection("Compatibility Analysis"))
			fmt.Fprintf(out, "\n  Comparing against %s v%s...\n", vc.Library, vc.NewVersion)
		}
	}

	logger := newLogger(cmd, g, cfg)
	svc, err := buildServices(cfg, logger, g.cache, application.WithScanHook(onScan))
	if err != nil {
		return err
	}

	res, err := svc.check.Check(cmd.Context(), absPath, vc)
	if res == nil {
		return err
	}
	if len(res.Scan.Files) == 0 {
		return err
	}

	fmt.Fprint(out, tui.RenderReport(res, lineLocator(res.Scan.RootPath)))

	if o.jsonPath != "" {
		if werr := writeReportJSON(o.jsonPath, res); werr != nil {
			return fmt.Errorf("writing report: %w", werr)
		}
		fmt.Fprintf(out, "  Report saved to %s\n", o.jsonPath)
	}

	if err != nil {
		return err
	}

	if o.saveHistory {
		if herr := svc.check.RecordHistory(res); herr != nil {
			logger.Warn("saving scan history", "error", herr)
		}
	}

	if o.ciMode && res.Report.Summary.Breaking > 0 {
		return fmt.Errorf("%w: %d", ErrBreakingChanges, res.Report.Summary.Breaking)
	}
	return nil
}

func writeReportJSON(path string, res *domain.CheckResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encodeJSON(f, domain.NewReportDocument(res)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
