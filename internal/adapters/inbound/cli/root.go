package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

// globalOptions are the flags shared by every command.
type globalOptions struct {
	verbose   int
	quiet     bool
	extractor string
	workers   int
	cache     bool
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}
	cmd := newCheckCmd(g)
	cmd.Use = "breakguard [path]"
	cmd.Short = "Predict breaking API changes before upgrading a library"
	cmd.Long = "BreakGuard scans a JavaScript/TypeScript project for React API usage and compares every " +
		"symbol against the target version through a semantic match provider."
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	pf := cmd.PersistentFlags()
	pf.CountVarP(&g.verbose, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	pf.BoolVar(&g.quiet, "quiet", false, "Suppress all log output")
	pf.StringVar(&g.extractor, "extractor", "", "Extractor mode: auto, structural or lexical")
	pf.IntVar(&g.workers, "workers", 0, "Parallel classification requests")
	pf.BoolVar(&g.cache, "cache", false, "Reuse symbol sets of unchanged files from .breakguard/cache")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newScanCmd(g))
	cmd.AddCommand(newLocateCmd())
	cmd.AddCommand(newHistoryCmd())
	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newMCPCmd(g))
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

// Execute runs the CLI until completion or interrupt.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := newRootCmd()
	err := cmd.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, ErrBreakingChanges) {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
	}
	return err
}
