package cli

import (
	"fmt"

	"github.com/breakguard/breakguard/internal/adapters/outbound/parser"
	"github.com/spf13/cobra"
)

func newLocateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "locate <file> <symbol>",
		Short: "Print the lines of a file that mention a symbol",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, symbol := args[0], args[1]
			if _, err := resolvePath(file); err != nil {
				return err
			}

			lines := parser.Locate(file, symbol)
			if len(lines) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s not found in %s\n", symbol, file)
				return nil
			}
			for _, l := range lines {
				fmt.Fprintf(cmd.OutOrStdout(), "%s:%d\n", file, l)
			}
			return nil
		},
	}
}
