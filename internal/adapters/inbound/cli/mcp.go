package cli

import (
	"fmt"

	mcpadapter "github.com/breakguard/breakguard/internal/adapters/inbound/mcp"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

func newMCPCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server commands",
		Long:  "Commands for running the BreakGuard MCP (Model Context Protocol) server.",
	}
	cmd.AddCommand(newMCPServeCmd(g))
	return cmd
}

func newMCPServeCmd(g *globalOptions) *cobra.Command {
	var projectPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start BreakGuard MCP server (stdio)",
		Long:  "Start the BreakGuard MCP server using stdio transport. Assistants can scan the project, check it against a target version and locate symbol usages.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if projectPath == "" {
				projectPath = "."
			}
			absPath, err := resolvePath(projectPath)
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

			// stdout carries the protocol, so logs stay on stderr.
			svc, err := buildServices(cfg, newLogger(cmd, g, cfg), g.cache)
			if err != nil {
				return err
			}

			s := mcpadapter.NewBreakGuardMCPServer(absPath, svc.check, svc.catalog, cfg.VersionContext())
			return server.ServeStdio(s)
		},
	}

	cmd.Flags().StringVar(&projectPath, "path", "", "Project path (defaults to current working directory)")

	return cmd
}
