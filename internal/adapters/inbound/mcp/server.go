package mcp

import (
	"github.com/breakguard/breakguard/internal/application"
	"github.com/breakguard/breakguard/internal/domain"
	"github.com/mark3labs/mcp-go/server"
)

// NewBreakGuardMCPServer creates an MCP server exposing the scan, check and
// locate operations for the project at projectPath. defaults supplies the
// library and versions used when a check request omits them.
func NewBreakGuardMCPServer(
	projectPath string,
	svc *application.CheckService,
	catalog *domain.Catalog,
	defaults domain.VersionContext,
) *server.MCPServer {
	s := server.NewMCPServer(
		"breakguard",
		"0.1.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	h := &handlers{root: projectPath, svc: svc, defaults: defaults}
	registerTools(s, h)
	registerResources(s, catalog)

	return s
}
