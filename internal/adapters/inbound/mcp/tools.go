package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/breakguard/breakguard/internal/adapters/outbound/parser"
	"github.com/breakguard/breakguard/internal/application"
	"github.com/breakguard/breakguard/internal/domain"
)

type handlers struct {
	root     string
	svc      *application.CheckService
	defaults domain.VersionContext
}

func registerTools(s *server.MCPServer, h *handlers) {
	s.AddTool(
		mcplib.NewTool("breakguard_scan",
			mcplib.WithDescription("Lists the recognized API symbols used by each source file of the project as JSON"),
			mcplib.WithString("path", mcplib.Description("Sub-directory or file relative to the project root (default: whole project)")),
		),
		h.handleScan,
	)

	s.AddTool(
		mcplib.NewTool("breakguard_check",
			mcplib.WithDescription("Classifies every API symbol of the project against a target library version and returns the report as JSON"),
			mcplib.WithString("library", mcplib.Description("Library to check against (default from configuration)")),
			mcplib.WithString("from", mcplib.Description("Current library version")),
			mcplib.WithString("to", mcplib.Description("Target library version")),
			mcplib.WithString("path", mcplib.Description("Sub-directory or file relative to the project root")),
		),
		h.handleCheck,
	)

	s.AddTool(
		mcplib.NewTool("breakguard_locate",
			mcplib.WithDescription("Returns the 1-based line numbers of a file that mention a symbol"),
			mcplib.WithString("file", mcplib.Required(), mcplib.Description("File path relative to the project root")),
			mcplib.WithString("symbol", mcplib.Required(), mcplib.Description("Canonical symbol, e.g. ReactDOM.render")),
		),
		h.handleLocate,
	)
}

func (h *handlers) handleScan(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	target, err := h.resolve(request.GetString("path", ""))
	if err != nil {
		return errorResult(err.Error()), nil
	}
	scan, err := h.svc.Scan(ctx, target)
	if err != nil {
		return errorResult(fmt.Sprintf("scan failed: %v", err)), nil
	}
	return jsonResult(scan)
}

func (h *handlers) handleCheck(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	target, err := h.resolve(request.GetString("path", ""))
	if err != nil {
		return errorResult(err.Error()), nil
	}
	vc := domain.VersionContext{
		Library:    request.GetString("library", h.defaults.Library),
		OldVersion: request.GetString("from", h.defaults.OldVersion),
		NewVersion: request.GetString("to", h.defaults.NewVersion),
	}

	res, err := h.svc.Check(ctx, target, vc)
	if err != nil {
		return errorResult(fmt.Sprintf("check failed: %v", err)), nil
	}
	return jsonResult(domain.NewReportDocument(res))
}

type locateResult struct {
	File   string `json:"file"`
	Symbol string `json:"symbol"`
	Lines  []int  `json:"lines"`
}

func (h *handlers) handleLocate(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	file, err := request.RequireString("file")
	if err != nil {
		return errorResult(err.Error()), nil
	}
	symbol, err := request.RequireString("symbol")
	if err != nil {
		return errorResult(err.Error()), nil
	}
	target, err := h.resolve(file)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return jsonResult(locateResult{File: file, Symbol: symbol, Lines: parser.Locate(target, symbol)})
}

// resolve joins rel onto the project root and rejects paths that leave it.
func (h *handlers) resolve(rel string) (string, error) {
	if rel == "" {
		return h.root, nil
	}
	if filepath.IsAbs(rel) {
		return "", fmt.Errorf("path %q must be relative to the project root", rel)
	}
	joined := filepath.Join(h.root, filepath.FromSlash(rel))
	back, err := filepath.Rel(h.root, joined)
	if err != nil || back == ".." || strings.HasPrefix(back, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q is outside the project", rel)
	}
	return joined, nil
}

// jsonResult marshals v as indented JSON text content.
func jsonResult(v any) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
