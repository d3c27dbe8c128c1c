package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/breakguard/breakguard/internal/domain"
)

const catalogURI = "breakguard://catalog"

func registerResources(s *server.MCPServer, catalog *domain.Catalog) {
	s.AddResource(
		mcplib.NewResource(
			catalogURI,
			"Symbol Catalog",
			mcplib.WithResourceDescription("Every API symbol shape the extractor recognizes, with its canonical form"),
			mcplib.WithMIMEType("application/json"),
		),
		handleCatalogResource(catalog),
	)
}

func handleCatalogResource(catalog *domain.Catalog) server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		data, err := json.MarshalIndent(catalog.Patterns(), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling catalog: %w", err)
		}
		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      catalogURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	}
}
