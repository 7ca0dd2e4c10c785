package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mcpgraphql/mcpgraphql/pkg/defaults"
)

// registerResources adds the schema resource to the MCP server.
func (s *Server) registerResources() {
	s.addSchemaResource()
}

// ═══════════════════════════════════════════════════════════════════════════
// graphql-schema: the upstream API schema, addressed by its endpoint URL
// ═══════════════════════════════════════════════════════════════════════════

func (s *Server) addSchemaResource() {
	s.mcp.AddResource(
		&mcp.Resource{
			URI:         s.config.Endpoint,
			Name:        "graphql-schema",
			Description: "The complete schema of the GraphQL API in SDL form. Resolved from the configured schema file or URL when set, otherwise via live introspection.",
			MIMEType:    defaults.ContentTypePlain,
		},
		s.handleSchemaResource,
	)
}

// handleSchemaResource resolves the schema through the full precedence
// chain: configured URL, configured file, live introspection. Resolution
// failure is a protocol-level read error; the caller can retry or fall back
// to the introspect-schema tool.
func (s *Server) handleSchemaResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	strategy := resolutionStrategy(s.config.Schema, false)
	text, err := s.source.Resolve(ctx)
	s.metrics.recordResolution(strategy, err == nil)
	if err != nil {
		return nil, fmt.Errorf("reading schema: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{URI: s.config.Endpoint, MIMEType: defaults.ContentTypePlain, Text: text},
		},
	}, nil
}
