package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mcpgraphql/mcpgraphql/pkg/graphql"
	"github.com/mcpgraphql/mcpgraphql/pkg/jsonutil"
)

// Tool names, stable across transports and releases. Clients key on these.
const (
	toolIntrospectSchema = "introspect-schema"
	toolQueryGraphQL     = "query-graphql"
)

// registerTools adds both gateway tools to the MCP server.
func (s *Server) registerTools() {
	s.addIntrospectSchemaTool()
	s.addQueryGraphQLTool()
}

// toolError counts a failed invocation and wraps msg in an error envelope.
func (s *Server) toolError(tool, msg string) *mcp.CallToolResult {
	s.metrics.recordTool(tool, false)
	return errorResult(msg)
}

// ═══════════════════════════════════════════════════════════════════════════
// introspect-schema: fetch the GraphQL schema as SDL text
// ═══════════════════════════════════════════════════════════════════════════

func (s *Server) addIntrospectSchemaTool() {
	s.mcp.AddTool(
		&mcp.Tool{
			Name:  toolIntrospectSchema,
			Title: "Introspect GraphQL Schema",
			Description: `Fetch the schema of the configured GraphQL API as SDL text. Run this FIRST, before writing any query.

USE THIS TOOL WHEN:
• Starting work against this API and you don't know its types yet
• The user asks "what queries/mutations/fields does this API have?"
• A query failed with an unknown-field error and you need to re-check names
• You need argument types or enum values to build a valid operation

DO NOT USE THIS TOOL WHEN:
• You already introspected in this conversation and the schema hasn't changed; reuse what you learned
• You want to run an operation; use 'query-graphql' instead

The schema comes from a local SDL file when the operator configured one, otherwise from a live introspection query against the endpoint. The result is the complete schema: object types, interfaces, unions, enums, input types, scalars, and directives.

EXAMPLE INPUTS:
• Normal call: {} (no arguments)

Returns: the schema in GraphQL Schema Definition Language (SDL).`,
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"random_string": map[string]any{
						"type":        "boolean",
						"description": "Ignored. Accepted for compatibility with clients that refuse to call zero-argument tools.",
					},
				},
			},
			Annotations: &mcp.ToolAnnotations{
				ReadOnlyHint:   true,
				IdempotentHint: true,
				OpenWorldHint:  boolPtr(true),
				Title:          "Introspect GraphQL Schema",
			},
		},
		s.handleIntrospectSchema,
	)
}

type introspectSchemaArgs struct {
	// RandomString is a placeholder some MCP clients insist on sending.
	// Its value carries no meaning.
	RandomString bool `json:"random_string"`
}

func (s *Server) handleIntrospectSchema(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args introspectSchemaArgs
	if err := parseArgs(req, &args); err != nil {
		return s.toolError(toolIntrospectSchema, fmt.Sprintf("invalid arguments: %v. This tool needs no input; call it with {}.", err)), nil
	}

	strategy := resolutionStrategy(s.config.Schema, true)
	text, err := s.source.ResolveLocal(ctx)
	s.metrics.recordResolution(strategy, err == nil)
	if err != nil {
		return s.toolError(toolIntrospectSchema, fmt.Sprintf(
			"failed to introspect schema: %v. Verify the GraphQL endpoint is reachable and allows introspection, or configure SCHEMA to point at a local SDL file.", err)), nil
	}

	s.metrics.recordTool(toolIntrospectSchema, true)
	return textResult(text), nil
}

// ═══════════════════════════════════════════════════════════════════════════
// query-graphql: execute a GraphQL operation against the endpoint
// ═══════════════════════════════════════════════════════════════════════════

func (s *Server) addQueryGraphQLTool() {
	s.mcp.AddTool(
		&mcp.Tool{
			Name:  toolQueryGraphQL,
			Title: "Query GraphQL API",
			Description: `Execute a GraphQL operation against the configured endpoint and return the JSON result.

USE THIS TOOL WHEN:
• The user asks for data the API can answer
• You have introspected the schema and built a valid operation
• You need to re-run a corrected query after an error result

DO NOT USE THIS TOOL WHEN:
• You don't know the schema yet; use 'introspect-schema' first
• You want the schema itself; introspection via this tool returns raw JSON, while 'introspect-schema' returns readable SDL

Mutations are blocked unless the operator enabled them (ALLOW_MUTATIONS=true). The gate classifies by parsed operation kind: a document containing any mutation operation is rejected before anything is sent upstream. Subscriptions are forwarded as ordinary POST requests; endpoints that require a streaming transport for subscriptions will answer with an error.

EXAMPLE INPUTS:
• Simple query: {"query": "query { users { id name } }"}
• With variables: {"query": "query($id: ID!) { user(id: $id) { name } }", "variables": "{\"id\": \"42\"}"}
• Mutation (only when enabled): {"query": "mutation($input: UserInput!) { createUser(input: $input) { id } }", "variables": "{\"input\": {\"name\": \"Ada\"}}"}

Returns: the upstream response JSON ({"data": ...}); an error envelope when the query is invalid, a mutation is blocked, the upstream answers non-2xx, or the response carries GraphQL errors.`,
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "The GraphQL operation to execute (query, mutation, or subscription document).",
					},
					"variables": map[string]any{
						"type":        "string",
						"description": "Operation variables as a JSON object in string form, e.g. \"{\\\"id\\\": \\\"42\\\"}\". Omit when the operation takes none.",
					},
				},
				"required": []string{"query"},
			},
			Annotations: &mcp.ToolAnnotations{
				ReadOnlyHint:    !s.config.AllowMutations,
				IdempotentHint:  false,
				DestructiveHint: boolPtr(s.config.AllowMutations),
				OpenWorldHint:   boolPtr(true),
				Title:           "Query GraphQL API",
			},
		},
		s.handleQueryGraphQL,
	)
}

type queryGraphQLArgs struct {
	Query     string `json:"query"`
	Variables string `json:"variables"`
}

func (s *Server) handleQueryGraphQL(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args queryGraphQLArgs
	if err := parseArgs(req, &args); err != nil {
		return s.toolError(toolQueryGraphQL, fmt.Sprintf(
			`invalid arguments: %v. Expected {"query": "...", "variables": "{...}"}.`, err)), nil
	}

	if strings.TrimSpace(args.Query) == "" {
		return s.toolError(toolQueryGraphQL,
			`query is required. Example: {"query": "query { __typename }"}`), nil
	}

	variables, err := parseVariables(args.Variables)
	if err != nil {
		return s.toolError(toolQueryGraphQL, fmt.Sprintf(
			"invalid variables: %v. Pass variables as a JSON object in string form, e.g. \"{\\\"id\\\": \\\"42\\\"}\".", err)), nil
	}

	// The gate parses and classifies before anything touches the network.
	if err := s.gate.Check(args.Query); err != nil {
		if errors.Is(err, graphql.ErrMutationsDisabled) {
			s.metrics.mutationsBlocked.Inc()
		}
		return s.toolError(toolQueryGraphQL, err.Error()), nil
	}

	start := time.Now()
	res := s.client.Execute(ctx, args.Query, variables)
	s.metrics.recordUpstream(res, time.Since(start).Seconds())

	switch res.Kind {
	case graphql.ExecNetworkFailure:
		// Unreachable upstream is a protocol-level failure for this
		// invocation, distinct from "the service told us it's wrong".
		s.metrics.recordTool(toolQueryGraphQL, false)
		return nil, fmt.Errorf("graphql request to %s failed: %w", s.client.Endpoint(), res.Err)

	case graphql.ExecHTTPError:
		return s.toolError(toolQueryGraphQL, fmt.Sprintf(
			"upstream returned HTTP %d:\n%s", res.StatusCode, string(res.Body))), nil

	case graphql.ExecGraphQLErrors:
		return s.toolError(toolQueryGraphQL,
			"the GraphQL response contains errors:\n"+prettyJSON(res.Body)), nil
	}

	s.metrics.recordTool(toolQueryGraphQL, true)
	return textResult(prettyJSON(res.Body)), nil
}

// parseVariables decodes the variables argument. Clients send variables as a
// JSON object in string form; empty means none.
func parseVariables(raw string) (map[string]interface{}, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var vars map[string]interface{}
	if err := jsonutil.Unmarshal([]byte(raw), &vars); err != nil {
		return nil, err
	}
	return vars, nil
}
