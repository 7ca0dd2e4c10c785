// Package mcpserver exposes a GraphQL API as a Model Context Protocol (MCP)
// server, enabling AI assistants (Claude, VS Code Copilot, Cursor, etc.) to
// introspect the API and run queries through natural conversation.
//
// # Architecture
//
// The server is built on the official MCP Go SDK and binds three collaborators
// into the protocol surface:
//
//   - Schema resolver: produces the schema document from a local file, a
//     remote schema URL, or live introspection, with fixed precedence
//   - Mutation gate:   classifies query text by parsed operation kind and
//     blocks mutations unless explicitly enabled
//   - Query executor:  issues the upstream HTTP request and normalizes
//     transport and application errors into a uniform envelope
//
// Registered surface: the graphql-schema resource, the introspect-schema
// tool, and the query-graphql tool.
//
// # Transports
//
// Exactly one transport hosts the engine per process:
//
//   - stdio:           stdin/stdout channel (default). Used by IDE and
//     desktop integrations.
//   - streamable-http: stateless per-request HTTP. Used for remote and
//     Docker deployments.
//   - sse:             session-keyed event streams with an out-of-band POST
//     channel. Deprecated, retained for older clients.
//
// # Usage
//
//	cfg, err := config.New(config.Options{Endpoint: "https://api.example.com/graphql"})
//	if err != nil {
//		log.Fatal(err)
//	}
//	srv := mcpserver.New(cfg)
//	err = srv.RunStdio(ctx)
package mcpserver
