// Package defaults provides canonical default values for the entire codebase.
// This is the SINGLE SOURCE OF TRUTH for runtime configuration defaults.
//
// Usage:
//
//	cfg.Endpoint = defaults.Endpoint
//	req.Header.Set("Content-Type", defaults.ContentTypeJSON)
//
// DO NOT hardcode values like `Port: 3000` anywhere.
// Instead, reference the appropriate constant from this package.
package defaults

import "fmt"

// Version is the current gateway version
const Version = "1.2.0"

// ============================================================================
// SERVICE IDENTITY
// ============================================================================
//
// Use these for the MCP implementation info and health payloads.
// ============================================================================

const (
	// ServerName is the default MCP display name (NAME)
	ServerName = "mcp-graphql"

	// ServerTitle is the human-readable server title
	ServerTitle = "GraphQL MCP Gateway"
)

// ============================================================================
// CONFIGURATION DEFAULTS
// ============================================================================
//
// Built-in fallbacks for the environment-driven configuration keys.
// ============================================================================

const (
	// Endpoint is the default GraphQL target (ENDPOINT)
	Endpoint = "http://localhost:4000/graphql"

	// Port is the default HTTP listen port (PORT)
	Port = 3000

	// Transport is the default transport kind (TRANSPORT)
	Transport = "stdio"
)

// ============================================================================
// HTTP CONTENT TYPES
// ============================================================================
//
// Use these for Content-Type and Accept headers.
// ============================================================================

const (
	// ContentTypeJSON is application/json
	ContentTypeJSON = "application/json"

	// ContentTypePlain is text/plain
	ContentTypePlain = "text/plain"

	// ContentTypeEventStream is text/event-stream (SSE)
	ContentTypeEventStream = "text/event-stream"

	// AcceptJSON accepts JSON
	AcceptJSON = "application/json"
)

// ============================================================================
// USER AGENT
// ============================================================================

const (
	// UAMinimal is the bare user agent
	UAMinimal = ServerName + "/" + Version
)

// UserAgent returns the gateway user agent with context
func UserAgent(context string) string {
	if context == "" {
		return UAMinimal
	}
	return fmt.Sprintf("%s/%s (%s)", ServerName, Version, context)
}

// ============================================================================
// SIZE LIMITS
// ============================================================================
//
// Use these for byte buffers and bounded I/O.
// ============================================================================

const (
	// BufferSmall is for typical reads (4KB)
	BufferSmall = 4 * 1024

	// BufferHuge is for very large reads (1MB)
	BufferHuge = 1024 * 1024

	// MaxBodySize caps upstream response reads; introspection documents for
	// large schemas routinely exceed 1MB (16MB)
	MaxBodySize = 16 * 1024 * 1024

	// MaxHeaderBytes caps inbound HTTP request headers (1MB)
	MaxHeaderBytes = 1 << 20
)

// ============================================================================
// PORTS
// ============================================================================
//
// Common port numbers.
// ============================================================================

const (
	PortHTTP  = 80
	PortHTTPS = 443
	PortMax   = 65535
)
