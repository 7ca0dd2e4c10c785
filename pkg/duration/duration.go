// Package duration provides canonical time constants for the entire codebase.
// This is the SINGLE SOURCE OF TRUTH for all time-based configuration.
//
// Usage:
//
//	ctx, cancel := context.WithTimeout(ctx, duration.Upstream)
//	srv := &http.Server{ReadHeaderTimeout: duration.HTTPReadHeader}
//
// DO NOT use hardcoded time.Duration values like `30 * time.Second` anywhere.
// Instead, reference the appropriate constant from this package.
package duration

import "time"

// ============================================================================
// UPSTREAM GRAPHQL TIMEOUTS
// ============================================================================
//
// Bounds for outbound requests against the configured GraphQL endpoint.
// ============================================================================

const (
	// Upstream bounds a single GraphQL query or introspection POST (30s)
	Upstream = 30 * time.Second

	// SchemaFetch bounds a remote schema document GET (30s)
	SchemaFetch = 30 * time.Second
)

// ============================================================================
// INBOUND HTTP SERVER
// ============================================================================
//
// Tuning for the listener hosting the streamable-http and sse transports.
// WriteTimeout is deliberately absent: event streams hang open indefinitely,
// so the server runs with WriteTimeout zero.
// ============================================================================

const (
	// HTTPReadHeader bounds inbound request header reads (10s)
	HTTPReadHeader = 10 * time.Second

	// HTTPIdle closes idle keep-alive connections (30s)
	HTTPIdle = 30 * time.Second

	// Shutdown is the graceful drain budget on SIGINT/SIGTERM (15s)
	Shutdown = 15 * time.Second
)

// ============================================================================
// SSE STREAMS
// ============================================================================

const (
	// SSEKeepAlive is the interval between keep-alive comments on event
	// streams; proxies commonly cut idle streams at 60s (15s)
	SSEKeepAlive = 15 * time.Second
)

// ============================================================================
// NETWORK/TRANSPORT
// ============================================================================
//
// Use these for low-level network configuration.
// ============================================================================

const (
	// DialTimeout is for establishing TCP connections (10s)
	DialTimeout = 10 * time.Second

	// KeepAlive is for TCP keep-alive interval (30s)
	KeepAlive = 30 * time.Second

	// IdleConnTimeout is for idle connection pool timeout (90s)
	IdleConnTimeout = 90 * time.Second

	// TLSHandshake is for TLS handshake timeout (10s)
	TLSHandshake = 10 * time.Second
)
