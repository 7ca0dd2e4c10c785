// Package config builds the immutable gateway configuration.
// Everything is validated once at startup by New; a *Config that exists is a
// *Config that passed validation, so downstream code never re-checks fields.
package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/mcpgraphql/mcpgraphql/pkg/defaults"
	"github.com/mcpgraphql/mcpgraphql/pkg/jsonutil"
)

// Transport selects how the gateway hosts the protocol engine.
type Transport string

const (
	// TransportStdio serves a single persistent stdio channel.
	TransportStdio Transport = "stdio"

	// TransportHTTP serves stateless streamable HTTP on POST /mcp.
	TransportHTTP Transport = "streamable-http"

	// TransportSSE serves session-keyed SSE streams on GET /sse with an
	// out-of-band POST /messages channel. Deprecated in favor of
	// streamable-http; kept for older clients.
	TransportSSE Transport = "sse"
)

// ParseTransport converts a raw transport string to a Transport.
func ParseTransport(s string) (Transport, error) {
	switch Transport(strings.ToLower(strings.TrimSpace(s))) {
	case TransportStdio:
		return TransportStdio, nil
	case TransportHTTP:
		return TransportHTTP, nil
	case TransportSSE:
		return TransportSSE, nil
	}
	return "", fmt.Errorf("%w: %q (valid: stdio, streamable-http, sse)", ErrInvalidTransport, s)
}

// Options carries raw startup inputs before validation. Headers is the raw
// JSON object text; everything else is already its final Go type.
type Options struct {
	Name           string
	Endpoint       string
	AllowMutations bool
	Headers        string
	Schema         string
	Transport      string
	Port           int
}

// Config is the validated, immutable gateway configuration.
type Config struct {
	// Name is the protocol-engine display name.
	Name string

	// Endpoint is the upstream GraphQL URL (absolute http/https).
	Endpoint string

	// AllowMutations permits mutation operations through the gate.
	AllowMutations bool

	// Headers are forwarded on every upstream request.
	Headers map[string]string

	// Schema optionally overrides live introspection: a local file path or
	// an absolute http/https URL to a schema document. Empty means live.
	Schema string

	// Transport is the hosting mode.
	Transport Transport

	// Port is the HTTP listen port for the two HTTP transports.
	Port int
}

// New validates opts and builds the Config. The first invalid field aborts
// construction; a partially-valid Config is never returned.
func New(opts Options) (*Config, error) {
	cfg := &Config{
		Name:           strings.TrimSpace(opts.Name),
		Endpoint:       strings.TrimSpace(opts.Endpoint),
		AllowMutations: opts.AllowMutations,
		Schema:         strings.TrimSpace(opts.Schema),
		Port:           opts.Port,
	}

	if cfg.Name == "" {
		cfg.Name = defaults.ServerName
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaults.Endpoint
	}

	if err := validateEndpoint(cfg.Endpoint); err != nil {
		return nil, err
	}

	headers, err := parseHeaders(opts.Headers)
	if err != nil {
		return nil, err
	}
	cfg.Headers = headers

	transport, err := ParseTransport(orDefault(opts.Transport, defaults.Transport))
	if err != nil {
		return nil, err
	}
	cfg.Transport = transport

	if cfg.Port == 0 {
		cfg.Port = defaults.Port
	}
	if cfg.Port < 1 || cfg.Port > defaults.PortMax {
		return nil, fmt.Errorf("%w: %d (must be 1-%d)", ErrInvalidPort, cfg.Port, defaults.PortMax)
	}

	return cfg, nil
}

// validateEndpoint requires an absolute http/https URL with a host.
func validateEndpoint(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidEndpoint, endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: %q (scheme must be http or https)", ErrInvalidEndpoint, endpoint)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: %q (missing host)", ErrInvalidEndpoint, endpoint)
	}
	return nil
}

// parseHeaders decodes the HEADERS JSON object into a string map.
// Empty input means no extra headers.
func parseHeaders(raw string) (map[string]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "{}" {
		return map[string]string{}, nil
	}

	var headers map[string]string
	if err := jsonutil.Unmarshal([]byte(raw), &headers); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHeaders, err)
	}
	if headers == nil {
		headers = map[string]string{}
	}
	return headers, nil
}

// Summary returns a single log-safe line describing the configuration.
// Header values are never included; they routinely carry credentials.
func (c *Config) Summary() string {
	schema := c.Schema
	if schema == "" {
		schema = "live introspection"
	}
	return fmt.Sprintf("name=%s endpoint=%s transport=%s allow-mutations=%t headers=%d schema=%s",
		c.Name, c.Endpoint, c.Transport, c.AllowMutations, len(c.Headers), schema)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
