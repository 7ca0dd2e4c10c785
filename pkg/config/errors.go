package config

import "errors"

// Sentinel errors for configuration failure modes.
// Callers should use errors.Is() to check for these.
var (
	// ErrInvalidEndpoint indicates the GraphQL endpoint is not an
	// absolute http/https URL.
	ErrInvalidEndpoint = errors.New("config: invalid endpoint URL")

	// ErrInvalidHeaders indicates the HEADERS value is not a JSON
	// object of string values.
	ErrInvalidHeaders = errors.New("config: invalid headers JSON")

	// ErrInvalidTransport indicates an unknown transport kind.
	ErrInvalidTransport = errors.New("config: invalid transport")

	// ErrInvalidPort indicates the HTTP port is out of range.
	ErrInvalidPort = errors.New("config: invalid port")
)
