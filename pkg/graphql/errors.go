package graphql

import "errors"

// Sentinel errors for schema resolution and mutation gating.
// Callers should use errors.Is() to check for these.
var (
	// ErrSchemaUnavailable indicates the configured schema strategy
	// failed: the schema URL fetch or file read errored, or live
	// introspection could not produce a schema.
	ErrSchemaUnavailable = errors.New("graphql: schema unavailable")

	// ErrMutationsDisabled indicates a mutation was submitted while the
	// gateway disallows mutations.
	ErrMutationsDisabled = errors.New("graphql: mutations disabled")
)
