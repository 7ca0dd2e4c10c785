// Schema source resolution. The gateway serves its schema from one of three
// strategies, selected by configuration shape: a remote URL, a local file, or
// live introspection against the endpoint. Selection is not fallback: a
// configured source that fails to load is a resolution failure, never a
// silent switch to another strategy.
package graphql

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/mcpgraphql/mcpgraphql/pkg/defaults"
	"github.com/mcpgraphql/mcpgraphql/pkg/duration"
	"github.com/mcpgraphql/mcpgraphql/pkg/httpclient"
	"github.com/mcpgraphql/mcpgraphql/pkg/iohelper"
)

// SchemaSource resolves the schema document served by the gateway.
//
// Resolve honors all three strategies (URL, file, live introspection) and
// backs the readable schema resource. ResolveLocal honors only the file and
// live strategies and backs the introspection tool, which must not fetch
// arbitrary remote documents.
type SchemaSource struct {
	schema string
	client *Client
	http   *http.Client
}

// NewSchemaSource returns a resolver for the given schema override. An empty
// schema means live introspection via client. A value with an http:// or
// https:// prefix is treated as a remote document URL; anything else is a
// filesystem path.
func NewSchemaSource(schema string, client *Client) *SchemaSource {
	return &SchemaSource{
		schema: strings.TrimSpace(schema),
		client: client,
		http:   httpclient.New(httpclient.WithTimeout(duration.SchemaFetch)),
	}
}

// IsURL reports whether s is an absolute http or https URL.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Resolve produces the schema document using the full strategy precedence:
// URL fetch, file read, live introspection.
func (s *SchemaSource) Resolve(ctx context.Context) (string, error) {
	switch {
	case s.schema != "" && IsURL(s.schema):
		return s.fetchURL(ctx)
	case s.schema != "":
		return s.readFile()
	default:
		return s.introspect(ctx)
	}
}

// ResolveLocal produces the schema document without the URL strategy. A
// URL-valued source is still treated as a filesystem path here and fails as
// an unreadable file rather than triggering a remote fetch.
func (s *SchemaSource) ResolveLocal(ctx context.Context) (string, error) {
	if s.schema != "" {
		return s.readFile()
	}
	return s.introspect(ctx)
}

func (s *SchemaSource) fetchURL(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.schema, nil)
	if err != nil {
		return "", fmt.Errorf("%w: building schema request: %v", ErrSchemaUnavailable, err)
	}
	req.Header.Set("User-Agent", defaults.UAMinimal)

	resp, err := s.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: fetching %s: %v", ErrSchemaUnavailable, s.schema, err)
	}
	defer iohelper.DrainAndClose(resp.Body)

	body, err := iohelper.ReadBodyDefault(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading schema from %s: %v", ErrSchemaUnavailable, s.schema, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: fetching %s: HTTP %s", ErrSchemaUnavailable, s.schema, resp.Status)
	}
	return string(body), nil
}

func (s *SchemaSource) readFile() (string, error) {
	data, err := os.ReadFile(s.schema)
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %v", ErrSchemaUnavailable, s.schema, err)
	}
	return string(data), nil
}

func (s *SchemaSource) introspect(ctx context.Context) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("%w: no GraphQL client configured for introspection", ErrSchemaUnavailable)
	}
	schema, err := s.client.Introspect(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSchemaUnavailable, err)
	}
	return RenderSDL(schema), nil
}
