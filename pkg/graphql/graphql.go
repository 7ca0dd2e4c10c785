// Package graphql provides the upstream GraphQL client and the request
// mediation around it: schema resolution, mutation gating, and execution
// with a uniform result classification.
package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mcpgraphql/mcpgraphql/pkg/defaults"
	"github.com/mcpgraphql/mcpgraphql/pkg/duration"
	"github.com/mcpgraphql/mcpgraphql/pkg/httpclient"
	"github.com/mcpgraphql/mcpgraphql/pkg/iohelper"
	"github.com/mcpgraphql/mcpgraphql/pkg/jsonutil"
)

// Request represents a GraphQL request
type Request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName,omitempty"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
}

// Response represents a GraphQL response
type Response struct {
	Data   json.RawMessage `json:"data,omitempty"`
	Errors []Error         `json:"errors,omitempty"`
}

// Error represents a GraphQL error
type Error struct {
	Message    string                 `json:"message"`
	Locations  []Location             `json:"locations,omitempty"`
	Path       []interface{}          `json:"path,omitempty"`
	Extensions map[string]interface{} `json:"extensions,omitempty"`
}

// Location represents the location of an error
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// ExecKind classifies the outcome of a single execution.
type ExecKind int

const (
	// ExecOK: 2xx and no GraphQL errors.
	ExecOK ExecKind = iota

	// ExecGraphQLErrors: 2xx but the body carries a non-empty errors array.
	// Partial data may be present alongside.
	ExecGraphQLErrors

	// ExecHTTPError: non-2xx status; Body holds the raw upstream payload.
	ExecHTTPError

	// ExecNetworkFailure: the request never produced a usable response
	// (DNS, connect, timeout, truncated or non-JSON body). Err holds the cause.
	ExecNetworkFailure
)

// ExecResult is the tagged outcome of Execute. Callers decide per call site
// whether ExecNetworkFailure propagates as fatal or degrades to an envelope;
// the other kinds always carry the upstream payload for diagnostics.
type ExecResult struct {
	Kind       ExecKind
	StatusCode int
	Body       []byte    // raw upstream bytes, valid for all kinds but NetworkFailure
	Response   *Response // parsed body, valid for OK and GraphQLErrors
	Err        error     // cause, valid for NetworkFailure
}

// ClientConfig configures the GraphQL client.
type ClientConfig struct {
	Timeout   time.Duration
	Headers   map[string]string
	UserAgent string
}

// DefaultClientConfig returns a default client configuration.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		Timeout:   duration.Upstream,
		UserAgent: defaults.UserAgent("GraphQL Gateway"),
	}
}

// Client issues GraphQL requests against a single endpoint.
type Client struct {
	config   *ClientConfig
	client   *http.Client
	endpoint string
}

// NewClient creates a GraphQL client for the given endpoint.
func NewClient(endpoint string, config *ClientConfig) *Client {
	if config == nil {
		config = DefaultClientConfig()
	}
	if config.Timeout == 0 {
		config.Timeout = duration.Upstream
	}
	if config.UserAgent == "" {
		config.UserAgent = defaults.UserAgent("GraphQL Gateway")
	}

	return &Client{
		config:   config,
		client:   httpclient.New(httpclient.WithTimeout(config.Timeout)),
		endpoint: endpoint,
	}
}

// Endpoint returns the configured upstream URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Execute sends one GraphQL request and classifies the outcome.
// Exactly one upstream POST per call; no retries.
func (c *Client) Execute(ctx context.Context, query string, variables map[string]interface{}) ExecResult {
	return c.do(ctx, Request{Query: query, Variables: variables})
}

func (c *Client) do(ctx context.Context, req Request) ExecResult {
	body, err := jsonutil.Marshal(req)
	if err != nil {
		return ExecResult{Kind: ExecNetworkFailure, Err: fmt.Errorf("encoding request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return ExecResult{Kind: ExecNetworkFailure, Err: fmt.Errorf("building request: %w", err)}
	}

	c.setHeaders(httpReq)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return ExecResult{Kind: ExecNetworkFailure, Err: err}
	}
	defer iohelper.DrainAndClose(resp.Body)

	respBody, err := iohelper.ReadBodyDefault(resp.Body)
	if err != nil {
		return ExecResult{Kind: ExecNetworkFailure, StatusCode: resp.StatusCode, Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ExecResult{Kind: ExecHTTPError, StatusCode: resp.StatusCode, Body: respBody}
	}

	var gqlResp Response
	if err := jsonutil.Unmarshal(respBody, &gqlResp); err != nil {
		return ExecResult{
			Kind:       ExecNetworkFailure,
			StatusCode: resp.StatusCode,
			Body:       respBody,
			Err:        fmt.Errorf("invalid GraphQL response: %w", err),
		}
	}

	if len(gqlResp.Errors) > 0 {
		return ExecResult{Kind: ExecGraphQLErrors, StatusCode: resp.StatusCode, Body: respBody, Response: &gqlResp}
	}

	return ExecResult{Kind: ExecOK, StatusCode: resp.StatusCode, Body: respBody, Response: &gqlResp}
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", defaults.ContentTypeJSON)
	req.Header.Set("Accept", defaults.AcceptJSON)
	req.Header.Set("User-Agent", c.config.UserAgent)

	// Configured headers override the fixed ones, so callers can pin a
	// custom Accept or auth scheme per deployment.
	for key, v := range c.config.Headers {
		req.Header.Set(key, v)
	}
}

// Introspect runs the standard introspection query and parses the schema.
// Any non-OK outcome is folded into an error; callers that need the raw
// classification should use Execute with IntrospectionQuery() directly.
func (c *Client) Introspect(ctx context.Context) (*Schema, error) {
	res := c.Execute(ctx, IntrospectionQuery(), nil)

	switch res.Kind {
	case ExecNetworkFailure:
		return nil, fmt.Errorf("introspection request failed: %w", res.Err)
	case ExecHTTPError:
		return nil, fmt.Errorf("introspection returned status %d: %s", res.StatusCode, string(res.Body))
	case ExecGraphQLErrors:
		return nil, fmt.Errorf("introspection returned errors: %s", joinErrorMessages(res.Response.Errors))
	}

	schema, err := ParseIntrospection(res.Response.Data)
	if err != nil {
		return nil, fmt.Errorf("parsing introspection result: %w", err)
	}
	return schema, nil
}

func joinErrorMessages(errs []Error) string {
	var sb bytes.Buffer
	for i, e := range errs {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(e.Message)
	}
	return sb.String()
}
