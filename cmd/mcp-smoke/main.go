// Command mcp-smoke runs end-to-end smoke scenarios against a freshly started
// gateway: it boots a stub GraphQL upstream, spawns mcp-graphql over the SSE
// transport, connects a real MCP client, and walks the full tool and resource
// surface the way an AI agent would.
//
// Non-live scenarios are hermetic. Live scenarios (-live) start a second
// gateway pointed at -target and run read-only operations against it.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mcpgraphql/mcpgraphql/pkg/httpclient"
)

// scenarioResult tracks the outcome of a single scenario.
type scenarioResult struct {
	name   string
	passed bool
	err    error
}

// scenario is a named test function that runs against a live MCP session.
// base is the gateway's HTTP base URL for scenarios that touch /health or
// /metrics directly.
type scenario struct {
	name string
	live bool // requires a real upstream (skipped without -live)
	fn   func(ctx context.Context, s *mcp.ClientSession, base string) error
}

func main() {
	var (
		port    = flag.Int("port", 18080, "Gateway SSE port (live gateway uses port+1)")
		target  = flag.String("target", "https://countries.trevorblades.com/graphql", "Upstream GraphQL endpoint for live scenarios")
		timeout = flag.Duration("timeout", 90*time.Second, "Overall timeout")
		live    = flag.Bool("live", false, "Enable live scenarios that hit an external upstream")
		runOnly = flag.String("scenario", "", "Run only this named scenario")
	)
	flag.Parse()
	log.SetFlags(0)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	stubURL, stubClose, err := startStubUpstream()
	if err != nil {
		log.Fatalf("FATAL stub_upstream: %v", err)
	}
	defer stubClose()
	fmt.Printf("stub upstream: %s\n", stubURL)

	gatewayCmd, err := startGateway(ctx, *port, stubURL)
	if err != nil {
		log.Fatalf("FATAL start_gateway: %v", err)
	}
	defer stopGateway(gatewayCmd)

	if err := waitForHealth(ctx, *port); err != nil {
		log.Fatalf("FATAL health_check: %v", err)
	}
	fmt.Println("gateway: healthy")

	session, err := connect(ctx, *port)
	if err != nil {
		log.Fatalf("FATAL connect: %v", err)
	}
	defer session.Close()

	// Live mode runs a second gateway against the real upstream so the
	// hermetic scenarios keep their stub.
	var liveSession *mcp.ClientSession
	liveBase := ""
	if *live {
		livePort := *port + 1
		liveCmd, err := startGateway(ctx, livePort, *target)
		if err != nil {
			log.Fatalf("FATAL start_live_gateway: %v", err)
		}
		defer stopGateway(liveCmd)
		if err := waitForHealth(ctx, livePort); err != nil {
			log.Fatalf("FATAL live_health_check: %v", err)
		}
		liveSession, err = connect(ctx, livePort)
		if err != nil {
			log.Fatalf("FATAL live_connect: %v", err)
		}
		defer liveSession.Close()
		liveBase = fmt.Sprintf("http://127.0.0.1:%d", livePort)
		fmt.Printf("live gateway: healthy (upstream %s)\n", *target)
	}

	base := fmt.Sprintf("http://127.0.0.1:%d", *port)
	scenarios := allScenarios()

	var results []scenarioResult
	for _, sc := range scenarios {
		if *runOnly != "" && sc.name != *runOnly {
			continue
		}
		if sc.live && !*live {
			results = append(results, scenarioResult{name: sc.name, passed: true, err: fmt.Errorf("SKIP (needs -live)")})
			fmt.Printf("SKIP  %s\n", sc.name)
			continue
		}

		s, b := session, base
		if sc.live {
			s, b = liveSession, liveBase
		}

		err := sc.fn(ctx, s, b)
		passed := err == nil
		results = append(results, scenarioResult{name: sc.name, passed: passed, err: err})

		if passed {
			fmt.Printf("PASS  %s\n", sc.name)
		} else {
			fmt.Printf("FAIL  %s: %v\n", sc.name, err)
		}
	}

	// Summary.
	passed, failed, skipped := 0, 0, 0
	for _, r := range results {
		if r.err != nil && strings.HasPrefix(r.err.Error(), "SKIP") {
			skipped++
		} else if r.passed {
			passed++
		} else {
			failed++
		}
	}

	fmt.Printf("\n--- %d passed, %d failed, %d skipped ---\n", passed, failed, skipped)
	if failed > 0 {
		os.Exit(1)
	}
}

// allScenarios returns every smoke scenario in execution order.
func allScenarios() []scenario {
	return []scenario{
		// Surface area verification.
		{"tool_discovery", false, scenarioToolDiscovery},
		{"resource_exploration", false, scenarioResourceExploration},

		// Individual tool validation (positive + negative for each).
		{"schema_introspection", false, scenarioSchemaIntrospection},
		{"query_roundtrip", false, scenarioQueryRoundtrip},
		{"query_variables", false, scenarioQueryVariables},
		{"mutation_blocked", false, scenarioMutationBlocked},
		{"error_handling", false, scenarioErrorHandling},

		// Agent simulation: the multi-turn read-schema-then-query workflow
		// that real MCP clients follow.
		{"agent_schema_guided_query", false, agentSchemaGuidedQuery},

		// Operational surface.
		{"health_and_metrics", false, scenarioHealthAndMetrics},

		// Live (requires an external upstream).
		{"live_introspection", true, scenarioLiveIntrospection},
		{"live_query", true, scenarioLiveQuery},
	}
}

// ---------------------------------------------------------------------------
// tool_discovery verifies both tools exist with metadata, plus negative:
// nonexistent tool calls must not silently succeed.
// ---------------------------------------------------------------------------

func scenarioToolDiscovery(ctx context.Context, s *mcp.ClientSession, _ string) error {
	tools, err := s.ListTools(ctx, &mcp.ListToolsParams{})
	if err != nil {
		return fmt.Errorf("ListTools: %w", err)
	}

	expected := []string{"introspect-schema", "query-graphql"}

	have := make(map[string]*mcp.Tool, len(tools.Tools))
	for _, t := range tools.Tools {
		have[t.Name] = t
	}

	var missing []string
	for _, name := range expected {
		if have[name] == nil {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing tools: %v (have %d)", missing, len(tools.Tools))
	}
	if len(tools.Tools) != len(expected) {
		return fmt.Errorf("tool count mismatch: want %d, got %d", len(expected), len(tools.Tools))
	}

	// Every tool must have a description (agents select tools by description)
	// and an input schema (agents build arguments from it).
	for _, t := range tools.Tools {
		if t.Description == "" {
			return fmt.Errorf("tool %q has empty description", t.Name)
		}
		if t.InputSchema == nil {
			return fmt.Errorf("tool %q has nil input schema", t.Name)
		}
		if t.Annotations == nil {
			return fmt.Errorf("tool %q has nil annotations", t.Name)
		}
	}

	// Mutations are blocked by default, so both tools must advertise as
	// read-only in this configuration.
	for _, name := range expected {
		if !have[name].Annotations.ReadOnlyHint {
			return fmt.Errorf("tool %q should advertise ReadOnlyHint with mutations disabled", name)
		}
	}

	// NEGATIVE: calling a nonexistent tool must fail: protocol error or
	// IsError=true, both acceptable.
	fakeResult, err := s.CallTool(ctx, &mcp.CallToolParams{Name: "nonexistent_tool_that_does_not_exist", Arguments: map[string]any{}})
	if err == nil && !fakeResult.IsError {
		return fmt.Errorf("NEG nonexistent tool: expected error, got success")
	}

	return nil
}

// ---------------------------------------------------------------------------
// resource_exploration reads the schema resource, plus negative:
// nonexistent URIs must fail.
// ---------------------------------------------------------------------------

func scenarioResourceExploration(ctx context.Context, s *mcp.ClientSession, _ string) error {
	resources, err := s.ListResources(ctx, &mcp.ListResourcesParams{})
	if err != nil {
		return fmt.Errorf("ListResources: %w", err)
	}
	if len(resources.Resources) != 1 {
		return fmt.Errorf("resource count mismatch: want 1, got %d", len(resources.Resources))
	}

	schema := resources.Resources[0]
	if schema.Name != "graphql-schema" {
		return fmt.Errorf("resource name = %q, want graphql-schema", schema.Name)
	}
	if schema.MIMEType != "text/plain" {
		return fmt.Errorf("resource MIME type = %q, want text/plain", schema.MIMEType)
	}

	res, err := s.ReadResource(ctx, &mcp.ReadResourceParams{URI: schema.URI})
	if err != nil {
		return fmt.Errorf("ReadResource(%s): %w", schema.URI, err)
	}
	sdl := resourceText(res)
	if !strings.Contains(sdl, "type Query") {
		return fmt.Errorf("schema resource missing type Query: %s", truncate(sdl, 120))
	}

	// NEGATIVE: a nonexistent URI must fail.
	if _, err := s.ReadResource(ctx, &mcp.ReadResourceParams{URI: "graphql://no-such-resource"}); err == nil {
		return fmt.Errorf("NEG nonexistent resource: expected error, got success")
	}

	return nil
}

// ---------------------------------------------------------------------------
// schema_introspection: the introspect-schema tool returns SDL and accepts
// its compatibility placeholder argument.
// ---------------------------------------------------------------------------

func scenarioSchemaIntrospection(ctx context.Context, s *mcp.ClientSession, _ string) error {
	res, err := s.CallTool(ctx, &mcp.CallToolParams{Name: "introspect-schema", Arguments: map[string]any{}})
	if err != nil {
		return fmt.Errorf("CallTool: %w", err)
	}
	if res.IsError {
		return fmt.Errorf("introspect-schema failed: %s", truncate(resultText(res), 200))
	}
	sdl := resultText(res)
	for _, want := range []string{"type Query", "hello", "echo"} {
		if !strings.Contains(sdl, want) {
			return fmt.Errorf("SDL missing %q: %s", want, truncate(sdl, 200))
		}
	}

	// The placeholder argument is accepted and ignored.
	res2, err := s.CallTool(ctx, &mcp.CallToolParams{Name: "introspect-schema", Arguments: map[string]any{"random_string": true}})
	if err != nil {
		return fmt.Errorf("CallTool with placeholder: %w", err)
	}
	if res2.IsError {
		return fmt.Errorf("placeholder argument rejected: %s", truncate(resultText(res2), 200))
	}
	if resultText(res2) != sdl {
		return fmt.Errorf("placeholder argument changed the result")
	}

	return nil
}

// ---------------------------------------------------------------------------
// query_roundtrip: a valid query reaches the upstream and the data comes
// back pretty-printed.
// ---------------------------------------------------------------------------

func scenarioQueryRoundtrip(ctx context.Context, s *mcp.ClientSession, _ string) error {
	res, err := s.CallTool(ctx, &mcp.CallToolParams{
		Name:      "query-graphql",
		Arguments: map[string]any{"query": "query { hello }"},
	})
	if err != nil {
		return fmt.Errorf("CallTool: %w", err)
	}
	if res.IsError {
		return fmt.Errorf("query failed: %s", truncate(resultText(res), 200))
	}
	text := resultText(res)
	if !strings.Contains(text, `"world"`) {
		return fmt.Errorf("response missing expected data: %s", truncate(text, 200))
	}
	return nil
}

// ---------------------------------------------------------------------------
// query_variables: variables travel as a JSON object in string form.
// ---------------------------------------------------------------------------

func scenarioQueryVariables(ctx context.Context, s *mcp.ClientSession, _ string) error {
	res, err := s.CallTool(ctx, &mcp.CallToolParams{
		Name: "query-graphql",
		Arguments: map[string]any{
			"query":     "query($message: String) { echo(message: $message) }",
			"variables": `{"message": "ping"}`,
		},
	})
	if err != nil {
		return fmt.Errorf("CallTool: %w", err)
	}
	if res.IsError {
		return fmt.Errorf("query failed: %s", truncate(resultText(res), 200))
	}
	if !strings.Contains(resultText(res), `"ping"`) {
		return fmt.Errorf("variable did not round-trip: %s", truncate(resultText(res), 200))
	}
	return nil
}

// ---------------------------------------------------------------------------
// mutation_blocked: the default policy rejects mutations with an actionable
// envelope and never contacts the upstream.
// ---------------------------------------------------------------------------

func scenarioMutationBlocked(ctx context.Context, s *mcp.ClientSession, _ string) error {
	res, err := s.CallTool(ctx, &mcp.CallToolParams{
		Name:      "query-graphql",
		Arguments: map[string]any{"query": "mutation { setHello(value: \"hi\") }"},
	})
	if err != nil {
		return fmt.Errorf("CallTool: %w", err)
	}
	if !res.IsError {
		return fmt.Errorf("mutation succeeded with mutations disabled")
	}
	text := resultText(res)
	if !strings.Contains(text, "ALLOW_MUTATIONS") {
		return fmt.Errorf("envelope missing remediation hint: %s", truncate(text, 200))
	}
	return nil
}

// ---------------------------------------------------------------------------
// error_handling: every recoverable failure comes back as IsError with an
// explanation instead of a protocol error.
// ---------------------------------------------------------------------------

func scenarioErrorHandling(ctx context.Context, s *mcp.ClientSession, _ string) error {
	cases := []struct {
		name string
		args map[string]any
		want string // substring expected in the envelope
	}{
		{"empty query", map[string]any{}, "query is required"},
		{"syntax error", map[string]any{"query": "query { hello"}, "invalid"},
		{"not graphql", map[string]any{"query": "SELECT * FROM users"}, "invalid"},
		{"malformed variables", map[string]any{"query": "query { hello }", "variables": "{not json"}, "variables"},
		{"unknown field", map[string]any{"query": "query { doesNotExist }"}, "Cannot query field"},
	}

	for _, c := range cases {
		res, err := s.CallTool(ctx, &mcp.CallToolParams{Name: "query-graphql", Arguments: c.args})
		if err != nil {
			return fmt.Errorf("%s: protocol error instead of envelope: %w", c.name, err)
		}
		if !res.IsError {
			return fmt.Errorf("%s: expected IsError, got success", c.name)
		}
		if text := resultText(res); !strings.Contains(text, c.want) {
			return fmt.Errorf("%s: envelope missing %q: %s", c.name, c.want, truncate(text, 200))
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// agent_schema_guided_query: multi-turn workflow mimicking a real agent:
// read the schema, pick a field from it, query that field.
// ---------------------------------------------------------------------------

func agentSchemaGuidedQuery(ctx context.Context, s *mcp.ClientSession, _ string) error {
	// Turn 1: discover the schema.
	res, err := s.CallTool(ctx, &mcp.CallToolParams{Name: "introspect-schema", Arguments: map[string]any{}})
	if err != nil {
		return fmt.Errorf("turn 1 introspect: %w", err)
	}
	if res.IsError {
		return fmt.Errorf("turn 1 introspect failed: %s", truncate(resultText(res), 200))
	}
	sdl := resultText(res)
	if !strings.Contains(sdl, "echo") {
		return fmt.Errorf("turn 1: schema does not expose the expected field")
	}

	// Turn 2: build an operation against the discovered field and run it.
	res, err = s.CallTool(ctx, &mcp.CallToolParams{
		Name: "query-graphql",
		Arguments: map[string]any{
			"query":     "query($message: String) { echo(message: $message) }",
			"variables": `{"message": "schema-guided"}`,
		},
	})
	if err != nil {
		return fmt.Errorf("turn 2 query: %w", err)
	}
	if res.IsError {
		return fmt.Errorf("turn 2 query failed: %s", truncate(resultText(res), 200))
	}
	if !strings.Contains(resultText(res), "schema-guided") {
		return fmt.Errorf("turn 2: data missing from response")
	}

	return nil
}

// ---------------------------------------------------------------------------
// health_and_metrics: the operational endpoints answer alongside the
// protocol surface.
// ---------------------------------------------------------------------------

func scenarioHealthAndMetrics(ctx context.Context, _ *mcp.ClientSession, base string) error {
	client := httpclient.New(httpclient.WithTimeout(5 * time.Second))

	health, err := fetch(ctx, client, base+"/health")
	if err != nil {
		return fmt.Errorf("health: %w", err)
	}
	var status struct {
		Status  string `json:"status"`
		Service string `json:"service"`
	}
	if err := json.Unmarshal([]byte(health), &status); err != nil {
		return fmt.Errorf("health body not JSON: %w", err)
	}
	if status.Status != "ok" {
		return fmt.Errorf("health status = %q, want ok", status.Status)
	}

	metrics, err := fetch(ctx, client, base+"/metrics")
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	// Earlier scenarios already called both tools, so counters must exist.
	for _, series := range []string{"mcpgraphql_tool_calls_total", "mcpgraphql_upstream_requests_total", "mcpgraphql_sse_sessions"} {
		if !strings.Contains(metrics, series) {
			return fmt.Errorf("metrics output missing %s", series)
		}
	}

	return nil
}

// ---------------------------------------------------------------------------
// live_introspection introspects a real public GraphQL API.
// ---------------------------------------------------------------------------

func scenarioLiveIntrospection(ctx context.Context, s *mcp.ClientSession, _ string) error {
	res, err := s.CallTool(ctx, &mcp.CallToolParams{Name: "introspect-schema", Arguments: map[string]any{}})
	if err != nil {
		return fmt.Errorf("CallTool: %w", err)
	}
	if res.IsError {
		return fmt.Errorf("introspection failed: %s", truncate(resultText(res), 300))
	}
	if !strings.Contains(resultText(res), "type Query") {
		return fmt.Errorf("live SDL missing type Query")
	}
	return nil
}

// ---------------------------------------------------------------------------
// live_query: a minimal read-only query against a real upstream.
// ---------------------------------------------------------------------------

func scenarioLiveQuery(ctx context.Context, s *mcp.ClientSession, _ string) error {
	res, err := s.CallTool(ctx, &mcp.CallToolParams{
		Name:      "query-graphql",
		Arguments: map[string]any{"query": "query { __typename }"},
	})
	if err != nil {
		return fmt.Errorf("CallTool: %w", err)
	}
	if res.IsError {
		return fmt.Errorf("query failed: %s", truncate(resultText(res), 300))
	}
	if !strings.Contains(resultText(res), "Query") {
		return fmt.Errorf("unexpected __typename response: %s", truncate(resultText(res), 200))
	}
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func connect(ctx context.Context, port int) (*mcp.ClientSession, error) {
	client := mcp.NewClient(&mcp.Implementation{Name: "mcp-smoke", Version: "1.0.0"}, nil)
	return client.Connect(ctx, &mcp.SSEClientTransport{
		Endpoint: fmt.Sprintf("http://127.0.0.1:%d/sse", port),
	}, nil)
}

func resultText(res *mcp.CallToolResult) string {
	if res == nil {
		return ""
	}
	var sb strings.Builder
	for _, c := range res.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			sb.WriteString(tc.Text)
		}
	}
	return sb.String()
}

func resourceText(res *mcp.ReadResourceResult) string {
	if res == nil || len(res.Contents) == 0 {
		return ""
	}
	return res.Contents[0].Text
}

func truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}

func fetch(ctx context.Context, client *http.Client, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// ---------------------------------------------------------------------------
// Stub upstream
// ---------------------------------------------------------------------------

// startStubUpstream serves a tiny GraphQL API on an ephemeral port: enough
// schema for introspection plus hello/echo resolvers.
func startStubUpstream() (url string, closeFn func(), err error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, err
	}

	srv := &http.Server{
		Handler:           http.HandlerFunc(stubGraphQL),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() { _ = srv.Serve(ln) }()

	return fmt.Sprintf("http://%s/graphql", ln.Addr()), func() { _ = srv.Close() }, nil
}

func stubGraphQL(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	var req struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables"`
	}
	_ = json.Unmarshal(body, &req)

	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.Contains(req.Query, "__schema"):
		_, _ = w.Write([]byte(stubIntrospection))
	case strings.Contains(req.Query, "__typename"):
		_, _ = w.Write([]byte(`{"data":{"__typename":"Query"}}`))
	case strings.Contains(req.Query, "echo"):
		msg, _ := req.Variables["message"].(string)
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"echo": msg}})
	case strings.Contains(req.Query, "hello"):
		_, _ = w.Write([]byte(`{"data":{"hello":"world"}}`))
	default:
		_, _ = w.Write([]byte(`{"errors":[{"message":"Cannot query field"}]}`))
	}
}

// stubIntrospection is the canned introspection result for the stub schema:
//
//	type Query {
//	  hello: String
//	  echo(message: String): String
//	}
const stubIntrospection = `{"data":{"__schema":{
  "queryType":{"name":"Query"},
  "mutationType":null,
  "subscriptionType":null,
  "types":[
    {"kind":"OBJECT","name":"Query","fields":[
      {"name":"hello","args":[],"type":{"kind":"SCALAR","name":"String"},"isDeprecated":false},
      {"name":"echo","args":[{"name":"message","type":{"kind":"SCALAR","name":"String"}}],"type":{"kind":"SCALAR","name":"String"},"isDeprecated":false}
    ]},
    {"kind":"SCALAR","name":"String"}
  ],
  "directives":[]
}}}`

// ---------------------------------------------------------------------------
// Gateway lifecycle
// ---------------------------------------------------------------------------

func startGateway(ctx context.Context, port int, endpoint string) (*exec.Cmd, error) {
	root, err := findRepoRoot()
	if err != nil {
		return nil, fmt.Errorf("find repo root: %w", err)
	}

	cmd := exec.CommandContext(ctx, "go", "run", "./cmd/mcp-graphql")
	cmd.Dir = root
	cmd.Env = append(os.Environ(),
		"TRANSPORT=sse",
		fmt.Sprintf("PORT=%d", port),
		fmt.Sprintf("ENDPOINT=%s", endpoint),
	)
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return cmd, nil
}

func stopGateway(cmd *exec.Cmd) {
	if cmd == nil || cmd.Process == nil {
		return
	}
	_ = cmd.Process.Kill()
	_, _ = cmd.Process.Wait()
}

func findRepoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		modPath := dir + string(os.PathSeparator) + "go.mod"
		if data, err := os.ReadFile(modPath); err == nil {
			if strings.Contains(string(data), "module github.com/mcpgraphql/mcpgraphql\n") ||
				strings.Contains(string(data), "module github.com/mcpgraphql/mcpgraphql\r\n") {
				return dir, nil
			}
		}

		parent := dir[:max(strings.LastIndex(dir, string(os.PathSeparator)), 0)]
		if parent == dir || parent == "" {
			return "", fmt.Errorf("repo root not found walking up from %s", dir)
		}
		dir = parent
	}
}

func waitForHealth(ctx context.Context, port int) error {
	client := httpclient.New(httpclient.WithTimeout(2 * time.Second))
	url := fmt.Sprintf("http://127.0.0.1:%d/health", port)

	ticker := time.NewTicker(300 * time.Millisecond)
	defer ticker.Stop()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
