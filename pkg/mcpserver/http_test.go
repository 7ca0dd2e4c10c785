package mcpserver_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mcpgraphql/mcpgraphql/pkg/config"
	"github.com/mcpgraphql/mcpgraphql/pkg/mcpserver"
)

// ═══════════════════════════════════════════════════════════════════════════
// Health endpoint
// ═══════════════════════════════════════════════════════════════════════════

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, config.Options{})
	handler := srv.HTTPHandler()

	t.Run("not ready", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503 before MarkReady", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"starting"`) {
			t.Errorf("body = %q, want starting status", rec.Body.String())
		}
	})

	t.Run("ready", func(t *testing.T) {
		srv.MarkReady()
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
		var body struct {
			Status    string `json:"status"`
			Service   string `json:"service"`
			Version   string `json:"version"`
			Transport string `json:"transport"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("health body is not JSON: %v", err)
		}
		if body.Status != "ok" {
			t.Errorf("status field = %q, want ok", body.Status)
		}
		if body.Service != "mcp-graphql" {
			t.Errorf("service field = %q, want mcp-graphql", body.Service)
		}
		if body.Transport != "stdio" {
			t.Errorf("transport field = %q, want the configured default stdio", body.Transport)
		}
	})

	t.Run("head allowed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/health", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("HEAD status = %d, want 200", rec.Code)
		}
	})

	t.Run("post rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("POST status = %d, want 405", rec.Code)
		}
		if allow := rec.Header().Get("Allow"); !strings.Contains(allow, "GET") {
			t.Errorf("Allow header = %q, want GET", allow)
		}
	})
}

// ═══════════════════════════════════════════════════════════════════════════
// Middleware
// ═══════════════════════════════════════════════════════════════════════════

func TestCORSHeaders(t *testing.T) {
	srv := newTestServer(t, config.Options{})
	srv.MarkReady()
	handler := srv.HTTPHandler()

	t.Run("origin echoed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "https://studio.example.com")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://studio.example.com" {
			t.Errorf("Allow-Origin = %q, want the request origin", got)
		}
		if got := rec.Header().Get("Vary"); got != "Origin" {
			t.Errorf("Vary = %q, want Origin", got)
		}
		if got := rec.Header().Get("Access-Control-Expose-Headers"); !strings.Contains(got, "Mcp-Session-Id") {
			t.Errorf("Expose-Headers = %q, want Mcp-Session-Id", got)
		}
	})

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/mcp", nil)
		req.Header.Set("Origin", "https://studio.example.com")
		req.Header.Set("Access-Control-Request-Method", "POST")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Errorf("preflight status = %d, want 204", rec.Code)
		}
		if got := rec.Header().Get("Access-Control-Allow-Headers"); !strings.Contains(got, "Mcp-Session-Id") {
			t.Errorf("Allow-Headers = %q, want MCP headers", got)
		}
	})

	t.Run("no origin, no cors", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Allow-Origin = %q for an origin-less request, want unset", got)
		}
		if got := rec.Header().Get("Vary"); got != "Origin" {
			t.Errorf("Vary = %q, want Origin even without CORS", got)
		}
	})
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(t, config.Options{})
	srv.MarkReady()

	for _, newHandler := range []func() http.Handler{srv.HTTPHandler, srv.SSEHTTPHandler} {
		rec := httptest.NewRecorder()
		newHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
			t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
		}
		if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
			t.Errorf("X-Frame-Options = %q, want DENY", got)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, config.Options{})
	srv.MarkReady()

	rec := httptest.NewRecorder()
	srv.HTTPHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, metric := range []string{
		"mcpgraphql_mutations_blocked_total",
		"mcpgraphql_sse_sessions",
	} {
		if !strings.Contains(body, metric) {
			t.Errorf("metrics output missing %s", metric)
		}
	}
}

func TestMetricsCountBlockedMutations(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{}}`))
	}))
	defer upstream.Close()

	srv := newTestServer(t, config.Options{Endpoint: upstream.URL})
	cs := newTestSession(t, srv)

	if _, err := callTool(t, cs, "query-graphql", `{"query": "mutation { doThing }"}`); err != nil {
		t.Fatalf("CallTool: %v", err)
	}

	rec := httptest.NewRecorder()
	srv.HTTPHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "mcpgraphql_mutations_blocked_total 1") {
		t.Error("blocked mutation not counted in metrics output")
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// SSE session semantics
// ═══════════════════════════════════════════════════════════════════════════

func TestSSEMessageUnknownSession(t *testing.T) {
	srv := newTestServer(t, config.Options{Transport: "sse"})
	srv.MarkReady()
	handler := srv.SSEHTTPHandler()

	req := httptest.NewRequest(http.MethodPost, "/messages?sessionId=no-such-session",
		strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for an unknown session", rec.Code)
	}
	if n := srv.SessionCount(); n != 0 {
		t.Errorf("session count = %d after unknown-session POST, want 0 (no session created)", n)
	}
}

func TestSSEMessageMissingSessionID(t *testing.T) {
	srv := newTestServer(t, config.Options{Transport: "sse"})
	handler := srv.SSEHTTPHandler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/messages", strings.NewReader(`{}`)))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 without a sessionId", rec.Code)
	}
}

func TestSSEMethodChecks(t *testing.T) {
	srv := newTestServer(t, config.Options{Transport: "sse"})
	handler := srv.SSEHTTPHandler()

	t.Run("post to /sse", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sse", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want 405", rec.Code)
		}
	})

	t.Run("get to /messages", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/messages?sessionId=x", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want 405", rec.Code)
		}
	})
}

// TestSSESessionLifecycle drives the raw wire protocol: open the stream,
// read the advertised message endpoint, post to it, close the stream, and
// verify the session is gone.
func TestSSESessionLifecycle(t *testing.T) {
	srv := newTestServer(t, config.Options{Transport: "sse"})
	srv.MarkReady()

	ts := httptest.NewServer(srv.SSEHTTPHandler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Open the event stream.
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/sse", nil)
	if err != nil {
		t.Fatalf("building stream request: %v", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatalf("opening stream: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
		t.Fatalf("Content-Type = %q, want text/event-stream", ct)
	}

	// The first event advertises the session's message endpoint.
	endpoint := readEndpointEvent(t, resp.Body)
	if !strings.Contains(endpoint, "/messages?sessionId=") {
		t.Fatalf("endpoint event = %q, want a /messages?sessionId= URL", endpoint)
	}
	if n := srv.SessionCount(); n != 1 {
		t.Fatalf("session count = %d with one open stream, want 1", n)
	}

	// A message to the advertised endpoint reaches the session.
	initialize := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"probe","version":"0.0.1"}}}`
	postURL := ts.URL + endpoint
	postReq, err := http.NewRequestWithContext(ctx, http.MethodPost, postURL, bytes.NewReader([]byte(initialize)))
	if err != nil {
		t.Fatalf("building message request: %v", err)
	}
	postReq.Header.Set("Content-Type", "application/json")

	postResp, err := ts.Client().Do(postReq)
	if err != nil {
		t.Fatalf("posting message: %v", err)
	}
	postResp.Body.Close()
	if postResp.StatusCode >= 300 {
		t.Fatalf("message POST status = %d, want success", postResp.StatusCode)
	}

	// Closing the stream removes the session.
	resp.Body.Close()
	waitForSessionCount(t, srv, 0)

	// A subsequent POST to the stale endpoint is rejected.
	staleReq, err := http.NewRequestWithContext(ctx, http.MethodPost, postURL, bytes.NewReader([]byte(initialize)))
	if err != nil {
		t.Fatalf("building stale request: %v", err)
	}
	staleResp, err := ts.Client().Do(staleReq)
	if err != nil {
		t.Fatalf("posting to stale session: %v", err)
	}
	staleResp.Body.Close()
	if staleResp.StatusCode != http.StatusNotFound {
		t.Errorf("stale session POST status = %d, want 404", staleResp.StatusCode)
	}
}

// readEndpointEvent scans an SSE stream for the first data line and returns
// its payload.
func readEndpointEvent(t *testing.T, body io.Reader) string {
	t.Helper()

	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "data:") {
			return strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		}
	}
	t.Fatalf("stream ended before an endpoint event: %v", scanner.Err())
	return ""
}

// waitForSessionCount polls until the registry reaches want or times out.
func waitForSessionCount(t *testing.T, srv *mcpserver.Server, want int) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if srv.SessionCount() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("session count = %d, want %d (stream close did not clean up)", srv.SessionCount(), want)
}

// TestStreamableHTTPServesProtocol exercises the stateless HTTP mount with a
// bare initialize request.
func TestStreamableHTTPServesProtocol(t *testing.T) {
	srv := newTestServer(t, config.Options{Transport: "streamable-http"})
	srv.MarkReady()

	ts := httptest.NewServer(srv.HTTPHandler())
	defer ts.Close()

	initialize := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"probe","version":"0.0.1"}}}`

	for _, path := range []string{"/mcp", "/"} {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, ts.URL+path, strings.NewReader(initialize))
		if err != nil {
			cancel()
			t.Fatalf("building request: %v", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json, text/event-stream")

		resp, err := ts.Client().Do(req)
		if err != nil {
			cancel()
			t.Fatalf("POST %s: %v", path, err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Errorf("POST %s status = %d, want 200", path, resp.StatusCode)
		}
		resp.Body.Close()
		cancel()
	}

	if n := srv.SessionCount(); n != 0 {
		t.Errorf("session count = %d under streamable HTTP, want 0 (stateless)", n)
	}
}
