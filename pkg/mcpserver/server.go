package mcpserver

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mcpgraphql/mcpgraphql/pkg/config"
	"github.com/mcpgraphql/mcpgraphql/pkg/defaults"
	"github.com/mcpgraphql/mcpgraphql/pkg/duration"
	"github.com/mcpgraphql/mcpgraphql/pkg/graphql"
)

// ---------------------------------------------------------------------------
// Server
// ---------------------------------------------------------------------------

// Server binds the schema resolver, mutation gate, and query executor into
// MCP tool and resource handlers. Registration happens once in New,
// independent of which transport later hosts the engine.
type Server struct {
	mcp      *mcp.Server
	config   *config.Config
	client   *graphql.Client
	source   *graphql.SchemaSource
	gate     graphql.Gate
	sessions *sessionRegistry
	metrics  *metrics
	ready    atomic.Bool // tracks whether startup completed
}

// MCPServer returns the underlying MCP server for direct access (e.g., testing).
func (s *Server) MCPServer() *mcp.Server { return s.mcp }

// MarkReady signals that startup (config validation, transport binding)
// passed. Until MarkReady is called, /health returns 503 Service Unavailable.
func (s *Server) MarkReady() { s.ready.Store(true) }

// IsReady returns true if the server has completed startup.
func (s *Server) IsReady() bool { return s.ready.Load() }

// New creates a gateway server with the schema resource and both tools
// registered against the given configuration.
func New(cfg *config.Config) *Server {
	if cfg == nil {
		cfg, _ = config.New(config.Options{})
	}

	client := graphql.NewClient(cfg.Endpoint, &graphql.ClientConfig{
		Headers: cfg.Headers,
	})

	s := &Server{
		config:   cfg,
		client:   client,
		source:   graphql.NewSchemaSource(cfg.Schema, client),
		gate:     graphql.Gate{AllowMutations: cfg.AllowMutations},
		sessions: newSessionRegistry(),
		metrics:  newMetrics(),
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    cfg.Name,
			Title:   defaults.ServerTitle,
			Version: defaults.Version,
		},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)

	s.registerTools()
	s.registerResources()

	return s
}

// RunStdio runs the engine over the stdio transport: one persistent channel
// connected exactly once, serviced for the process lifetime. This is the
// primary mode for IDE and desktop clients. stdout belongs to the protocol,
// so all logging goes to stderr.
func (s *Server) RunStdio(ctx context.Context) error {
	s.MarkReady()
	log.Printf("[gateway] stdio transport, endpoint %s", s.client.Endpoint())
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// HTTPHandler returns the handler for the streamable HTTP transport. Every
// inbound POST gets a fresh stateless transport bound to the engine for
// exactly that request/response pair; no session continuity exists between
// requests.
//
// The handler mounts:
//   - /health   → readiness/liveness probe (GET/HEAD only)
//   - /metrics  → Prometheus metrics
//   - /mcp      → streamable HTTP transport
//   - /         → streamable HTTP transport (default mount)
func (s *Server) HTTPHandler() http.Handler {
	streamable := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return s.mcp },
		&mcp.StreamableHTTPOptions{Stateless: true},
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", s.metrics.handler())
	mux.Handle("/mcp", streamable)
	mux.Handle("/", streamable)

	return corsMiddleware(recoveryMiddleware(securityHeaders(mux)))
}

// SSEHTTPHandler returns the handler for the legacy SSE transport, retained
// for clients that predate streamable HTTP. A GET /sse opens the event
// stream and registers the session; POSTs to /messages?sessionId=<id> carry
// the client half of the conversation. Keep-alive comments prevent reverse
// proxies from closing idle streams.
//
// The handler mounts:
//   - /health    → readiness/liveness probe (GET/HEAD only)
//   - /metrics   → Prometheus metrics
//   - /sse       → stream-opening endpoint (GET only)
//   - /messages  → session message endpoint (POST only)
func (s *Server) SSEHTTPHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", s.metrics.handler())
	mux.Handle("/sse", sseKeepAlive(http.HandlerFunc(s.handleSSEOpen)))
	mux.HandleFunc("/messages", s.handleSSEMessage)

	return corsMiddleware(recoveryMiddleware(securityHeaders(mux)))
}

// handleHealth serves a readiness/liveness probe. It answers from process
// state only and never touches the upstream endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", defaults.ContentTypeJSON)
	if !s.IsReady() {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprintf(w, `{"status":"starting","service":%q}`, defaults.ServerName)
		return
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","service":%q,"version":%q,"transport":%q}`,
		defaults.ServerName, defaults.Version, s.config.Transport)
}

// ---------------------------------------------------------------------------
// HTTP middleware
// ---------------------------------------------------------------------------

// corsMiddleware wraps an http.Handler with permissive CORS headers required
// by browser-based MCP clients and cross-origin integrations.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		// Always set Vary: Origin so caches don't serve a CORS-enabled
		// response to a non-browser client or vice versa.
		w.Header().Add("Vary", "Origin")

		if origin == "" {
			// No Origin header = non-browser client; skip CORS headers
			// entirely. Browsers reject "*" combined with
			// Allow-Credentials anyway.
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers",
			strings.Join([]string{
				"Content-Type",
				"Authorization",
				"Mcp-Session-Id",
				"MCP-Protocol-Version",
				"Last-Event-ID",
				"Accept",
			}, ", "))
		w.Header().Set("Access-Control-Expose-Headers", "Mcp-Session-Id, MCP-Protocol-Version")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// recoveryMiddleware catches panics in HTTP handlers and returns a 500 error
// instead of killing the connection.
func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("[gateway] panic in HTTP handler: %v\n%s", err, debug.Stack())

				// Best-effort error response: if headers were already sent
				// (e.g., during SSE streaming), WriteHeader is a no-op.
				w.Header().Set("Content-Type", defaults.ContentTypeJSON)
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":"internal server error"}`))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// securityHeaders adds standard defense-in-depth headers. These prevent
// MIME-sniffing and clickjacking on the HTTP surface.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// sseKeepAlive wraps an SSE handler to send periodic keep-alive comments.
// This prevents reverse proxies (nginx, AWS ALB, Cloudflare, Docker) from
// closing idle SSE connections. The interval is well within the typical 60s
// idle timeout of most proxies.
func sseKeepAlive(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Only wrap event streams; plain requests pass through untouched.
		accept := r.Header.Get("Accept")
		if !strings.Contains(accept, defaults.ContentTypeEventStream) {
			next.ServeHTTP(w, r)
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		kw := &keepAliveWriter{
			ResponseWriter: w,
			flusher:        flusher,
			done:           make(chan struct{}),
		}

		go kw.keepAliveLoop()
		defer close(kw.done)

		next.ServeHTTP(kw, r)
	})
}

// keepAliveWriter wraps http.ResponseWriter to send SSE keep-alive comments.
// All writes are serialized through a mutex to prevent data races between
// the keep-alive goroutine and the transport's event writes.
type keepAliveWriter struct {
	mu sync.Mutex
	http.ResponseWriter
	flusher http.Flusher
	done    chan struct{}
}

// Write serializes access to the underlying ResponseWriter.
func (kw *keepAliveWriter) Write(p []byte) (int, error) {
	kw.mu.Lock()
	defer kw.mu.Unlock()
	return kw.ResponseWriter.Write(p)
}

// Flush implements http.Flusher. Without this, the transport's
// w.(http.Flusher) type assertion fails on the wrapper, causing events to
// buffer indefinitely and never reach the client.
func (kw *keepAliveWriter) Flush() {
	kw.mu.Lock()
	defer kw.mu.Unlock()
	kw.flusher.Flush()
}

// Unwrap returns the underlying ResponseWriter. This enables Go 1.20+
// http.ResponseController to discover capabilities (Flusher, Hijacker)
// through wrapped writers.
func (kw *keepAliveWriter) Unwrap() http.ResponseWriter {
	return kw.ResponseWriter
}

func (kw *keepAliveWriter) keepAliveLoop() {
	ticker := time.NewTicker(duration.SSEKeepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-kw.done:
			return
		case <-ticker.C:
			// SSE comment line, ignored by clients, keeps the connection alive.
			kw.mu.Lock()
			_, err := kw.ResponseWriter.Write([]byte(": keepalive\n\n"))
			if err != nil {
				kw.mu.Unlock()
				return // connection closed
			}
			kw.flusher.Flush()
			kw.mu.Unlock()
		}
	}
}

// ---------------------------------------------------------------------------
// Server Instructions
// ---------------------------------------------------------------------------

const serverInstructions = `You are connected to a single GraphQL API through this gateway. The gateway exposes one upstream endpoint; it does not aggregate multiple APIs.

RECOMMENDED WORKFLOW:
1. Call introspect-schema (or read the graphql-schema resource) to learn the API's types, queries, and mutations.
2. Build operations against that schema and run them with query-graphql.
3. When a call fails, read the error content: upstream GraphQL errors carry the failing path and often a hint, so you can usually correct the operation and retry.

RULES:
- Introspect before writing non-trivial operations. Guessing field names wastes round trips.
- Pass variables as a JSON object in string form, for example:
  {"query": "query($id: ID!) { user(id: $id) { name } }", "variables": "{\"id\": \"42\"}"}
- Mutations are blocked by default. If a mutation is rejected, tell the user the gateway is read-only unless the operator sets ALLOW_MUTATIONS=true. Do not try to disguise a mutation as a query; the gateway classifies by parsed operation kind, not by text.
- Select only the fields you need. Smaller selections mean smaller responses.

ERROR SEMANTICS:
- A tool result with isError=true is a normal, recoverable failure: invalid syntax, a blocked mutation, an upstream HTTP error, or GraphQL errors in the response. The content explains what went wrong.
- A protocol-level error means the upstream endpoint was unreachable. Check the configured endpoint and the network before retrying.`
