package mcpserver

import (
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// sessionRegistry tracks live SSE sessions by id. The legacy SSE transport
// splits one logical session across two HTTP exchanges (the GET event stream
// and subsequent POSTs to the message endpoint), so the registry is the only
// shared mutable state in the server. Entries are inserted when a stream
// opens and removed when it closes; a POST can never create one.
type sessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*mcp.SSEServerTransport
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{sessions: make(map[string]*mcp.SSEServerTransport)}
}

// add registers a transport under the given session id.
func (r *sessionRegistry) add(id string, t *mcp.SSEServerTransport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = t
}

// get returns the transport for id, or nil when the session is unknown.
func (r *sessionRegistry) get(id string) *mcp.SSEServerTransport {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[id]
}

// remove drops the session. Removing an unknown id is a no-op.
func (r *sessionRegistry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// count reports the number of live sessions.
func (r *sessionRegistry) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// SessionCount returns the number of live SSE sessions (e.g., for
// diagnostics and testing). Always zero under the other transports.
func (s *Server) SessionCount() int { return s.sessions.count() }

// handleSSEOpen serves GET /sse. It mints a session id, advertises the
// message endpoint for it through the SSE handshake, connects the engine to
// the stream, and blocks until the client goes away. The session entry lives
// exactly as long as this request.
func (s *Server) handleSSEOpen(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	id := uuid.NewString()
	transport := mcp.NewSSEServerTransport("/messages?sessionId="+id, w)

	s.sessions.add(id, transport)
	defer s.sessions.remove(id)
	s.metrics.sseSessionOpened()
	defer s.metrics.sseSessionClosed()

	session, err := s.mcp.Connect(r.Context(), transport, nil)
	if err != nil {
		log.Printf("[gateway] sse connect failed: %v", err)
		http.Error(w, "failed to establish session", http.StatusInternalServerError)
		return
	}
	defer session.Close()

	log.Printf("[gateway] sse session %s opened", id)
	<-r.Context().Done()
	log.Printf("[gateway] sse session %s closed", id)
}

// handleSSEMessage serves POST /messages for an existing session. An unknown
// or missing session id is a client error; no session is created, nothing is
// silently dropped.
func (s *Server) handleSSEMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.URL.Query().Get("sessionId")
	if id == "" {
		http.Error(w, "sessionId query parameter is required", http.StatusBadRequest)
		return
	}

	transport := s.sessions.get(id)
	if transport == nil {
		http.Error(w, fmt.Sprintf("no session with id %q", id), http.StatusNotFound)
		return
	}

	transport.ServeHTTP(w, r)
}
