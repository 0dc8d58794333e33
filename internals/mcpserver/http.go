package mcpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/server"
)

// EndpointPath is where MCP clients connect over streamable HTTP.
const EndpointPath = "/api/mcp/mcp"

type healthDoc struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Endpoint  string    `json:"endpoint"`
}

// Handler mounts the MCP endpoint and the liveness endpoints. The MCP
// handler is stateless: every POST is served without a session.
func (s *Server) Handler() http.Handler {
	streamable := server.NewStreamableHTTPServer(s.mcp, server.WithStateLess(true))

	mux := http.NewServeMux()
	mux.Handle(EndpointPath, streamable)
	mux.Handle("/mcp", streamable)
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(healthDoc{
		Status:    "ok",
		Message:   "Whippy MCP Server is running",
		Timestamp: time.Now().UTC(),
		Endpoint:  EndpointPath,
	}); err != nil {
		s.log.Warn("write health response", "err", err)
	}
}
