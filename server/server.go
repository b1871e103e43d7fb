// Package server exposes registered agents over Ollama- and OpenAI-compatible
// HTTP endpoints.
package server

import (
	"encoding/json"
	"net/http"
	"sort"
	"sync"

	"github.com/effective-security/agentloop/agents"
	"github.com/effective-security/xlog"
	"github.com/rs/cors"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/agentloop", "server")

// Server maps inbound HTTP requests to agent invocations.
type Server struct {
	handler http.Handler

	mu     sync.RWMutex
	agents map[string]*agents.Agent
}

// New creates a Server serving the given agents. Agents are addressed by
// name through the "model" field of each request.
func New(list ...*agents.Agent) *Server {
	s := &Server{
		agents: make(map[string]*agents.Agent),
	}
	for _, a := range list {
		s.agents[a.Name()] = a
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/generate", s.handleGenerate)
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("POST /v1/chat/completions", s.handleChatCompletions)
	mux.HandleFunc("GET /api/tags", s.handleTags)
	mux.HandleFunc("GET /v1/models", s.handleModels)

	s.handler = cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler(mux)

	return s
}

// RegisterAgent adds or replaces an agent.
func (s *Server) RegisterAgent(a *agents.Agent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agents[a.Name()] = a
}

// Handler returns the HTTP handler with CORS applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) agent(name string) (*agents.Agent, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.agents[name]
	return a, ok
}

func (s *Server) agentNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.agents))
	for name := range s.agents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.KV(xlog.WARNING, "reason", "encode_response", "err", err.Error())
	}
}
