package tools

import (
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentloop/pkg/llms"
)

// Registry holds the local tools available to an agent. Lookups are
// case-insensitive. Names carrying the MCP prefix are never resolved here;
// the Executor routes them to the agent's MCP connections.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register adds a tool. Duplicate names and names reserved for MCP dispatch
// are rejected.
func (r *Registry) Register(t Tool) error {
	name := strings.ToLower(t.Name())
	if name == "" {
		return errors.New("tool name is required")
	}
	if strings.HasPrefix(name, MCPPrefix) {
		return errors.Newf("tool name %q is reserved for MCP dispatch", t.Name())
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tools[name]; ok {
		return errors.Newf("tool %q is already registered", t.Name())
	}
	r.tools[name] = t
	return nil
}

// Has reports whether a local tool with the given name exists.
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Get returns the local tool with the given name.
func (r *Registry) Get(name string) (Tool, bool) {
	name = strings.ToLower(name)
	if strings.HasPrefix(name, MCPPrefix) {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Names returns the registered tool names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Definitions returns the wire-level declarations of all registered tools,
// sorted by name.
func (r *Registry) Definitions() []llms.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	defs := make([]llms.Tool, 0, len(names))
	for _, name := range names {
		defs = append(defs, Definition(r.tools[name]))
	}
	return defs
}
