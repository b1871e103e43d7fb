// Package agents provides the Agent facade: a named persona that combines an
// LLM provider, a tool registry, optional MCP server connections, and an
// optional per-chat message store into a single prompt/chat entry point.
package agents

import (
	"context"
	"encoding/json"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentloop/callbacks"
	"github.com/effective-security/agentloop/chatmodel"
	"github.com/effective-security/agentloop/pkg/llms"
	"github.com/effective-security/agentloop/pkg/metricskey"
	"github.com/effective-security/agentloop/store"
	"github.com/effective-security/agentloop/tools"
	"github.com/effective-security/xlog"
	"github.com/invopop/jsonschema"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/agentloop", "agents")

// toolSession is the subset of *mcpsdk.ClientSession the agent uses.
type toolSession interface {
	CallTool(ctx context.Context, params *mcpsdk.CallToolParams) (*mcpsdk.CallToolResult, error)
	Close() error
}

// Agent is a chat persona backed by an LLM provider and a set of tools.
// Tool calls made by the model are executed through the agent's registry;
// names carrying the MCP prefix are dispatched to connected MCP servers.
type Agent struct {
	provider llms.Provider

	name         string
	description  string
	systemPrompt string
	registry     *tools.Registry
	observer     llms.ToolObserver
	msgStore     store.MessageStore

	client *mcpsdk.Client

	mu       sync.RWMutex
	sessions map[string]toolSession
	mcpTools map[string][]llms.Tool
}

var _ llms.MCPCaller = (*Agent)(nil)

// New creates an Agent on the given provider.
func New(provider llms.Provider, ops ...Option) *Agent {
	a := &Agent{
		provider: provider,
		name:     "assistant",
		client: mcpsdk.NewClient(
			&mcpsdk.Implementation{Name: "agentloop", Version: "1.0.0"},
			nil,
		),
		sessions: make(map[string]toolSession),
		mcpTools: make(map[string][]llms.Tool),
	}
	for _, op := range ops {
		op(a)
	}
	if a.registry == nil {
		a.registry = tools.NewRegistry()
	}
	if a.observer == nil {
		a.observer = callbacks.NewNoop()
	}
	return a
}

// Name returns the name of the Agent.
func (a *Agent) Name() string {
	return a.name
}

// Description returns the description of the Agent, to be used in the prompt
// of other Agents or LLMs.
func (a *Agent) Description() string {
	return a.description
}

// Model returns the model of the underlying provider.
func (a *Agent) Model() string {
	return a.provider.GetModel()
}

// Registry returns the agent's tool registry.
func (a *Agent) Registry() *tools.Registry {
	return a.registry
}

// Definitions returns the tool definitions visible to the model: the local
// registry plus tools discovered on connected MCP servers.
func (a *Agent) Definitions() []llms.Tool {
	defs := a.registry.Definitions()

	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, list := range a.mcpTools {
		defs = append(defs, list...)
	}
	return defs
}

// Prompt sends a single user turn through the provider's tool loop and
// returns the final assistant text.
func (a *Agent) Prompt(ctx context.Context, text string) (string, error) {
	started := time.Now()
	defer metricskey.PerfAgentRun.MeasureSince(started, a.name)

	out, err := a.provider.GenerateWithTools(ctx, text, a.Definitions(), a.systemPrompt,
		llms.WithCaller(a),
		llms.WithObserver(a.observer),
	)
	if err != nil {
		return "", errors.WithMessagef(err, "agent %s", a.name)
	}
	a.record(ctx,
		llms.MessageFromTextParts(llms.RoleHuman, text),
		llms.MessageFromTextParts(llms.RoleAI, out),
	)
	return out, nil
}

// Chat sends a conversation through the provider's tool loop. The agent's
// system prompt is prepended when the history does not start with one.
func (a *Agent) Chat(ctx context.Context, messages []llms.Message) (string, error) {
	started := time.Now()
	defer metricskey.PerfAgentRun.MeasureSince(started, a.name)

	history := messages
	if a.systemPrompt != "" && (len(history) == 0 || history[0].Role != llms.RoleSystem) {
		history = append([]llms.Message{
			llms.MessageFromTextParts(llms.RoleSystem, a.systemPrompt),
		}, history...)
	}

	out, err := a.provider.ChatWithTools(ctx, history, a.Definitions(),
		llms.WithCaller(a),
		llms.WithObserver(a.observer),
	)
	if err != nil {
		return "", errors.WithMessagef(err, "agent %s", a.name)
	}
	if len(messages) > 0 {
		a.record(ctx,
			messages[len(messages)-1],
			llms.MessageFromTextParts(llms.RoleAI, out),
		)
	}
	return out, nil
}

// record appends messages to the chat store when one is configured and the
// context carries a chat ID.
func (a *Agent) record(ctx context.Context, msgs ...llms.Message) {
	if a.msgStore == nil {
		return
	}
	chatID := chatmodel.GetChatID(ctx)
	if chatID == "" {
		return
	}
	for _, msg := range msgs {
		if err := a.msgStore.Add(chatID, msg); err != nil {
			logger.ContextKV(ctx, xlog.WARNING,
				"agent", a.name,
				"chat_id", chatID,
				"err", err.Error(),
			)
			return
		}
	}
}

// ConnectServer starts the given command as an MCP server over stdio,
// performs the handshake, and imports the server's tool catalogue under
// names of the form mcp_<name>_<tool>. Reconnecting an existing name
// replaces the old session.
func (a *Agent) ConnectServer(ctx context.Context, name, command string, args ...string) error {
	if name == "" {
		return errors.New("MCP server name is required")
	}
	if command == "" {
		return errors.Newf("MCP server %q requires a command", name)
	}

	cmd := exec.CommandContext(ctx, command, args...)
	session, err := a.client.Connect(ctx, &mcpsdk.CommandTransport{Command: cmd}, nil)
	if err != nil {
		return errors.WithMessagef(err, "failed to connect to MCP server %q", name)
	}

	var defs []llms.Tool
	for tool, err := range session.Tools(ctx, nil) {
		if err != nil {
			_ = session.Close()
			return errors.WithMessagef(err, "failed to list tools for MCP server %q", name)
		}
		defs = append(defs, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        tools.MCPPrefix + name + "_" + tool.Name,
				Description: tool.Description,
				Parameters:  convertSchema(tool.InputSchema),
			},
		})
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if old, ok := a.sessions[name]; ok {
		_ = old.Close()
	}
	a.sessions[name] = session
	a.mcpTools[name] = defs
	return nil
}

// ExecuteMCPTool dispatches a prefixed tool name to the owning MCP server
// session and returns the concatenated text content of the result.
func (a *Agent) ExecuteMCPTool(ctx context.Context, name string, args map[string]any) (any, error) {
	server, tool, ok := a.resolveMCPName(name)
	if !ok {
		return nil, errors.Newf("no MCP server registered for tool %q", name)
	}

	a.mu.RLock()
	session := a.sessions[server]
	a.mu.RUnlock()

	res, err := session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      tool,
		Arguments: args,
	})
	if err != nil {
		return nil, errors.WithMessagef(err, "MCP tool %q on server %q", tool, server)
	}

	var sb strings.Builder
	for _, c := range res.Content {
		if tc, ok := c.(*mcpsdk.TextContent); ok {
			sb.WriteString(tc.Text)
		}
	}
	if res.IsError {
		return nil, errors.Newf("MCP tool %q on server %q: %s", tool, server, sb.String())
	}
	return sb.String(), nil
}

// resolveMCPName splits mcp_<server>_<tool> against the connected servers.
func (a *Agent) resolveMCPName(name string) (server, tool string, ok bool) {
	rest, found := strings.CutPrefix(name, tools.MCPPrefix)
	if !found {
		return "", "", false
	}

	a.mu.RLock()
	defer a.mu.RUnlock()
	for srv := range a.sessions {
		if t, found := strings.CutPrefix(rest, srv+"_"); found && t != "" {
			return srv, t, true
		}
	}
	return "", "", false
}

// Close shuts down all MCP server sessions.
func (a *Agent) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var errs []error
	for name, session := range a.sessions {
		if err := session.Close(); err != nil {
			errs = append(errs, errors.WithMessagef(err, "MCP server %q", name))
		}
		delete(a.sessions, name)
		delete(a.mcpTools, name)
	}
	return errors.Join(errs...)
}

// convertSchema round-trips an SDK tool schema into the jsonschema type
// used by tool definitions.
func convertSchema(in any) *jsonschema.Schema {
	fallback := &jsonschema.Schema{Type: "object"}
	if in == nil {
		return fallback
	}
	data, err := json.Marshal(in)
	if err != nil {
		return fallback
	}
	var out jsonschema.Schema
	if err := json.Unmarshal(data, &out); err != nil {
		return fallback
	}
	return &out
}
