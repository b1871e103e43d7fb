package copilot

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentloop/pkg/llms"
	"github.com/effective-security/agentloop/pkg/llms/copilot/internal/copilotclient"
	"github.com/effective-security/agentloop/pkg/llmutils"
	"github.com/effective-security/agentloop/pkg/sanitize"
	"github.com/effective-security/agentloop/pkg/toolloop"
	"github.com/effective-security/agentloop/tools"
)

// Completer is the language server surface the adapter drives.
type Completer interface {
	Start(ctx context.Context) error
	GetCompletion(ctx context.Context, prompt string) (string, error)
	Shutdown() error
}

// LLM is the GitHub Copilot provider adapter. The language server has no
// structured tool calls and no chat transcript: every turn is rendered as
// one merged prompt and intents are text-mined from the completion. Unlike
// the HTTP adapters, failures here are fatal and surface as errors on every
// entry point.
type LLM struct {
	client Completer
	opts   options
	exec   *tools.Executor
	san    *sanitize.Sanitizer
	engine *toolloop.Engine
}

var _ llms.Provider = (*LLM)(nil)

// New returns a new Copilot provider. Connect must be called before use.
func New(opts ...Option) (*LLM, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.registry == nil {
		o.registry = tools.NewRegistry()
	}

	llm := &LLM{
		client: copilotclient.New(o.command, o.args, o.handshakeTimeout),
		opts:   o,
		exec:   tools.NewExecutor(o.registry),
		san:    sanitize.New(o.outputDir),
	}
	llm.rebuildEngine()
	return llm, nil
}

// NewWithCompleter returns a provider over an existing server handle.
func NewWithCompleter(client Completer, opts ...Option) (*LLM, error) {
	llm, err := New(opts...)
	if err != nil {
		return nil, err
	}
	llm.client = client
	return llm, nil
}

func (o *LLM) rebuildEngine() {
	o.engine = toolloop.NewEngine(toolloop.Config{
		Provider:          llms.ProviderCopilot,
		Model:             o.opts.model,
		MaxToolRounds:     o.opts.maxToolRounds,
		RequestDelay:      o.opts.requestDelay,
		AppendToolResults: o.opts.appendToolResults,
	}, o.send, o.exec, o.san)
}

// Connect spawns the language server and performs the handshake.
func (o *LLM) Connect(ctx context.Context) error {
	return o.client.Start(ctx)
}

// Close terminates the language server.
func (o *LLM) Close() error {
	return o.client.Shutdown()
}

// GetProviderType implements the Provider interface.
func (o *LLM) GetProviderType() llms.ProviderType {
	return llms.ProviderCopilot
}

// GetModel implements the Provider interface.
func (o *LLM) GetModel() string {
	return o.opts.model
}

// SetModel implements the Provider interface.
func (o *LLM) SetModel(model string) {
	o.opts.model = model
	o.rebuildEngine()
}

// Generate implements the Provider interface.
func (o *LLM) Generate(ctx context.Context, prompt, system string) (string, error) {
	var history []llms.Message
	if system != "" {
		history = append(history, llms.MessageFromTextParts(llms.RoleSystem, system))
	}
	history = append(history, llms.MessageFromTextParts(llms.RoleHuman, prompt))
	return o.Chat(ctx, history)
}

// Chat implements the Provider interface.
func (o *LLM) Chat(ctx context.Context, messages []llms.Message) (string, error) {
	out, err := o.client.GetCompletion(ctx, renderPrompt(messages, nil))
	if err != nil {
		return "", errors.WithMessage(err, "copilot completion")
	}
	return out, nil
}

// GenerateWithTools implements the Provider interface.
func (o *LLM) GenerateWithTools(ctx context.Context, prompt string, toolDefs []llms.Tool, system string, opts ...llms.RunOption) (string, error) {
	var history []llms.Message
	if system != "" {
		history = append(history, llms.MessageFromTextParts(llms.RoleSystem, system))
	}
	history = append(history, llms.MessageFromTextParts(llms.RoleHuman, prompt))
	return o.ChatWithTools(ctx, history, toolDefs, opts...)
}

// ChatWithTools implements the Provider interface. Errors are returned as
// errors, not folded into the answer string.
func (o *LLM) ChatWithTools(ctx context.Context, messages []llms.Message, toolDefs []llms.Tool, opts ...llms.RunOption) (string, error) {
	out, err := o.engine.Run(ctx, messages, toolDefs, llms.NewRunOptions(opts...))
	if err != nil {
		return "", errors.WithMessage(err, "copilot provider error")
	}
	return out, nil
}

// send performs one model turn for the loop engine.
func (o *LLM) send(ctx context.Context, history []llms.Message, toolDefs []llms.Tool) (*llms.ContentResponse, error) {
	out, err := o.client.GetCompletion(ctx, renderPrompt(history, toolDefs))
	if err != nil {
		return nil, err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{
		Content:    out,
		StopReason: "stop",
	}}}, nil
}

// renderPrompt flattens the transcript and tool declarations into one
// prompt. Tool invocation uses the text-mined JSON convention because the
// server has no tool protocol.
func renderPrompt(messages []llms.Message, toolDefs []llms.Tool) string {
	var buf strings.Builder

	if len(toolDefs) > 0 {
		buf.WriteString("You can call the following tools. To call a tool, reply with a single JSON object of the form {\"name\": <tool name>, \"arguments\": <object>} and nothing else.\n\nAvailable tools:\n")
		for _, def := range toolDefs {
			if def.Function == nil {
				continue
			}
			buf.WriteString("- ")
			buf.WriteString(def.Function.Name)
			buf.WriteString(": ")
			buf.WriteString(def.Function.Description)
			if def.Function.Parameters != nil {
				buf.WriteString("\n  parameters: ")
				buf.WriteString(llmutils.ToJSON(def.Function.Parameters))
			}
			buf.WriteString("\n")
		}
		buf.WriteString("\n")
	}

	for _, m := range messages {
		switch m.Role {
		case llms.RoleSystem:
			buf.WriteString("System: ")
		case llms.RoleAI:
			buf.WriteString("Assistant: ")
		case llms.RoleTool:
			buf.WriteString("Tool result: ")
		default:
			buf.WriteString("User: ")
		}
		buf.WriteString(strings.TrimSpace(m.GetContent()))
		buf.WriteString("\n\n")
	}
	buf.WriteString("Assistant:")
	return buf.String()
}
