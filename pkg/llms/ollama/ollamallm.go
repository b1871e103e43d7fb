package ollama

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentloop/pkg/llms"
	"github.com/effective-security/agentloop/pkg/llms/ollama/internal/ollamaclient"
	"github.com/effective-security/agentloop/pkg/sanitize"
	"github.com/effective-security/agentloop/pkg/toolloop"
	"github.com/effective-security/agentloop/tools"
)

const (
	RoleSystem    = "system"
	RoleAssistant = "assistant"
	RoleUser      = "user"
	RoleTool      = "tool"
)

// LLM is the Ollama provider adapter. Tool-enabled entry points never return
// a Go error; transport failures are folded into an "Error: ..." string so
// the HTTP layer always has a body to render.
type LLM struct {
	client *ollamaclient.Client
	opts   options
	exec   *tools.Executor
	san    *sanitize.Sanitizer
	engine *toolloop.Engine
}

var _ llms.Provider = (*LLM)(nil)

// New returns a new Ollama provider.
func New(opts ...Option) (*LLM, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	client, err := ollamaclient.New(o.model, o.baseURL, o.keepAlive, o.httpClient)
	if err != nil {
		return nil, err
	}
	if o.registry == nil {
		o.registry = tools.NewRegistry()
	}

	llm := &LLM{
		client: client,
		opts:   o,
		exec:   tools.NewExecutor(o.registry),
		san:    sanitize.New(o.outputDir),
	}
	llm.rebuildEngine()
	return llm, nil
}

func (o *LLM) rebuildEngine() {
	o.engine = toolloop.NewEngine(toolloop.Config{
		Provider:          llms.ProviderOllama,
		Model:             o.client.Model,
		MaxToolRounds:     o.opts.maxToolRounds,
		RequestDelay:      o.opts.requestDelay,
		AppendToolResults: o.opts.appendToolResults,
	}, o.send, o.exec, o.san)
}

// GetProviderType implements the Provider interface.
func (o *LLM) GetProviderType() llms.ProviderType {
	return llms.ProviderOllama
}

// GetModel implements the Provider interface.
func (o *LLM) GetModel() string {
	return o.client.Model
}

// SetModel implements the Provider interface. The loop engine is bound to
// the model identity and is rebuilt.
func (o *LLM) SetModel(model string) {
	o.client.Model = model
	o.rebuildEngine()
}

// Generate implements the Provider interface.
func (o *LLM) Generate(ctx context.Context, prompt, system string) (string, error) {
	resp, err := o.client.Generate(ctx, &ollamaclient.GenerateRequest{
		Prompt:  prompt,
		System:  system,
		Options: o.modelOptions(),
	})
	if err != nil {
		return "", errors.WithMessage(err, "ollama generate")
	}
	return resp.Response, nil
}

// Chat implements the Provider interface.
func (o *LLM) Chat(ctx context.Context, messages []llms.Message) (string, error) {
	resp, err := o.client.Chat(ctx, &ollamaclient.ChatRequest{
		Messages: chatMessages(messages),
		Options:  o.modelOptions(),
	})
	if err != nil {
		return "", errors.WithMessage(err, "ollama chat")
	}
	return resp.Message.Content, nil
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

// ChatWithTools implements the Provider interface.
func (o *LLM) ChatWithTools(ctx context.Context, messages []llms.Message, toolDefs []llms.Tool, opts ...llms.RunOption) (string, error) {
	out, err := o.engine.Run(ctx, messages, toolDefs, llms.NewRunOptions(opts...))
	if err != nil {
		return "Error: ollama provider error - " + err.Error(), nil
	}
	return out, nil
}

func (o *LLM) modelOptions() *ollamaclient.Options {
	if o.opts.temperature == 0 && o.opts.numCtx == 0 {
		return nil
	}
	return &ollamaclient.Options{
		Temperature: o.opts.temperature,
		NumCtx:      o.opts.numCtx,
	}
}

// send performs one model turn for the loop engine.
func (o *LLM) send(ctx context.Context, history []llms.Message, toolDefs []llms.Tool) (*llms.ContentResponse, error) {
	req := &ollamaclient.ChatRequest{
		Messages: chatMessages(history),
		Options:  o.modelOptions(),
	}
	for _, def := range toolDefs {
		if def.Function == nil {
			continue
		}
		req.Tools = append(req.Tools, ollamaclient.Tool{
			Type: def.Type,
			Function: ollamaclient.Function{
				Name:        def.Function.Name,
				Description: def.Function.Description,
				Parameters:  def.Function.Parameters,
			},
		})
	}

	resp, err := o.client.Chat(ctx, req)
	if err != nil {
		return nil, err
	}

	choice := &llms.ContentChoice{
		Content:    resp.Message.Content,
		StopReason: resp.DoneReason,
		GenerationInfo: map[string]any{
			"PromptTokens":     resp.PromptEvalCount,
			"CompletionTokens": resp.EvalCount,
		},
	}
	for _, tc := range resp.Message.ToolCalls {
		args, _ := json.Marshal(tc.Function.Arguments)
		choice.ToolCalls = append(choice.ToolCalls, llms.ToolCall{
			Type: "function",
			FunctionCall: &llms.FunctionCall{
				Name:      tc.Function.Name,
				Arguments: string(args),
			},
		})
	}
	if len(choice.ToolCalls) > 0 {
		choice.StopReason = "tool_calls"
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{choice}}, nil
}

// chatMessages renders the loop transcript in the daemon's wire shape.
// Tool results become tool-role messages; structured calls on assistant
// turns are carried in tool_calls.
func chatMessages(messages []llms.Message) []ollamaclient.Message {
	out := make([]ollamaclient.Message, 0, len(messages))
	for _, m := range messages {
		msg := ollamaclient.Message{}
		switch m.Role {
		case llms.RoleSystem:
			msg.Role = RoleSystem
		case llms.RoleAI:
			msg.Role = RoleAssistant
		case llms.RoleTool:
			msg.Role = RoleTool
		default:
			msg.Role = RoleUser
		}

		for _, p := range m.Parts {
			switch part := p.(type) {
			case llms.TextContent:
				if msg.Content != "" {
					msg.Content += "\n"
				}
				msg.Content += part.Text
			case llms.ToolCall:
				if part.FunctionCall == nil {
					continue
				}
				args, err := toolloop.NormalizeArguments(part.FunctionCall.Arguments)
				if err != nil {
					args = map[string]any{}
				}
				msg.ToolCalls = append(msg.ToolCalls, ollamaclient.ToolCall{
					Function: ollamaclient.FunctionCall{
						Name:      part.FunctionCall.Name,
						Arguments: args,
					},
				})
			case llms.ToolCallResponse:
				if msg.Content != "" {
					msg.Content += "\n"
				}
				msg.Content += part.Content
			}
		}
		out = append(out, msg)
	}
	return out
}
