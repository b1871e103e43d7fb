package openai

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentloop/pkg/llms"
	"github.com/effective-security/agentloop/pkg/llms/openai/internal/openaiclient"
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

// LLM is the OpenAI-compatible provider adapter. This protocol has native
// per-call tool messages, so each executed call is reported back under its
// tool_call_id. Tool-enabled entry points fold transport failures into an
// "Error: ..." string.
type LLM struct {
	client *openaiclient.Client
	opts   options
	exec   *tools.Executor
	san    *sanitize.Sanitizer
	engine *toolloop.Engine
}

var _ llms.Provider = (*LLM)(nil)

// New returns a new OpenAI-compatible provider.
func New(opts ...Option) (*LLM, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	client, err := openaiclient.New(o.model, o.token, o.baseURL, o.organization, o.httpClient)
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
		Provider:            llms.ProviderOpenAI,
		Model:               o.client.Model,
		MaxToolRounds:       o.opts.maxToolRounds,
		RequestDelay:        o.opts.requestDelay,
		AppendToolResults:   o.opts.appendToolResults,
		PerCallToolMessages: true,
	}, o.send, o.exec, o.san)
}

// GetProviderType implements the Provider interface.
func (o *LLM) GetProviderType() llms.ProviderType {
	return llms.ProviderOpenAI
}

// GetModel implements the Provider interface.
func (o *LLM) GetModel() string {
	return o.client.Model
}

// SetModel implements the Provider interface.
func (o *LLM) SetModel(model string) {
	o.client.Model = model
	o.rebuildEngine()
}

// Generate implements the Provider interface.
func (o *LLM) Generate(ctx context.Context, prompt, system string) (string, error) {
	var messages []llms.Message
	if system != "" {
		messages = append(messages, llms.MessageFromTextParts(llms.RoleSystem, system))
	}
	messages = append(messages, llms.MessageFromTextParts(llms.RoleHuman, prompt))
	return o.Chat(ctx, messages)
}

// Chat implements the Provider interface.
func (o *LLM) Chat(ctx context.Context, messages []llms.Message) (string, error) {
	wire, err := chatMessages(messages)
	if err != nil {
		return "", err
	}
	resp, err := o.client.CreateChat(ctx, &openaiclient.ChatRequest{
		Messages:    wire,
		Temperature: o.opts.temperature,
		MaxTokens:   o.opts.maxTokens,
	})
	if err != nil {
		return "", errors.WithMessage(err, "openai chat")
	}
	return resp.Choices[0].Message.Content, nil
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
		return "Error: openai provider error - " + err.Error(), nil
	}
	return out, nil
}

// send performs one model turn for the loop engine.
func (o *LLM) send(ctx context.Context, history []llms.Message, toolDefs []llms.Tool) (*llms.ContentResponse, error) {
	wire, err := chatMessages(history)
	if err != nil {
		return nil, err
	}
	req := &openaiclient.ChatRequest{
		Messages:    wire,
		Temperature: o.opts.temperature,
		MaxTokens:   o.opts.maxTokens,
	}
	for _, def := range toolDefs {
		if def.Function == nil {
			continue
		}
		req.Tools = append(req.Tools, openaiclient.Tool{
			Type: def.Type,
			Function: openaiclient.FunctionDefinition{
				Name:        def.Function.Name,
				Description: def.Function.Description,
				Parameters:  def.Function.Parameters,
			},
		})
	}

	resp, err := o.client.CreateChat(ctx, req)
	if err != nil {
		return nil, err
	}

	first := resp.Choices[0]
	choice := &llms.ContentChoice{
		Content:    first.Message.Content,
		StopReason: first.FinishReason,
		GenerationInfo: map[string]any{
			"PromptTokens":     resp.Usage.PromptTokens,
			"CompletionTokens": resp.Usage.CompletionTokens,
			"TotalTokens":      resp.Usage.TotalTokens,
		},
	}
	for _, tc := range first.Message.ToolCalls {
		choice.ToolCalls = append(choice.ToolCalls, llms.ToolCall{
			ID:   tc.ID,
			Type: tc.Type,
			FunctionCall: &llms.FunctionCall{
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			},
		})
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{choice}}, nil
}

// chatMessages renders the loop transcript in the chat completions wire
// shape. Tool-role messages must carry exactly one ToolCallResponse part.
func chatMessages(messages []llms.Message) ([]openaiclient.ChatMessage, error) {
	out := make([]openaiclient.ChatMessage, 0, len(messages))
	for _, m := range messages {
		msg := openaiclient.ChatMessage{}
		switch m.Role {
		case llms.RoleSystem:
			msg.Role = RoleSystem
		case llms.RoleAI:
			msg.Role = RoleAssistant
		case llms.RoleTool:
			msg.Role = RoleTool
			if len(m.Parts) != 1 {
				return nil, errors.Errorf("expected exactly one part for role %v, got %v", m.Role, len(m.Parts))
			}
			part, ok := m.Parts[0].(llms.ToolCallResponse)
			if !ok {
				return nil, errors.Errorf("expected part of type ToolCallResponse for role %v, got %T", m.Role, m.Parts[0])
			}
			msg.ToolCallID = part.ToolCallID
			msg.Name = part.Name
			msg.Content = part.Content
			out = append(out, msg)
			continue
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
				msg.ToolCalls = append(msg.ToolCalls, openaiclient.ToolCall{
					ID:   part.ID,
					Type: part.Type,
					Function: openaiclient.FunctionCall{
						Name:      part.FunctionCall.Name,
						Arguments: part.FunctionCall.Arguments,
					},
				})
			}
		}
		out = append(out, msg)
	}
	return out, nil
}
