package llms

import (
	"context"
)

//go:generate mockgen -source=llms.go -destination=../../mocks/mockllms/llms_mock.gen.go -package mockllms

// ProviderType is the type of provider.
type ProviderType string

const (
	// ProviderOllama is a local inference daemon speaking the Ollama HTTP API.
	ProviderOllama ProviderType = "OLLAMA"
	// ProviderOpenAI is any OpenAI-compatible HTTP endpoint (OpenAI, OpenRouter, vLLM, ...).
	ProviderOpenAI ProviderType = "OPENAI"
	// ProviderCopilot is the GitHub Copilot language server.
	ProviderCopilot ProviderType = "COPILOT"
)

// Provider is the uniform capability surface every backend adapter implements.
// Generate and Chat are single-shot calls without tools; GenerateWithTools and
// ChatWithTools drive the bounded tool-use loop. SetModel rebuilds any internal
// loop engine bound to the old model string.
type Provider interface {
	// GetProviderType returns the type of provider.
	GetProviderType() ProviderType
	// GetModel returns the current model identity.
	GetModel() string
	// SetModel replaces the model identity.
	SetModel(model string)

	// Generate asks the model a single prompt with an optional system prompt.
	Generate(ctx context.Context, prompt, system string) (string, error)
	// Chat asks the model to continue a multi-turn conversation.
	Chat(ctx context.Context, messages []Message) (string, error)

	// GenerateWithTools runs the tool-use loop seeded with a single prompt.
	GenerateWithTools(ctx context.Context, prompt string, tools []Tool, system string, opts ...RunOption) (string, error)
	// ChatWithTools runs the tool-use loop seeded with conversation history.
	ChatWithTools(ctx context.Context, messages []Message, tools []Tool, opts ...RunOption) (string, error)
}

// MCPCaller dispatches remote MCP tools on behalf of a loop invocation.
// Tool names that carry the MCP prefix are routed here instead of the
// local registry.
type MCPCaller interface {
	ExecuteMCPTool(ctx context.Context, name string, args map[string]any) (any, error)
}

// ToolObserver receives tool execution events. Absence of an observer never
// changes control flow, only omits observability.
type ToolObserver interface {
	OnToolStart(ctx context.Context, name, args string)
	OnToolEnd(ctx context.Context, name, args, result string)
	OnToolError(ctx context.Context, name, args string, err error)
}

// RunOption configures one tool-enabled invocation.
type RunOption func(*RunOptions)

// RunOptions are per-invocation settings for the tool-use entry points.
type RunOptions struct {
	// Caller is the agent instance used for MCP tool dispatch.
	Caller MCPCaller
	// Observer receives tool execution events.
	Observer ToolObserver
}

// NewRunOptions applies the options over defaults.
func NewRunOptions(opts ...RunOption) RunOptions {
	var o RunOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithCaller sets the MCP caller for the invocation.
func WithCaller(caller MCPCaller) RunOption {
	return func(o *RunOptions) {
		o.Caller = caller
	}
}

// WithObserver sets the tool observer for the invocation.
func WithObserver(observer ToolObserver) RunOption {
	return func(o *RunOptions) {
		o.Observer = observer
	}
}

// Capability is a bitmask indicating supported features of an LLM provider.
type Capability uint64

const (
	// Basic text or chat generation
	CapabilityText Capability = 1 << iota

	// Function/tool calling
	CapabilityFunctionCalling
	CapabilityMultiToolCalling

	// Per-call tool-role messages addressed by tool_call_id
	CapabilityToolMessages

	// System prompt support
	CapabilitySystemPrompt

	// Open weight models / self-hosted
	CapabilitySelfHosted
)

var providerCapabilities = map[ProviderType]Capability{
	ProviderOllama: CapabilityText |
		CapabilityFunctionCalling |
		CapabilityMultiToolCalling |
		CapabilitySystemPrompt |
		CapabilitySelfHosted,

	ProviderOpenAI: CapabilityText |
		CapabilityFunctionCalling |
		CapabilityMultiToolCalling |
		CapabilityToolMessages |
		CapabilitySystemPrompt,

	// The language server has no structured tool calls; intents are
	// text-mined from completions.
	ProviderCopilot: CapabilityText |
		CapabilitySystemPrompt,
}

func ProviderCapabilities(pt ProviderType) Capability {
	return providerCapabilities[pt]
}

func (p ProviderType) Supports(cap Capability) bool {
	return ProviderCapabilities(p)&cap != 0
}
