package agents

import (
	"github.com/effective-security/agentloop/pkg/llms"
	"github.com/effective-security/agentloop/store"
	"github.com/effective-security/agentloop/tools"
)

// Option is a function that can be used to modify the Agent.
type Option func(*Agent)

// WithName sets the name of the Agent, when used in a prompt of other Agents or LLMs.
func WithName(name string) Option {
	return func(a *Agent) {
		a.name = name
	}
}

// WithDescription sets the description of the Agent.
func WithDescription(description string) Option {
	return func(a *Agent) {
		a.description = description
	}
}

// WithSystemPrompt sets the system prompt sent with every run.
func WithSystemPrompt(prompt string) Option {
	return func(a *Agent) {
		a.systemPrompt = prompt
	}
}

// WithRegistry sets the tool registry.
func WithRegistry(reg *tools.Registry) Option {
	return func(a *Agent) {
		a.registry = reg
	}
}

// WithObserver sets the tool observer notified around tool executions.
func WithObserver(observer llms.ToolObserver) Option {
	return func(a *Agent) {
		a.observer = observer
	}
}

// WithMessageStore enables per-chat transcript recording.
func WithMessageStore(s store.MessageStore) Option {
	return func(a *Agent) {
		a.msgStore = s
	}
}
