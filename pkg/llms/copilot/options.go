package copilot

import (
	"time"

	"github.com/effective-security/agentloop/tools"
)

const (
	defaultMaxToolRounds = 10
	defaultModel         = "copilot"
)

type options struct {
	model            string
	command          string
	args             []string
	handshakeTimeout time.Duration

	registry          *tools.Registry
	maxToolRounds     int
	requestDelay      time.Duration
	appendToolResults bool
	outputDir         string
}

// Option is an option for the Copilot provider.
type Option func(*options)

func defaultOptions() options {
	return options{
		model:         defaultModel,
		maxToolRounds: defaultMaxToolRounds,
	}
}

// WithModel sets the model identity used in logs and metrics. The language
// server picks the actual model.
func WithModel(model string) Option {
	return func(o *options) {
		o.model = model
	}
}

// WithCommand sets the language server executable and its arguments.
func WithCommand(command string, args ...string) Option {
	return func(o *options) {
		o.command = command
		o.args = args
	}
}

// WithHandshakeTimeout bounds the initialize and sign-in handshake.
func WithHandshakeTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.handshakeTimeout = timeout
	}
}

// WithRegistry sets the local tool registry.
func WithRegistry(registry *tools.Registry) Option {
	return func(o *options) {
		o.registry = registry
	}
}

// WithMaxToolRounds bounds the tool-use loop.
func WithMaxToolRounds(rounds int) Option {
	return func(o *options) {
		o.maxToolRounds = rounds
	}
}

// WithRequestDelay throttles consecutive loop rounds.
func WithRequestDelay(delay time.Duration) Option {
	return func(o *options) {
		o.requestDelay = delay
	}
}

// WithAppendToolResults appends raw tool results to the final answer.
func WithAppendToolResults(enabled bool) Option {
	return func(o *options) {
		o.appendToolResults = enabled
	}
}

// WithOutputDir sets the directory receiving sanitized binary payloads.
func WithOutputDir(dir string) Option {
	return func(o *options) {
		o.outputDir = dir
	}
}
