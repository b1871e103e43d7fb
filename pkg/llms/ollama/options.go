package ollama

import (
	"time"

	"github.com/effective-security/agentloop/pkg/llms/ollama/internal/ollamaclient"
	"github.com/effective-security/agentloop/tools"
)

const (
	defaultMaxToolRounds = 10
)

type options struct {
	model      string
	baseURL    string
	keepAlive  string
	httpClient ollamaclient.Doer

	temperature float64
	numCtx      int

	registry          *tools.Registry
	maxToolRounds     int
	requestDelay      time.Duration
	appendToolResults bool
	outputDir         string
}

// Option is an option for the Ollama provider.
type Option func(*options)

func defaultOptions() options {
	return options{
		maxToolRounds: defaultMaxToolRounds,
	}
}

// WithModel sets the model name.
func WithModel(model string) Option {
	return func(o *options) {
		o.model = model
	}
}

// WithBaseURL sets the daemon base URL.
func WithBaseURL(baseURL string) Option {
	return func(o *options) {
		o.baseURL = baseURL
	}
}

// WithKeepAlive controls how long the daemon keeps the model loaded.
func WithKeepAlive(keepAlive string) Option {
	return func(o *options) {
		o.keepAlive = keepAlive
	}
}

// WithHTTPClient sets the HTTP client used for daemon requests.
func WithHTTPClient(client ollamaclient.Doer) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(temperature float64) Option {
	return func(o *options) {
		o.temperature = temperature
	}
}

// WithNumCtx sets the context window size.
func WithNumCtx(numCtx int) Option {
	return func(o *options) {
		o.numCtx = numCtx
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
