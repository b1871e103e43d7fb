package openai

import (
	"time"

	"github.com/effective-security/agentloop/pkg/llms/openai/internal/openaiclient"
	"github.com/effective-security/agentloop/tools"
)

const (
	defaultMaxToolRounds = 20
)

type options struct {
	model        string
	token        string
	baseURL      string
	organization string
	httpClient   openaiclient.Doer

	temperature float64
	maxTokens   int

	registry          *tools.Registry
	maxToolRounds     int
	requestDelay      time.Duration
	appendToolResults bool
	outputDir         string
}

// Option is an option for the OpenAI-compatible provider.
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

// WithToken sets the API token.
func WithToken(token string) Option {
	return func(o *options) {
		o.token = token
	}
}

// WithBaseURL sets the endpoint base URL, e.g. an OpenRouter deployment.
func WithBaseURL(baseURL string) Option {
	return func(o *options) {
		o.baseURL = baseURL
	}
}

// WithOrganization sets the OpenAI organization header.
func WithOrganization(organization string) Option {
	return func(o *options) {
		o.organization = organization
	}
}

// WithHTTPClient sets the HTTP client used for API requests.
func WithHTTPClient(client openaiclient.Doer) Option {
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

// WithMaxTokens caps the completion size.
func WithMaxTokens(maxTokens int) Option {
	return func(o *options) {
		o.maxTokens = maxTokens
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
