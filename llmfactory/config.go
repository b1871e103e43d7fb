package llmfactory

import (
	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/configloader"
	"github.com/go-playground/validator/v10"
)

// Config describes the set of LLM providers available to the application.
type Config struct {
	Providers []*ProviderConfig `json:"providers" yaml:"providers" validate:"required,min=1,dive"`
}

// ProviderConfig describes a single LLM provider.
type ProviderConfig struct {
	Name string `json:"name" yaml:"name" validate:"required"`
	// Type is one of OLLAMA, OPENAI, COPILOT.
	Type         string `json:"type" yaml:"type" validate:"required,oneof=OLLAMA OPENAI COPILOT"`
	BaseURL      string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Token        string `json:"token,omitempty" yaml:"token,omitempty"`
	Organization string `json:"organization,omitempty" yaml:"organization,omitempty"`
	DefaultModel string `json:"default_model,omitempty" yaml:"default_model,omitempty"`

	// Command launches the language server, for COPILOT providers.
	Command string   `json:"command,omitempty" yaml:"command,omitempty"`
	Args    []string `json:"args,omitempty" yaml:"args,omitempty"`

	Loop LoopConfig `json:"loop,omitempty" yaml:"loop,omitempty"`
}

// LoopConfig tunes the tool-use loop of a provider.
type LoopConfig struct {
	MaxToolRounds int `json:"max_tool_rounds,omitempty" yaml:"max_tool_rounds,omitempty" validate:"omitempty,min=1"`
	// RequestDelay is a Go duration string, for example "500ms".
	RequestDelay      string `json:"request_delay,omitempty" yaml:"request_delay,omitempty"`
	AppendToolResults bool   `json:"append_tool_results,omitempty" yaml:"append_tool_results,omitempty"`
	// OutputDir receives binary blobs extracted from tool results.
	OutputDir string `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`
}

var validate = validator.New()

// LoadConfig loads and validates the config from a YAML or JSON file,
// expanding environment variables.
func LoadConfig(file string) (*Config, error) {
	cfg := new(Config)
	err := configloader.UnmarshalAndExpand(file, cfg)
	if err != nil {
		return nil, err
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, errors.WithMessagef(err, "invalid config: %s", file)
	}
	return cfg, nil
}
